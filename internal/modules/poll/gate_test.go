package poll

import (
	"testing"

	"github.com/reshetovitsme/channel-steward/internal/modules/channel/domain"
)

func TestShouldPoll(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		enabled bool
		count   int
		want    bool
	}{
		{name: "above threshold", enabled: true, count: 501, want: true},
		{name: "exactly at threshold", enabled: true, count: 500, want: true},
		{name: "one below threshold", enabled: true, count: 499, want: false},
		{name: "disabled channel", enabled: false, count: 10000, want: false},
		{name: "zero subscribers", enabled: true, count: 0, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			ch := domain.Channel{PollEnabled: tt.enabled, PollSubscriberThreshold: 500}
			if got := ShouldPoll(ch, tt.count); got != tt.want {
				t.Fatalf("ShouldPoll(enabled=%v, count=%d) = %v, want %v", tt.enabled, tt.count, got, tt.want)
			}
		})
	}
}
