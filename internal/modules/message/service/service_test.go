package service

import "testing"

func TestFormatWelcome(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		template string
		username string
		want     string
	}{
		{name: "plain name", template: "Welcome, {username}!", username: "alice", want: "Welcome, @alice!"},
		{name: "already prefixed", template: "Hi {username}", username: "@bob", want: "Hi @bob"},
		{name: "empty name", template: "Hello {username}", username: "", want: "Hello new subscriber"},
		{name: "no placeholder", template: "Hello there", username: "alice", want: "Hello there"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatWelcome(tt.template, tt.username); got != tt.want {
				t.Fatalf("FormatWelcome(%q, %q) = %q, want %q", tt.template, tt.username, got, tt.want)
			}
		})
	}
}
