package domain

import "testing"

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw     string
		want    TimeOfDay
		wantErr bool
	}{
		{raw: "09:00", want: TimeOfDay{Hour: 9}},
		{raw: "9:5", want: TimeOfDay{Hour: 9, Minute: 5}},
		{raw: "23:59", want: TimeOfDay{Hour: 23, Minute: 59}},
		{raw: "00:00", want: TimeOfDay{}},
		{raw: "24:00", wantErr: true},
		{raw: "12:60", wantErr: true},
		{raw: "noon", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTimeOfDay(%q) expected error, got %v", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimeOfDay(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("ParseTimeOfDay(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	t.Parallel()
	got := TimeOfDay{Hour: 7, Minute: 3}.String()
	if got != "07:03" {
		t.Fatalf("String() = %q, want %q", got, "07:03")
	}
}

func TestTimeOfDayCronSpec(t *testing.T) {
	t.Parallel()
	got := TimeOfDay{Hour: 10, Minute: 30}.CronSpec()
	if got != "30 10 * * *" {
		t.Fatalf("CronSpec() = %q, want %q", got, "30 10 * * *")
	}
}

func TestTimeOfDayJSONRoundTrip(t *testing.T) {
	t.Parallel()
	in := TimeOfDay{Hour: 18, Minute: 45}
	data, err := in.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON error: %v", err)
	}
	if string(data) != `"18:45"` {
		t.Fatalf("MarshalJSON = %s, want %q", data, `"18:45"`)
	}

	var out TimeOfDay
	if err := out.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON error: %v", err)
	}
	if out != in {
		t.Fatalf("round trip = %v, want %v", out, in)
	}
}
