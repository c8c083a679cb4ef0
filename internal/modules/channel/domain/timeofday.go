package domain

import (
	"encoding/json"
	"fmt"

	"github.com/samber/oops"
)

// TimeOfDay is a local wall-clock time, serialized as "HH:MM".
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" with 24-hour validation.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, oops.With("value", s).Wrap(fmt.Errorf("time must be in HH:MM format"))
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return TimeOfDay{}, oops.With("value", s).Wrap(fmt.Errorf("time values out of range"))
	}
	return t, nil
}

// String formats the time as zero-padded "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// CronSpec renders the time as a standard five-field cron expression
// firing once per day.
func (t TimeOfDay) CronSpec() string {
	return fmt.Sprintf("%d %d * * *", t.Minute, t.Hour)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
