package domain

// Channel represents a managed Telegram channel with its delivery configuration
type Channel struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	WelcomeEnabled  bool   `json:"welcome_enabled"`
	WelcomeTemplate string `json:"welcome_template,omitempty"`

	DailyMessageEnabled  bool      `json:"daily_message_enabled"`
	MessagePool          []string  `json:"message_pool,omitempty"`
	RotationCursor       int       `json:"rotation_cursor"`
	DailyMessageSchedule TimeOfDay `json:"daily_message_schedule"`

	PollEnabled             bool      `json:"poll_enabled"`
	PollSchedule            TimeOfDay `json:"poll_schedule"`
	PollQuestion            string    `json:"poll_question,omitempty"`
	PollOptions             []string  `json:"poll_options,omitempty"`
	PollSubscriberThreshold int       `json:"poll_subscriber_threshold"`
}

// FeatureEnabled reports whether the given automated feature is switched on
// for this channel.
func (c Channel) FeatureEnabled(f Feature) bool {
	switch f {
	case FeatureWelcome:
		return c.WelcomeEnabled
	case FeatureDailyMessage:
		return c.DailyMessageEnabled
	case FeatureDailyPoll:
		return c.PollEnabled
	default:
		return false
	}
}

// Clone returns a deep copy so callers can never mutate registry state
// through a shared slice.
func (c Channel) Clone() Channel {
	out := c
	if c.MessagePool != nil {
		out.MessagePool = append([]string(nil), c.MessagePool...)
	}
	if c.PollOptions != nil {
		out.PollOptions = append([]string(nil), c.PollOptions...)
	}
	return out
}
