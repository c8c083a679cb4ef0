package domain

// Defaults is the shared messages document: the welcome template used by
// channels without their own, and the default daily message pool for
// channels that do not configure a custom pool.
type Defaults struct {
	WelcomeMessage string   `json:"welcome_message"`
	DailyMessages  []string `json:"daily_messages"`
}

// FallbackWelcome is used when no template is configured anywhere.
const FallbackWelcome = "Welcome, {username}!"
