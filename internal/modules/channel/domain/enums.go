//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Feature represents an automated delivery feature of a channel
// ENUM(welcome,daily_message,daily_poll)
type Feature string
