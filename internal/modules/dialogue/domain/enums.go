//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// SessionState is the position of an admin's poll configuration session
// ENUM(idle,awaiting_question,awaiting_options,awaiting_schedule,awaiting_confirmation,committed,cancelled)
type SessionState string

// InputKind classifies an admin input for the transition table
// ENUM(start,text,confirm,cancel)
type InputKind string
