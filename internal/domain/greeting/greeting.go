package greeting

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxNameLength bounds the recipient name of a greeting
const MaxNameLength = 64

// Greeting is an immutable record of a message sent to someone
type Greeting struct {
	id        GreetingID
	name      string
	message   string
	createdAt time.Time
}

// NewGreeting creates a greeting with a fresh id
func NewGreeting(name, message string, createdAt time.Time) (*Greeting, error) {
	return newGreeting(NewGreetingID(), name, message, createdAt)
}

// Reconstruct rebuilds a greeting loaded from storage
func Reconstruct(id GreetingID, name, message string, createdAt time.Time) (*Greeting, error) {
	if id.IsZero() {
		return nil, &ErrInvalidGreeting{Field: "id", Reason: "id cannot be empty"}
	}
	return newGreeting(id, name, message, createdAt)
}

func newGreeting(id GreetingID, name, message string, createdAt time.Time) (*Greeting, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ErrInvalidGreeting{Field: "name", Reason: "name cannot be empty"}
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, &ErrInvalidGreeting{Field: "name", Reason: "name is too long"}
	}
	if message == "" {
		message = Compose(name)
	}
	if createdAt.IsZero() {
		return nil, &ErrInvalidGreeting{Field: "created_at", Reason: "timestamp is required"}
	}

	return &Greeting{
		id:        id,
		name:      name,
		message:   message,
		createdAt: createdAt.UTC(),
	}, nil
}

// Compose returns the canonical greeting text for name
func Compose(name string) string {
	return "Hello " + name
}

// ID returns the greeting id
func (g *Greeting) ID() GreetingID { return g.id }

// Name returns the recipient name
func (g *Greeting) Name() string { return g.name }

// Message returns the greeting text
func (g *Greeting) Message() string { return g.message }

// CreatedAt returns when the greeting was recorded
func (g *Greeting) CreatedAt() time.Time { return g.createdAt }
