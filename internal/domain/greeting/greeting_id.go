package greeting

import (
	"fmt"

	"github.com/google/uuid"
)

// GreetingID is a value object representing a greeting's unique identifier
type GreetingID struct {
	value string
}

// NewGreetingID creates a new GreetingID with a generated UUID
func NewGreetingID() GreetingID {
	return GreetingID{value: uuid.New().String()}
}

// ParseGreetingID creates a GreetingID from an existing UUID string
func ParseGreetingID(id string) (GreetingID, error) {
	if id == "" {
		return GreetingID{}, fmt.Errorf("greeting_id cannot be empty")
	}

	if _, err := uuid.Parse(id); err != nil {
		return GreetingID{}, fmt.Errorf("invalid greeting_id format: %w", err)
	}

	return GreetingID{value: id}, nil
}

// String returns the string value of the GreetingID
func (g GreetingID) String() string {
	return g.value
}

// IsZero checks if the GreetingID is the zero value
func (g GreetingID) IsZero() bool {
	return g.value == ""
}
