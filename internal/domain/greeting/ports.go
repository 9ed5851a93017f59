package greeting

import "context"

// GreetingRepository defines persistence operations for greetings
type GreetingRepository interface {
	// Create persists a new greeting
	Create(ctx context.Context, greeting *Greeting) error

	// FindByID retrieves a greeting by its id
	FindByID(ctx context.Context, id GreetingID) (*Greeting, error)

	// List returns greetings newest first, filtered by opts
	List(ctx context.Context, opts ListOptions) ([]*Greeting, error)
}

// ListOptions filters and paginates greeting listings
type ListOptions struct {
	// Exact recipient name; empty matches every greeting
	Name string

	Limit int
}

// DefaultListLimit is applied when ListOptions.Limit is not positive
const DefaultListLimit = 50

// Normalize applies the default limit
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	return o
}
