// Package greeter holds the Greeter service contract: its messages and the
// gRPC client and server bindings. Messages travel with the JSON codec
// registered by internal/adapters/grpc under the "json" content subtype.
package greeter

import "time"

// HelloRequest asks the service to compose a greeting
type HelloRequest struct {
	Name string `json:"name,omitempty"`
}

// HelloReply carries the composed greeting
type HelloReply struct {
	Message string `json:"message,omitempty"`
}

// RecordGreetingRequest stores a greeting.
// An empty message records the composed greeting for name.
type RecordGreetingRequest struct {
	Name    string `json:"name,omitempty"`
	Message string `json:"message,omitempty"`
}

// RecordGreetingReply describes the stored greeting
type RecordGreetingReply struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListGreetingsRequest filters recorded greetings.
// A zero limit uses the server default.
type ListGreetingsRequest struct {
	Name  string `json:"name,omitempty"`
	Limit int32  `json:"limit,omitempty"`
}

// ListGreetingsReply returns greetings newest first
type ListGreetingsReply struct {
	Greetings []*Greeting `json:"greetings,omitempty"`
	Count     int32       `json:"count" adapter:"narrow"`

	// Set by the transport, never by the service
	Server string `json:"server,omitempty" adapter:"-"`
}

// Greeting is a recorded greeting
type Greeting struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
