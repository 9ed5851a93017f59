package mediator

import (
	"fmt"
	"reflect"
)

// Kind classifies a request type as a command, a query or neither
type Kind int

const (
	// KindNone is an informational request, neither command nor query
	KindNone Kind = iota
	// KindCommand is a state-changing request
	KindCommand
	// KindQuery is a read-only request
	KindQuery
)

// String returns the lower-case name of the kind
func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindQuery:
		return "query"
	default:
		return "none"
	}
}

// CommandRequest is satisfied only by types embedding Command[R]
type CommandRequest interface {
	isCommand()
}

// QueryRequest is satisfied only by types embedding Query[R]
type QueryRequest interface {
	isQuery()
}

var (
	commandRequestType = reflect.TypeFor[CommandRequest]()
	queryRequestType   = reflect.TypeFor[QueryRequest]()
)

// IsCommand reports whether the request carries the Command capability
func IsCommand(request Request) bool {
	_, ok := request.(CommandRequest)
	return ok
}

// IsQuery reports whether the request carries the Query capability
func IsQuery(request Request) bool {
	_, ok := request.(QueryRequest)
	return ok
}

// KindOf returns the classification of a request value
func KindOf(request Request) Kind {
	if request == nil {
		return KindNone
	}
	return KindOfType(reflect.TypeOf(request))
}

// KindOfType returns the classification of a request type.
// A type carrying both capabilities reports KindNone; registration rejects such types.
func KindOfType(t reflect.Type) Kind {
	if t == nil {
		return KindNone
	}
	command := t.Implements(commandRequestType)
	query := t.Implements(queryRequestType)

	switch {
	case command && !query:
		return KindCommand
	case query && !command:
		return KindQuery
	default:
		return KindNone
	}
}

// checkClassification rejects request types that are both a command and a query
func checkClassification(t reflect.Type) error {
	if t.Implements(commandRequestType) && t.Implements(queryRequestType) {
		return fmt.Errorf("%w: %s", ErrAmbiguousClassification, t)
	}
	return nil
}
