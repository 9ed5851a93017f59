package mediator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNilRequest is returned by Send when the request is nil
	ErrNilRequest = errors.New("request cannot be nil")
	// ErrNilRequestType is returned by Register when the request type is nil
	ErrNilRequestType = errors.New("request type cannot be nil")
	// ErrNilHandler is returned by Register when the handler is nil
	ErrNilHandler = errors.New("handler cannot be nil")
	// ErrNilBehavior is returned by the builder when a behavior is nil
	ErrNilBehavior = errors.New("behavior cannot be nil")
	// ErrRegistryFrozen is returned by Register once the registry serves dispatches
	ErrRegistryFrozen = errors.New("registry is frozen")
	// ErrAmbiguousClassification is returned when a request type is both a command and a query
	ErrAmbiguousClassification = errors.New("request type is both a command and a query")
	// ErrCancellationRequested is matched by every CancellationError
	ErrCancellationRequested = errors.New("cancellation requested")
	// ErrRequestTypeChanged is returned when a behavior hands a request of another type to next
	ErrRequestTypeChanged = errors.New("request type changed inside the pipeline")
	// ErrUnexpectedResponse is returned when a handler response does not match the declared type
	ErrUnexpectedResponse = errors.New("unexpected response type")
)

// ErrorKind identifies the structural kind of a dispatch failure
type ErrorKind int

const (
	// ErrorKindNone means no error
	ErrorKindNone ErrorKind = iota
	// ErrorKindHandlerNotFound means no handler is registered for the request type
	ErrorKindHandlerNotFound
	// ErrorKindHandlerAmbiguous means more than one handler is registered for the request type
	ErrorKindHandlerAmbiguous
	// ErrorKindBehaviorFailure means a behavior failed on its own
	ErrorKindBehaviorFailure
	// ErrorKindHandlerFailure means the terminal handler failed
	ErrorKindHandlerFailure
	// ErrorKindCancellationRequested means the dispatch was cancelled
	ErrorKindCancellationRequested
	// ErrorKindUnknown is any error not produced by a dispatch
	ErrorKindUnknown
)

// String returns the name of the error kind
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNone:
		return "NONE"
	case ErrorKindHandlerNotFound:
		return "HANDLER_NOT_FOUND"
	case ErrorKindHandlerAmbiguous:
		return "HANDLER_AMBIGUOUS"
	case ErrorKindBehaviorFailure:
		return "BEHAVIOR_FAILURE"
	case ErrorKindHandlerFailure:
		return "HANDLER_FAILURE"
	case ErrorKindCancellationRequested:
		return "CANCELLATION_REQUESTED"
	default:
		return "UNKNOWN"
	}
}

// dispatchError is implemented by every error the mediator produces
type dispatchError interface {
	error
	Kind() ErrorKind
}

// ErrorKindOf returns the kind of a dispatch failure.
// Errors that were wrapped after leaving the mediator are still recognised.
func ErrorKindOf(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}
	var de dispatchError
	if errors.As(err, &de) {
		return de.Kind()
	}
	if isContextError(err) {
		return ErrorKindCancellationRequested
	}
	return ErrorKindUnknown
}

// HandlerNotFoundError is returned when no handler is registered for a request type
type HandlerNotFoundError struct {
	RequestType reflect.Type
}

func (e *HandlerNotFoundError) Error() string {
	return fmt.Sprintf("no handler registered for type %s", e.RequestType)
}

// Kind implements dispatchError
func (e *HandlerNotFoundError) Kind() ErrorKind { return ErrorKindHandlerNotFound }

// HandlerAmbiguousError is returned when several handlers are registered for a request type
type HandlerAmbiguousError struct {
	RequestType reflect.Type
	Count       int
}

func (e *HandlerAmbiguousError) Error() string {
	return fmt.Sprintf("%d handlers registered for type %s, expected exactly one", e.Count, e.RequestType)
}

// Kind implements dispatchError
func (e *HandlerAmbiguousError) Kind() ErrorKind { return ErrorKindHandlerAmbiguous }

// HandlerError wraps a failure returned by the terminal handler
type HandlerError struct {
	RequestType reflect.Type
	Err         error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler for %s failed: %v", e.RequestType, e.Err)
}

// Unwrap returns the handler's own error
func (e *HandlerError) Unwrap() error { return e.Err }

// Kind implements dispatchError
func (e *HandlerError) Kind() ErrorKind { return ErrorKindHandlerFailure }

// BehaviorError wraps a failure raised by a behavior's own logic
type BehaviorError struct {
	RequestType reflect.Type
	Behavior    string
	Err         error
}

func (e *BehaviorError) Error() string {
	return fmt.Sprintf("behavior %s failed for %s: %v", e.Behavior, e.RequestType, e.Err)
}

// Unwrap returns the behavior's own error
func (e *BehaviorError) Unwrap() error { return e.Err }

// Kind implements dispatchError
func (e *BehaviorError) Kind() ErrorKind { return ErrorKindBehaviorFailure }

// CancellationError is returned when the dispatch context is cancelled or expires
type CancellationError struct {
	RequestType reflect.Type
	Err         error
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("dispatch of %s cancelled: %v", e.RequestType, e.Err)
}

// Unwrap returns the context error
func (e *CancellationError) Unwrap() error { return e.Err }

// Is matches ErrCancellationRequested
func (e *CancellationError) Is(target error) bool { return target == ErrCancellationRequested }

// Kind implements dispatchError
func (e *CancellationError) Kind() ErrorKind { return ErrorKindCancellationRequested }

// PanicError carries a panic recovered from a handler or a behavior
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic during dispatch: %v", e.Value)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// isDispatchError reports whether err already carries a dispatch classification
func isDispatchError(err error) bool {
	var de dispatchError
	return errors.As(err, &de)
}
