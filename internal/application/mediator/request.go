package mediator

import "reflect"

// TypedRequest is satisfied by requests that declare their response type R by
// embedding Returns[R], Command[R] or Query[R].
type TypedRequest[R any] interface {
	returns(R)
}

// ResponseDeclarer exposes the declared response type of a request at runtime
type ResponseDeclarer interface {
	ResponseType() reflect.Type
}

// Returns declares the response type of an unclassified request.
//
//	type HelloRequest struct {
//		mediator.Returns[*HelloReply]
//		Name string
//	}
type Returns[R any] struct{}

func (Returns[R]) returns(R) {}

// ResponseType returns the reflect.Type of R
func (Returns[R]) ResponseType() reflect.Type { return reflect.TypeFor[R]() }

// Command declares a state-changing request with response type R
type Command[R any] struct{}

func (Command[R]) returns(R)  {}
func (Command[R]) isCommand() {}

// ResponseType returns the reflect.Type of R
func (Command[R]) ResponseType() reflect.Type { return reflect.TypeFor[R]() }

// Query declares a read-only request with response type R
type Query[R any] struct{}

func (Query[R]) returns(R) {}
func (Query[R]) isQuery()  {}

// ResponseType returns the reflect.Type of R
func (Query[R]) ResponseType() reflect.Type { return reflect.TypeFor[R]() }

// ResponseTypeOf returns the response type declared by request, if any
func ResponseTypeOf(request Request) (reflect.Type, bool) {
	d, ok := request.(ResponseDeclarer)
	if !ok {
		return nil, false
	}
	return d.ResponseType(), true
}
