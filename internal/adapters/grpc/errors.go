package grpc

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/behaviors"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
	"github.com/andrescamacho/grpc-mediator-go/internal/domain/greeting"
)

// ErrorDomain is the ErrorInfo domain of every status produced here
const ErrorDomain = "mediator"

// StatusFromError converts a dispatch failure into a gRPC status error.
// The status carries the mediator error kind as ErrorInfo reason.
func StatusFromError(err error) error {
	if err == nil {
		return nil
	}

	kind := mediator.ErrorKindOf(err)
	if _, ok := status.FromError(err); ok && kind == mediator.ErrorKindUnknown {
		return err
	}

	details := []protoadapt.MessageV1{&errdetails.ErrorInfo{
		Reason: kind.String(),
		Domain: ErrorDomain,
	}}

	var rateLimited *behaviors.RateLimitedError
	if errors.As(err, &rateLimited) {
		details = append(details, &errdetails.RetryInfo{
			RetryDelay: durationpb.New(rateLimited.RetryAfter),
		})
	}

	var circuitOpen *behaviors.CircuitOpenError
	if errors.As(err, &circuitOpen) {
		details = append(details, &errdetails.RetryInfo{
			RetryDelay: durationpb.New(circuitOpen.RetryAfter),
		})
	}

	var validation *behaviors.ValidationError
	if errors.As(err, &validation) {
		violations := make([]*errdetails.BadRequest_FieldViolation, len(validation.Fields))
		for i, f := range validation.Fields {
			violations[i] = &errdetails.BadRequest_FieldViolation{
				Field:       f.Field,
				Description: f.Rule,
			}
		}
		details = append(details, &errdetails.BadRequest{FieldViolations: violations})
	}

	st := status.New(codeOf(err, kind), err.Error())
	if withDetails, detailErr := st.WithDetails(details...); detailErr == nil {
		st = withDetails
	}
	return st.Err()
}

func codeOf(err error, kind mediator.ErrorKind) codes.Code {
	switch kind {
	case mediator.ErrorKindHandlerNotFound:
		return codes.Unimplemented
	case mediator.ErrorKindHandlerAmbiguous:
		return codes.Internal
	case mediator.ErrorKindCancellationRequested:
		if errors.Is(err, context.DeadlineExceeded) {
			return codes.DeadlineExceeded
		}
		return codes.Canceled
	}

	var (
		validation  *behaviors.ValidationError
		rateLimited *behaviors.RateLimitedError
		circuitOpen *behaviors.CircuitOpenError
		invalid     *greeting.ErrInvalidGreeting
		notFound    *greeting.ErrGreetingNotFound
		panicked    *mediator.PanicError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &invalid):
		return codes.InvalidArgument
	case errors.As(err, &rateLimited):
		return codes.ResourceExhausted
	case errors.As(err, &circuitOpen):
		return codes.Unavailable
	case errors.As(err, &notFound):
		return codes.NotFound
	case errors.As(err, &panicked):
		return codes.Internal
	}

	// A handler may fail with a status of its own
	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		return st.Code()
	}

	switch kind {
	case mediator.ErrorKindBehaviorFailure, mediator.ErrorKindHandlerFailure:
		return codes.Internal
	}
	return codes.Unknown
}
