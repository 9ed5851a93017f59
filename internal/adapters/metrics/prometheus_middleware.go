package metrics

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
)

// PrometheusMiddleware creates a behavior that records dispatch metrics
//
// It wraps every request and records:
// - Dispatch duration (histogram)
// - Outcome counts by error kind (counter)
// - In-flight requests (gauge)
//
// Request names are simplified to remove package prefixes.
// For example: "*commands.RecordGreetingCommand" becomes "RecordGreetingCommand"
func PrometheusMiddleware(collector *DispatchMetricsCollector) mediator.Behavior {
	return mediator.Named("metrics", mediator.Middleware(func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		// Skip metrics if collector is nil (metrics disabled)
		if collector == nil {
			return next(ctx, request)
		}

		requestName := extractRequestName(request)
		done := collector.Started(requestName)
		defer done()

		start := time.Now()
		response, err := next(ctx, request)

		status := "success"
		if err != nil {
			status = strings.ToLower(mediator.ErrorKindOf(err).String())
		}
		collector.RecordDispatch(requestName, mediator.KindOf(request).String(), status, time.Since(start).Seconds())

		return response, err
	}))
}

// extractRequestName extracts a clean request name using reflection
// Examples:
//   - "*commands.RecordGreetingCommand" → "RecordGreetingCommand"
//   - "*queries.ListGreetingsQuery" → "ListGreetingsQuery"
func extractRequestName(request mediator.Request) string {
	if request == nil {
		return "UnknownRequest"
	}

	fullName := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")

	parts := strings.Split(fullName, ".")
	return parts[len(parts)-1]
}
