package behaviors

import (
	"context"
	"fmt"
	"reflect"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/common"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Cacheable is implemented by queries whose responses may be served from the cache
type Cacheable interface {
	CacheKey() string
}

// CacheInvalidator is implemented by commands that make cached query responses stale.
// InvalidatedQueries returns sample values of the affected query types.
type CacheInvalidator interface {
	InvalidatedQueries() []mediator.Request
}

// CachingBehavior serves cacheable queries from a Cache and drops stale entries after
// invalidating commands succeed. A cache hit never reaches the handler.
type CachingBehavior struct {
	cache  common.Cache
	ttl    time.Duration
	prefix string
}

// NewCachingBehavior creates the behavior
func NewCachingBehavior(cache common.Cache, ttl time.Duration, prefix string) *CachingBehavior {
	return &CachingBehavior{cache: cache, ttl: ttl, prefix: prefix}
}

// Name implements the mediator's behavior naming
func (b *CachingBehavior) Name() string { return "caching" }

// Handle implements mediator.Behavior
func (b *CachingBehavior) Handle(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
	if invalidator, ok := request.(CacheInvalidator); ok && mediator.IsCommand(request) {
		return b.handleCommand(ctx, request, invalidator, next)
	}

	cacheable, ok := request.(Cacheable)
	if !ok || !mediator.IsQuery(request) {
		return next(ctx, request)
	}

	responseType, ok := mediator.ResponseTypeOf(request)
	if !ok {
		return next(ctx, request)
	}

	logger := common.LoggerFromContext(ctx)
	key := b.typePrefix(request) + cacheable.CacheKey()

	data, found, err := b.cache.Get(ctx, key)
	if err != nil {
		logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	} else if found {
		response, err := decode(data, responseType)
		if err == nil {
			logger.DebugContext(ctx, "cache hit", "key", key)
			return response, nil
		}
		logger.WarnContext(ctx, "cache entry unreadable", "key", key, "error", err)
	}

	response, err := next(ctx, request)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(response); err != nil {
		logger.WarnContext(ctx, "cache encode failed", "key", key, "error", err)
	} else if err := b.cache.Set(ctx, key, encoded, b.ttl); err != nil {
		logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}

	return response, nil
}

func (b *CachingBehavior) handleCommand(ctx context.Context, request mediator.Request, invalidator CacheInvalidator, next mediator.HandlerFunc) (mediator.Response, error) {
	response, err := next(ctx, request)
	if err != nil {
		return nil, err
	}

	for _, query := range invalidator.InvalidatedQueries() {
		prefix := b.typePrefix(query)
		if err := b.cache.DeletePrefix(ctx, prefix); err != nil {
			common.LoggerFromContext(ctx).WarnContext(ctx, "cache invalidation failed", "prefix", prefix, "error", err)
		}
	}
	return response, nil
}

// typePrefix namespaces cache keys by the concrete request type
func (b *CachingBehavior) typePrefix(request mediator.Request) string {
	return fmt.Sprintf("%s%T:", b.prefix, request)
}

// decode rebuilds a value of responseType from its JSON encoding
func decode(data []byte, responseType reflect.Type) (mediator.Response, error) {
	if responseType.Kind() == reflect.Pointer {
		target := reflect.New(responseType.Elem())
		if err := json.Unmarshal(data, target.Interface()); err != nil {
			return nil, err
		}
		return target.Interface(), nil
	}

	target := reflect.New(responseType)
	if err := json.Unmarshal(data, target.Interface()); err != nil {
		return nil, err
	}
	return target.Elem().Interface(), nil
}
