package mediator_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
)

func noopHandler() mediator.RequestHandler {
	return mediator.HandlerFunc(func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return &pingResponse{}, nil
	})
}

func TestRegistry_RegisterValidation(t *testing.T) {
	registry := mediator.NewRegistry()

	assert.ErrorIs(t, registry.Register(nil, noopHandler()), mediator.ErrNilRequestType)
	assert.ErrorIs(t, registry.Register(reflect.TypeOf(&pingRequest{}), nil), mediator.ErrNilHandler)
}

func TestRegistry_ResolveSingleHandler(t *testing.T) {
	// Arrange
	registry := mediator.NewRegistry()
	require.NoError(t, mediator.RegisterHandler[*pingRequest](registry, noopHandler()))

	// Act
	handler, err := registry.Resolve(reflect.TypeOf(&pingRequest{}))

	// Assert
	require.NoError(t, err)
	assert.NotNil(t, handler)
}

func TestRegistry_ValueAndPointerTypesAreDistinct(t *testing.T) {
	registry := mediator.NewRegistry()
	require.NoError(t, mediator.RegisterHandler[*pingRequest](registry, noopHandler()))

	_, err := registry.Resolve(reflect.TypeOf(pingRequest{}))

	var notFound *mediator.HandlerNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestRegistry_ValidateReportsEveryAmbiguousType(t *testing.T) {
	// Arrange
	registry := mediator.NewRegistry()
	require.NoError(t, mediator.RegisterHandler[*pingRequest](registry, noopHandler()))
	require.NoError(t, mediator.RegisterHandler[*pingRequest](registry, noopHandler()))
	require.NoError(t, mediator.RegisterHandler[*readQuery](registry, noopHandler()))
	require.NoError(t, mediator.RegisterHandler[*readQuery](registry, noopHandler()))
	require.NoError(t, mediator.RegisterHandler[*writeCommand](registry, noopHandler()))

	// Act
	err := registry.Validate()

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pingRequest")
	assert.Contains(t, err.Error(), "readQuery")
	assert.NotContains(t, err.Error(), "writeCommand")
}

func TestRegistry_FrozenRejectsRegistration(t *testing.T) {
	// Arrange
	b := mediator.NewBuilder()
	require.NoError(t, mediator.Handle[*pingRequest](b, noopHandler()))
	_, err := b.Build()
	require.NoError(t, err)

	// Act
	err = mediator.Handle[*readQuery](b, noopHandler())

	// Assert
	assert.True(t, b.Registry().Frozen())
	assert.ErrorIs(t, err, mediator.ErrRegistryFrozen)
}

func TestRegistry_RequestTypesAreSorted(t *testing.T) {
	registry := mediator.NewRegistry()
	require.NoError(t, mediator.RegisterHandler[*writeCommand](registry, noopHandler()))
	require.NoError(t, mediator.RegisterHandler[*pingRequest](registry, noopHandler()))

	types := registry.RequestTypes()

	require.Len(t, types, 2)
	assert.Equal(t, reflect.TypeOf(&pingRequest{}), types[0])
	assert.Equal(t, reflect.TypeOf(&writeCommand{}), types[1])
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "HANDLER_NOT_FOUND", mediator.ErrorKindHandlerNotFound.String())
	assert.Equal(t, "CANCELLATION_REQUESTED", mediator.ErrorKindCancellationRequested.String())
	assert.Equal(t, mediator.ErrorKindNone, mediator.ErrorKindOf(nil))
	assert.Equal(t, mediator.ErrorKindUnknown, mediator.ErrorKindOf(assert.AnError))
}
