package cli_test

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/grpc-mediator-go/internal/adapters/cli"
	grpcadapter "github.com/andrescamacho/grpc-mediator-go/internal/adapters/grpc"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/setup"
	"github.com/andrescamacho/grpc-mediator-go/internal/infrastructure/config"
	"github.com/andrescamacho/grpc-mediator-go/test/helpers"
)

// startDaemon serves a greeter mediator on a loopback port and returns its address
func startDaemon(t *testing.T) string {
	t.Helper()

	cfg := &config.Config{}
	config.SetDefaults(cfg)
	cfg.Pipeline.Behaviors = []string{config.BehaviorValidation}

	registry := setup.NewHandlerRegistry(helpers.NewMockGreetingRepository(), nil, setup.PipelineDependencies{})
	m, err := registry.CreateConfiguredMediator(cfg)
	require.NoError(t, err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := grpcadapter.NewServerWithListener(m, config.ServerConfig{ShutdownTimeout: time.Second, HealthCheck: true}, nil, lis)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	return lis.Addr().String()
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := cli.NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHelloCommand(t *testing.T) {
	// Arrange
	t.Setenv("HOME", t.TempDir())
	addr := startDaemon(t)

	// Act
	out, err := run(t, "--address", addr, "hello", "Tester")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Hello Tester\n", out)
}

func TestHelloCommand_UsesDefaultNameFromUserConfig(t *testing.T) {
	// Arrange
	t.Setenv("HOME", t.TempDir())
	addr := startDaemon(t)
	_, err := run(t, "config", "set-name", "Ada")
	require.NoError(t, err)

	// Act
	out, err := run(t, "--address", addr, "hello")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada\n", out)
}

func TestHelloCommand_WithoutNameFails(t *testing.T) {
	// Arrange
	t.Setenv("HOME", t.TempDir())

	// Act
	_, err := run(t, "hello")

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no name given")
}

func TestGreetingsRecordThenList(t *testing.T) {
	// Arrange
	t.Setenv("HOME", t.TempDir())
	addr := startDaemon(t)
	_, err := run(t, "config", "set-address", addr)
	require.NoError(t, err)

	// Act
	recordOut, recordErr := run(t, "greetings", "record", "Ada", "--message", "Good morning Ada")
	listOut, listErr := run(t, "greetings", "list", "--name", "Ada")

	// Assert
	require.NoError(t, recordErr)
	assert.Contains(t, recordOut, "✓ Greeting recorded")
	assert.Contains(t, recordOut, "Good morning Ada")
	require.NoError(t, listErr)
	assert.Contains(t, listOut, "Good morning Ada")
	assert.Contains(t, listOut, "1 greeting(s)")
}

func TestGreetingsList_Empty(t *testing.T) {
	// Arrange
	t.Setenv("HOME", t.TempDir())
	addr := startDaemon(t)

	// Act
	out, err := run(t, "--address", addr, "greetings", "list")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "No greetings recorded")
}

func TestGreetingsRecord_InvalidNameReportsStatus(t *testing.T) {
	// Arrange
	t.Setenv("HOME", t.TempDir())
	addr := startDaemon(t)
	longName := string(bytes.Repeat([]byte("a"), 65))

	// Act
	_, err := run(t, "--address", addr, "greetings", "record", longName)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "InvalidArgument")
}

func TestHealthCommand(t *testing.T) {
	// Arrange
	t.Setenv("HOME", t.TempDir())
	addr := startDaemon(t)

	// Act
	out, err := run(t, "--address", addr, "health")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Daemon is healthy")
}

func TestConfigClear(t *testing.T) {
	// Arrange
	t.Setenv("HOME", t.TempDir())
	_, err := run(t, "config", "set-name", "Ada")
	require.NoError(t, err)

	// Act
	_, err = run(t, "config", "clear")
	require.NoError(t, err)
	_, helloErr := run(t, "hello")

	// Assert
	require.Error(t, helloErr)
	assert.Contains(t, helloErr.Error(), "no name given")
}
