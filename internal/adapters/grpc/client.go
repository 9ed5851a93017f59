package grpc

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/andrescamacho/grpc-mediator-go/pkg/proto/greeter"
)

// Client talks to the greeter daemon
type Client struct {
	conn   *grpc.ClientConn
	client greeter.GreeterClient
	health healthpb.HealthClient
}

// NewClient connects to address, a host:port or a unix socket path
func NewClient(address string, opts ...grpc.DialOption) (*Client, error) {
	target := address
	if strings.HasPrefix(address, "/") {
		target = "unix:" + address
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(ContentSubtype)),
	}, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon at %s: %w", address, err)
	}

	return &Client{
		conn:   conn,
		client: greeter.NewGreeterClient(conn),
		health: healthpb.NewHealthClient(conn),
	}, nil
}

// Close closes the gRPC connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// SayHello asks the daemon for a greeting
func (c *Client) SayHello(ctx context.Context, name string) (string, error) {
	resp, err := c.client.SayHello(ctx, &greeter.HelloRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("failed to say hello: %w", err)
	}
	return resp.Message, nil
}

// RecordGreeting stores a greeting through the daemon
func (c *Client) RecordGreeting(ctx context.Context, name, message string) (*greeter.RecordGreetingReply, error) {
	resp, err := c.client.RecordGreeting(ctx, &greeter.RecordGreetingRequest{Name: name, Message: message})
	if err != nil {
		return nil, fmt.Errorf("failed to record greeting: %w", err)
	}
	return resp, nil
}

// ListGreetings lists recorded greetings, newest first
func (c *Client) ListGreetings(ctx context.Context, name string, limit int) (*greeter.ListGreetingsReply, error) {
	resp, err := c.client.ListGreetings(ctx, &greeter.ListGreetingsRequest{Name: name, Limit: int32(limit)})
	if err != nil {
		return nil, fmt.Errorf("failed to list greetings: %w", err)
	}
	return resp, nil
}

// Healthy reports whether the daemon serves the Greeter service
func (c *Client) Healthy(ctx context.Context) (bool, error) {
	resp, err := c.health.Check(ctx,
		&healthpb.HealthCheckRequest{Service: greeter.Greeter_ServiceDesc.ServiceName},
		grpc.CallContentSubtype("proto"),
	)
	if err != nil {
		return false, fmt.Errorf("health check failed: %w", err)
	}
	return resp.Status == healthpb.HealthCheckResponse_SERVING, nil
}
