package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	grpcadapter "github.com/andrescamacho/grpc-mediator-go/internal/adapters/grpc"
	"github.com/andrescamacho/grpc-mediator-go/internal/infrastructure/config"
)

// resolveAddress resolves the daemon address.
// Priority: --address flag > user config default > built-in default
func resolveAddress(cmd *cobra.Command) string {
	if cmd.Flags().Changed("address") {
		return address
	}

	userConfigHandler, err := config.NewUserConfigHandler()
	if err == nil {
		if userCfg, err := userConfigHandler.Load(); err == nil && userCfg.DefaultAddress != "" {
			return userCfg.DefaultAddress
		}
	}

	return address
}

// resolveName resolves the name to greet from the arguments or the user config default
func resolveName(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}

	userConfigHandler, err := config.NewUserConfigHandler()
	if err != nil {
		return "", fmt.Errorf("no name given and failed to load user config: %w", err)
	}

	userCfg, err := userConfigHandler.Load()
	if err != nil {
		return "", fmt.Errorf("no name given and failed to load user config: %w", err)
	}

	if userCfg.DefaultName != "" {
		return userCfg.DefaultName, nil
	}

	return "", fmt.Errorf("no name given: pass one as argument or set a default with 'greeter config set-name'")
}

// connect opens a daemon client and a request context bounded by --timeout
func connect(cmd *cobra.Command) (*grpcadapter.Client, context.Context, context.CancelFunc, error) {
	addr := resolveAddress(cmd)
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Connecting to %s\n", addr)
	}

	client, err := grpcadapter.NewClient(addr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to daemon: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	return client, ctx, cancel, nil
}
