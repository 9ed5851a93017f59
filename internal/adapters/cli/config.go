package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/grpc-mediator-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage greeter configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (GM_* prefix)
2. Config file (config.yaml)
3. Default values

User preferences (daemon address, default name) are stored in ~/.grpc-mediator/config.json

Examples:
  greeter config show
  greeter config set-address localhost:50061
  greeter config set-name Tester
  greeter config clear`,
	}

	// Add subcommands
	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetAddressCommand())
	cmd.AddCommand(newConfigSetNameCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long: `Display the current configuration settings.

Shows both daemon configuration and user preferences.

Example:
  greeter config show`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			// Load system config
			cfg, err := config.LoadConfig("")
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(out, "Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}

			// Load user config
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}

			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			// Display configuration
			fmt.Fprintln(out, "Greeter Configuration")
			fmt.Fprintln(out, "=====================")

			fmt.Fprintln(out, "User Preferences:")
			fmt.Fprintf(out, "  Config file:      %s\n", userConfigHandler.GetConfigPath())
			fmt.Fprintf(out, "  Default Address:  %s\n", orNotSet(userCfg.DefaultAddress))
			fmt.Fprintf(out, "  Default Name:     %s\n", orNotSet(userCfg.DefaultName))

			fmt.Fprintln(out, "\nDatabase:")
			fmt.Fprintf(out, "  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Fprintf(out, "  URL:              %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Fprintf(out, "  Path:             %s\n", cfg.Database.Path)
			default:
				fmt.Fprintf(out, "  Host:             %s\n", cfg.Database.Host)
				fmt.Fprintf(out, "  Port:             %d\n", cfg.Database.Port)
				fmt.Fprintf(out, "  Database:         %s\n", cfg.Database.Name)
				fmt.Fprintf(out, "  User:             %s\n", cfg.Database.User)
			}

			fmt.Fprintln(out, "\nServer:")
			fmt.Fprintf(out, "  Address:          %s\n", cfg.Server.Address)
			fmt.Fprintf(out, "  Socket Path:      %s\n", orNotSet(cfg.Server.SocketPath))
			fmt.Fprintf(out, "  Request Timeout:  %s\n", cfg.Server.RequestTimeout)

			fmt.Fprintln(out, "\nPipeline:")
			fmt.Fprintf(out, "  Behaviors:        %s\n", strings.Join(cfg.Pipeline.Behaviors, " -> "))
			fmt.Fprintf(out, "  Eager Validation: %t\n", cfg.Pipeline.EagerValidation)
			fmt.Fprintf(out, "  Rate Limit:       %.0f req/s (burst: %d)\n",
				cfg.Pipeline.RateLimit.Requests, cfg.Pipeline.RateLimit.Burst)
			fmt.Fprintf(out, "  Max Retries:      %d\n", cfg.Pipeline.Retry.MaxAttempts)
			fmt.Fprintf(out, "  Circuit Breaker:  %d failures, %s cooldown\n",
				cfg.Pipeline.CircuitBreaker.MaxFailures, cfg.Pipeline.CircuitBreaker.Cooldown)

			fmt.Fprintln(out, "\nCache:")
			fmt.Fprintf(out, "  Type:             %s\n", cfg.Cache.Type)
			fmt.Fprintf(out, "  TTL:              %s\n", cfg.Cache.TTL)

			fmt.Fprintln(out, "\nLogging:")
			fmt.Fprintf(out, "  Level:            %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "  Format:           %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "  Output:           %s\n", cfg.Logging.Output)

			return nil
		},
	}

	return cmd
}

// newConfigSetAddressCommand creates the config set-address subcommand
func newConfigSetAddressCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-address <address>",
		Short: "Set default daemon address",
		Long: `Set the daemon address used when --address is not given.

Examples:
  greeter config set-address localhost:50061
  greeter config set-address /tmp/greeter-daemon.sock`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}

			if err := userConfigHandler.SetDefaultAddress(args[0]); err != nil {
				return fmt.Errorf("failed to set default address: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Default address set successfully")
			fmt.Fprintf(cmd.OutOrStdout(), "  Address: %s\n", args[0])
			return nil
		},
	}

	return cmd
}

// newConfigSetNameCommand creates the config set-name subcommand
func newConfigSetNameCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-name <name>",
		Short: "Set default name",
		Long: `Set the name greeted when a command is run without a name argument.

Example:
  greeter config set-name Tester`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}

			if err := userConfigHandler.SetDefaultName(args[0]); err != nil {
				return fmt.Errorf("failed to set default name: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Default name set successfully")
			fmt.Fprintf(cmd.OutOrStdout(), "  Name: %s\n", args[0])
			return nil
		},
	}

	return cmd
}

// newConfigClearCommand creates the config clear subcommand
func newConfigClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear user preferences",
		Long: `Remove the default address and name.

Example:
  greeter config clear`,
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}

			if err := userConfigHandler.Clear(); err != nil {
				return fmt.Errorf("failed to clear user config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ User preferences cleared")
			return nil
		},
	}

	return cmd
}

// maskPassword masks passwords in connection strings for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}

func orNotSet(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}
