package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	address string
	timeout time.Duration
	verbose bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "greeter",
		Short: "Greeter CLI - Talk to the greeter daemon",
		Long: `Greeter CLI sends requests to the greeter daemon over gRPC.
Every request is dispatched by the daemon's mediator through its behavior pipeline.

Examples:
  greeter hello Tester
  greeter greetings record Ada --message "Hi Ada"
  greeter greetings list --name Ada --limit 10
  greeter config set-address /tmp/greeter-daemon.sock
  greeter health`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&address, "address", getDefaultAddress(),
		"Daemon address (host:port or unix socket path)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Second,
		"Request timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	// Add command groups
	rootCmd.AddCommand(NewHelloCommand())
	rootCmd.AddCommand(NewGreetingsCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewHealthCommand())

	return rootCmd
}

// getDefaultAddress returns the default daemon address
func getDefaultAddress() string {
	if addr := os.Getenv("GREETER_ADDRESS"); addr != "" {
		return addr
	}
	return "localhost:50061"
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
