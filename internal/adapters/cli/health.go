package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewHealthCommand creates the health command
func NewHealthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check daemon health status",
		Long:  `Verify that the daemon is running and serves the Greeter service.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel, err := connect(cmd)
			if err != nil {
				return err
			}
			defer client.Close()
			defer cancel()

			healthy, err := client.Healthy(ctx)
			if err != nil {
				return err
			}
			if !healthy {
				return fmt.Errorf("daemon is not serving")
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Daemon is healthy")
			return nil
		},
	}

	return cmd
}
