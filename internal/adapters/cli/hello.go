package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewHelloCommand creates the hello command
func NewHelloCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hello [name]",
		Short: "Ask the daemon for a greeting",
		Long: `Send a HelloRequest through the daemon's mediator and print the reply.

Without a name argument the default name from the user config is used.

Example:
  greeter hello Tester`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := resolveName(args)
			if err != nil {
				return err
			}

			client, ctx, cancel, err := connect(cmd)
			if err != nil {
				return err
			}
			defer client.Close()
			defer cancel()

			message, err := client.SayHello(ctx, name)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}

	return cmd
}
