package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewGreetingsCommand creates the greetings command with subcommands
func NewGreetingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "greetings",
		Short: "Record and list greetings",
		Long: `Record greetings (a command, run inside a transaction and audited)
and list them (a query, served from the response cache when enabled).

Examples:
  greeter greetings record Ada
  greeter greetings list --limit 5`,
	}

	cmd.AddCommand(newGreetingsRecordCommand())
	cmd.AddCommand(newGreetingsListCommand())

	return cmd
}

// newGreetingsRecordCommand creates the greetings record subcommand
func newGreetingsRecordCommand() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "record [name]",
		Short: "Record a greeting",
		Long: `Record a greeting for a name. Without --message the daemon stores "Hello <name>".

Example:
  greeter greetings record Ada --message "Good morning Ada"`,
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

			reply, err := client.RecordGreeting(ctx, name, message)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "✓ Greeting recorded")
			fmt.Fprintf(out, "  ID:       %s\n", reply.ID)
			fmt.Fprintf(out, "  Name:     %s\n", reply.Name)
			fmt.Fprintf(out, "  Message:  %s\n", reply.Message)
			fmt.Fprintf(out, "  Created:  %s\n", reply.CreatedAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Greeting text (defaults to \"Hello <name>\")")

	return cmd
}

// newGreetingsListCommand creates the greetings list subcommand
func newGreetingsListCommand() *cobra.Command {
	var (
		name  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded greetings",
		Long: `List recorded greetings, newest first.

Example:
  greeter greetings list --name Ada --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel, err := connect(cmd)
			if err != nil {
				return err
			}
			defer client.Close()
			defer cancel()

			reply, err := client.ListGreetings(ctx, name, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if reply.Count == 0 {
				fmt.Fprintln(out, "No greetings recorded")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tMESSAGE\tCREATED")
			for _, g := range reply.Greetings {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.ID, g.Name, g.Message, g.CreatedAt.Format(time.RFC3339))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d greeting(s)\n", reply.Count)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Only greetings for this name")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of greetings (0 = server default)")

	return cmd
}
