package main

import (
	"github.com/spf13/cobra"
)

// newActionsCmd creates the "adwatch actions" subcommand.
func newActionsCmd() *cobra.Command {
	var (
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "actions <agent-id>",
		Short: "List actions executed by an agent",
		Long:  "Lists the side effects an agent has executed, newest first, with\nrollback state: reversible, rolled-back, or not reversible.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveFormat(output)
			if err != nil {
				return err
			}

			client, _, err := newBackendClient()
			if err != nil {
				return err
			}

			actions, err := client.ListAgentActions(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if format != formatTable {
				return encode(w, format, struct {
					Items any `json:"items" yaml:"items"`
				}{actions})
			}
			printActionTable(w, actions)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum actions to fetch (0 = backend maximum)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: table, json or yaml")

	return cmd
}
