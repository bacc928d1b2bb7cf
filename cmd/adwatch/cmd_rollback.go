package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"adwatch/pkg/adapi"
	"adwatch/pkg/feed"
)

// newRollbackCmd creates the "adwatch rollback" subcommand.
func newRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <action-id>",
		Short: "Reverse a previously executed action",
		Long:  "Asks the backend to reverse an executed action. Only budget-scaling\nand campaign-pause actions marked rollback-possible can be reversed,\nand each at most once.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actionID := args[0]

			client, _, err := newBackendClient()
			if err != nil {
				return err
			}

			registry := feed.NewRollbackRegistry()
			err = registry.TryDo(cmd.Context(), actionID, func(ctx context.Context) error {
				return client.RollbackAction(ctx, actionID)
			})
			if err != nil {
				if errors.Is(err, adapi.ErrRollbackConflict) {
					return fmt.Errorf("action %s cannot be rolled back: already rolled back or not reversible", actionID)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "rollback of action %s requested\n", actionID)
			return nil
		},
	}
}
