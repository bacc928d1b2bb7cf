package main

import (
	"fmt"

	"adwatch/internal/appversion"

	"github.com/spf13/cobra"
)

// newRootCmd creates the root adwatch command with all subcommands attached.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "adwatch",
		Short:         "Agent activity feed for ad-performance automations",
		Long:          "adwatch is a terminal client for the agent evaluation backend.\nIt lists agent evaluation events, inspects per-agent logs and executed\nactions, and requests rollbacks of reversible actions.",
		Version:       fmt.Sprintf("adwatch %s", appversion.String()),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.AddCommand(
		newEventsCmd(),
		newAgentCmd(),
		newActionsCmd(),
		newRollbackCmd(),
		newDashCmd(),
	)

	return cmd
}
