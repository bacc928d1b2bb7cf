package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"adwatch/pkg/adapi"
	"adwatch/pkg/feed"
)

// agentConfig holds flag values for the agent command.
type agentConfig struct {
	filter string
	limit  int
	offset int
	output string
}

// newAgentCmd creates the "adwatch agent" subcommand.
func newAgentCmd() *cobra.Command {
	var cfg agentConfig

	cmd := &cobra.Command{
		Use:   "agent <agent-id>",
		Short: "Show one agent's evaluation log with executed actions",
		Long:  "Lists a single agent's evaluation log, offset-paginated, including\ncondition-not-met entries the workspace feed hides. Each event is\nprinted with the actions the backend executed for it, joined by\nevaluation event id.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agentID := args[0]
			if !feed.Filter(cfg.filter).Valid() {
				return fmt.Errorf("invalid filter %q (want all, triggered or error)", cfg.filter)
			}
			format, err := resolveFormat(cfg.output)
			if err != nil {
				return err
			}

			client, _, err := newBackendClient()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			page, err := client.ListAgentEvents(ctx, adapi.ListAgentEventsParams{
				AgentID:    agentID,
				ResultType: cfg.filter,
				Limit:      cfg.limit,
				Offset:     cfg.offset,
			})
			if err != nil {
				return err
			}

			actions, err := client.ListAgentActions(ctx, agentID, 0)
			if err != nil {
				return err
			}

			// Join client-side via the detail log's index.
			log := feed.NewAgentLog(agentID)
			gen := log.BeginReset(feed.Filter(cfg.filter))
			log.ApplyPage(gen, page, nil)
			log.SetActions(gen, actions)

			w := cmd.OutOrStdout()
			if format != formatTable {
				type joinedEvent struct {
					adapi.Event
					Actions []adapi.Action `json:"actions,omitempty" yaml:"actions,omitempty"`
				}
				out := struct {
					Events []joinedEvent `json:"events" yaml:"events"`
					Total  int           `json:"total" yaml:"total"`
				}{Total: log.Total}
				for _, ev := range log.Events {
					out.Events = append(out.Events, joinedEvent{Event: ev, Actions: log.ActionsFor(ev.ID)})
				}
				return encode(w, format, out)
			}

			if len(log.Events) == 0 {
				fmt.Fprintln(w, feed.Filter(cfg.filter).EmptyMessage())
				return nil
			}

			for i := range log.Events {
				ev := &log.Events[i]
				printEventTable(w, log.Events[i:i+1], "")
				if joined := log.ActionsFor(ev.ID); len(joined) > 0 {
					printActionTable(w, joined)
				}
			}
			if log.HasMore() {
				fmt.Fprintf(w, "\nshowing %d of %d events; next: --offset %d\n", len(log.Events), log.Total, log.Offset)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.filter, "filter", "all", "result filter: all, triggered or error")
	cmd.Flags().IntVar(&cfg.limit, "limit", adapi.DefaultFeedLimit, "events per page")
	cmd.Flags().IntVar(&cfg.offset, "offset", 0, "number of events to skip")
	cmd.Flags().StringVarP(&cfg.output, "output", "o", "", "output format: table, json or yaml")

	return cmd
}
