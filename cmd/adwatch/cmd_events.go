package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"adwatch/pkg/adapi"
	"adwatch/pkg/feed"
)

// eventsConfig holds flag values for the events command.
type eventsConfig struct {
	filter   string
	limit    int
	cursor   string
	follow   bool
	interval time.Duration
	output   string
}

// newEventsCmd creates the "adwatch events" subcommand.
func newEventsCmd() *cobra.Command {
	var cfg eventsConfig

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List workspace agent evaluation events",
		Long:  "Lists the workspace-wide agent activity feed, newest first.\nThe default filter shows triggered events only; use --filter error for\nevaluation failures. With --follow, polls for new events and prints\nonly ones not yet seen.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if cfg.follow {
				return followEvents(cmd.Context(), cmd.OutOrStdout(), client, cfg)
			}
			return listEvents(cmd.Context(), cmd.OutOrStdout(), client, cfg, format)
		},
	}

	cmd.Flags().StringVar(&cfg.filter, "filter", "all", "result filter: all, triggered or error")
	cmd.Flags().IntVar(&cfg.limit, "limit", adapi.DefaultFeedLimit, "events per page")
	cmd.Flags().StringVar(&cfg.cursor, "cursor", "", "continuation cursor from a previous page")
	cmd.Flags().BoolVarP(&cfg.follow, "follow", "f", false, "poll for new events")
	cmd.Flags().DurationVar(&cfg.interval, "interval", 5*time.Second, "poll interval with --follow")
	cmd.Flags().StringVarP(&cfg.output, "output", "o", "", "output format: table, json or yaml")

	return cmd
}

// listEvents prints one page of the workspace feed.
func listEvents(ctx context.Context, w io.Writer, client *adapi.Client, cfg eventsConfig, format string) error {
	page, err := client.ListWorkspaceEvents(ctx, adapi.ListEventsParams{
		ResultType: cfg.filter,
		Limit:      cfg.limit,
		Cursor:     cfg.cursor,
	})
	if err != nil {
		return err
	}

	if format != formatTable {
		return encode(w, format, page)
	}

	printEventTable(w, page.Events, feed.Filter(cfg.filter).EmptyMessage())
	if page.NextCursor != "" {
		fmt.Fprintf(w, "\nnext page: adwatch events --filter %s --cursor %s\n", cfg.filter, page.NextCursor)
	}
	return nil
}

// followEvents polls page 1 and prints events not seen before, de-duplicated
// by event id so a refetch returning already-printed events stays quiet.
func followEvents(ctx context.Context, w io.Writer, client *adapi.Client, cfg eventsConfig) error {
	seen := make(map[string]struct{})

	printNew := func() error {
		page, err := client.ListWorkspaceEvents(ctx, adapi.ListEventsParams{
			ResultType: cfg.filter,
			Limit:      cfg.limit,
		})
		if err != nil {
			// Transient poll failures are reported but do not stop the follow.
			fmt.Fprintf(w, "fetch error: %v\n", err)
			return nil
		}

		// The page is newest-first; print unseen events oldest-first so the
		// terminal reads chronologically.
		for i := len(page.Events) - 1; i >= 0; i-- {
			ev := page.Events[i]
			if _, ok := seen[ev.ID]; ok {
				continue
			}
			seen[ev.ID] = struct{}{}
			printEventTable(w, []adapi.Event{ev}, "")
		}
		return nil
	}

	if err := printNew(); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printNew(); err != nil {
				return err
			}
		}
	}
}
