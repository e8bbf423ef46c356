package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsterling/ownerchart/pkg/history"
	"github.com/jsterling/ownerchart/pkg/ownership"
)

// historyCommand creates the lookup-history management command.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the lookup history",
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyClearCommand())

	return cmd
}

// historyListCommand creates the "history list" subcommand.
func (c *CLI) historyListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent ownership lookups",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openHistory(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close(ctx) }()

			entries, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printInfo("No lookups recorded yet")
				return nil
			}

			for _, e := range entries {
				fmt.Println(
					StyleDim.Render(e.CreatedAt.Local().Format("2006-01-02 15:04")) + "  " +
						StyleValue.Render(e.RootName) + "  " +
						StyleDim.Render(fmt.Sprintf("%d entities · %s",
							e.TotalNodes, ownership.FormatProcessingTime(e.ProcessingTime))))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries to show")
	return cmd
}

// historyClearCommand creates the "history clear" subcommand.
func (c *CLI) historyClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded lookups",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openHistory(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close(ctx) }()

			if err := store.Clear(ctx); err != nil {
				return err
			}
			printSuccess("History cleared")
			return nil
		},
	}
}

// openHistory opens the configured history store, failing loudly: unlike
// recording, the history commands are pointless without a store.
func (c *CLI) openHistory(ctx context.Context) (history.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	store := c.newHistory(ctx, cfg)
	if store == nil {
		return nil, fmt.Errorf("history is disabled or unavailable")
	}
	return store, nil
}
