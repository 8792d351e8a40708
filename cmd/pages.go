package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fourohfour/monetizer/internal/analytics"
	"github.com/fourohfour/monetizer/internal/page"
	"github.com/fourohfour/monetizer/internal/store"
)

var pagesCmd = &cobra.Command{
	Use:     "pages",
	Aliases: []string{"p"},
	Short:   "Manage stored pages and owner plans",
	Long: `Inspect and edit the page store used by serve.

Examples:
  monetizer pages list                 # Table of stored pages
  monetizer pages list -o yaml         # As YAML
  monetizer pages show spring-sale     # Page config as JSON
  monetizer pages import pages/        # Import page files
  monetizer pages delete spring-sale   # Remove a page
  monetizer pages plan user-42 pro     # Set an owner's plan`,
}

var (
	pagesListFormat string
	pagesShowFormat string
)

func init() {
	rootCmd.AddCommand(pagesCmd)

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored pages",
		Args:    cobra.NoArgs,
		RunE:    runPagesList,
	}
	addOutputFlag(listCmd, &pagesListFormat)

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored page config",
		Args:  cobra.ExactArgs(1),
		RunE:  runPagesShow,
	}
	showCmd.Flags().VarP(newEnumValue(&pagesShowFormat, formatJSON, formatJSON, formatYAML),
		"output", "o", "Output format (json|yaml)")

	importCmd := &cobra.Command{
		Use:   "import <page-file|dir>...",
		Short: "Import page files into the store",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPagesImport,
	}

	deleteCmd := &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete stored pages",
		Args:    cobra.MinimumNArgs(1),
		RunE:    runPagesDelete,
	}

	planCmd := &cobra.Command{
		Use:   "plan <user-id> [free|starter|pro|business]",
		Short: "Show or set an owner's plan",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runPagesPlan,
	}

	pagesCmd.AddCommand(listCmd, showCmd, importCmd, deleteCmd, planCmd)
}

// withStore opens the configured store for the duration of fn.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, st *store.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, st)
}

func runPagesList(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, st *store.Store) error {
		pages, err := st.List(ctx)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), pagesListFormat, pages, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tTHEME\tFEATURES\tUPDATED")
			for _, p := range pages {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
					p.ID, p.Title, p.Status, p.Theme, p.Features, p.UpdatedAt.Format("2006-01-02 15:04"))
			}
		})
	})
}

func runPagesShow(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, st *store.Store) error {
		cfg, err := st.Get(ctx, args[0])
		if err != nil {
			return err
		}
		data, err := page.Encode(cfg)
		if err != nil {
			return err
		}
		// re-decode so both formats share the wire field names
		var wire map[string]any
		if err := json.Unmarshal(data, &wire); err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), pagesShowFormat, wire, nil)
	})
}

func runPagesImport(cmd *cobra.Command, args []string) error {
	files, err := collectPageFiles(args)
	if err != nil {
		return err
	}
	return withStore(cmd, func(ctx context.Context, st *store.Store) error {
		for _, f := range files {
			cfg, err := loadPage(cmd, f)
			if err != nil {
				return err
			}
			if err := st.Save(ctx, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s as %s\n", f, cfg.ID)
		}
		return nil
	})
}

func runPagesDelete(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, st *store.Store) error {
		for _, id := range args {
			if err := st.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
		}
		return nil
	})
}

func runPagesPlan(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, st *store.Store) error {
		userID := args[0]
		if len(args) == 2 {
			if err := st.SetPlan(ctx, userID, analytics.Plan(args[1])); err != nil {
				return err
			}
		}
		plan, err := st.PlanFor(ctx, userID)
		if err != nil {
			return err
		}
		analyticsState := "stub"
		if plan.HasAnalytics() {
			analyticsState = "beacon"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (analytics %s)\n", userID, plan, analyticsState)
		return nil
	})
}
