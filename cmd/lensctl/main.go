// cmd/lensctl edits the persisted lens inventory from the command line,
// through the same engine and blob store the server uses.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/matthewbaird/lensgrid/internal/activity"
	"github.com/matthewbaird/lensgrid/internal/app"
	"github.com/matthewbaird/lensgrid/internal/blob"
	"github.com/matthewbaird/lensgrid/internal/config"
	"github.com/matthewbaird/lensgrid/internal/persist"
	"github.com/matthewbaird/lensgrid/internal/types"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("lensctl: ")

	config.LoadDotEnv()
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lensctl",
		Short: "Manage the optical lens inventory",
		Long: `lensctl reads and edits the lens inventory stored in the configured
blob store (BLOB_BACKEND, DATABASE_URL, BADGER_DIR, GCS_BUCKET).

Every change is saved before the command exits.`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)

	// Export command - write every available lens as CSV
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export available lenses as CSV",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}
	exportCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")

	importCmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import stock from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print inventory valuation, totals and low-stock alerts as JSON",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}

	colorsCmd := &cobra.Command{
		Use:   "colors",
		Short: "Manage the color/status catalog",
	}
	colorsListCmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		Args:  cobra.NoArgs,
		RunE:  runColorsList,
	}
	colorsAddCmd := &cobra.Command{
		Use:   "add <name> <#hex> <price>",
		Short: "Add a catalog entry",
		Args:  cobra.ExactArgs(3),
		RunE:  runColorsAdd,
	}
	colorsAddCmd.Flags().Int("threshold", 0, "Low-stock threshold (0 for none)")
	colorsPriceCmd := &cobra.Command{
		Use:   "price <#hex> <price>",
		Short: "Set the unit price of a catalog entry",
		Args:  cobra.ExactArgs(2),
		RunE:  runColorsPrice,
	}
	colorsCmd.AddCommand(colorsListCmd, colorsAddCmd, colorsPriceCmd)

	optionsCmd := &cobra.Command{
		Use:   "options",
		Short: "Manage attribute option lists",
	}
	optionsAddCmd := &cobra.Command{
		Use:   "add <attribute> <value>",
		Short: "Append a value to an attribute's option list",
		Args:  cobra.ExactArgs(2),
		RunE:  runOptionsAdd,
	}
	optionsCmd.AddCommand(optionsAddCmd)

	activityCmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the most recent logged changes",
		Long: `Show the most recent logged changes, newest first.

The change log is only kept across runs by the sqlite and postgres backends.`,
		Args: cobra.NoArgs,
		RunE: runActivity,
	}
	activityCmd.Flags().StringSlice("type", nil, "Only these event types")
	activityCmd.Flags().String("min-weight", activity.WeightInfo, "Minimum weight (info, moderate, strong)")
	activityCmd.Flags().IntP("limit", "n", 20, "Number of entries")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the stored blobs against the schema",
		Long: `Validate each stored blob (inventory, colors, filter_options) against the
persistence schema. A blob that fails validation is replaced by its default
the next time the inventory is loaded, so check before restarting after a
manual edit.`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}

	rootCmd.AddCommand(exportCmd, importCmd, statsCmd, colorsCmd, optionsCmd, activityCmd, checkCmd)
	return rootCmd
}

// withApp opens the configured store, runs fn and flushes pending saves.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) (err error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.Open(ctx, cfg, app.Options{})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, a)
}

func runExport(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("output")
	return withApp(cmd, func(_ context.Context, a *app.App) error {
		w := cmd.OutOrStdout()
		if path != "" {
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		n, err := a.Engine.Export(w)
		if err != nil {
			return err
		}
		if path != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d lenses to %s\n", n, path)
		}
		return nil
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		res, err := a.Engine.Import(ctx, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "processed %d rows, skipped %d\n", res.Processed, res.Skipped)
		return nil
	})
}

func runStats(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(_ context.Context, a *app.App) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(a.Engine.Stats())
	})
}

func runColorsList(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(_ context.Context, a *app.App) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tTAG\tPRICE\tTHRESHOLD")
		for _, c := range a.Engine.Colors() {
			threshold := "-"
			if c.LowStockThreshold != nil {
				threshold = strconv.Itoa(*c.LowStockThreshold)
			}
			tag := c.Value
			if tag == types.EraseTag {
				tag = "(erase)"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, tag, c.Price.StringFixed(2), threshold)
		}
		return tw.Flush()
	})
}

func runColorsAdd(cmd *cobra.Command, args []string) error {
	price, err := decimal.NewFromString(args[2])
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", args[2], err)
	}
	threshold, _ := cmd.Flags().GetInt("threshold")
	entry := types.ColorInfo{Name: args[0], Value: args[1], Price: price}
	if threshold > 0 {
		entry.LowStockThreshold = &threshold
	}
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		added, err := a.Engine.AddColor(ctx, entry)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", added.Name, added.Value)
		return nil
	})
}

func runColorsPrice(cmd *cobra.Command, args []string) error {
	price, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", args[1], err)
	}
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		return a.Engine.SetPrice(ctx, args[0], price)
	})
}

func runOptionsAdd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		value, err := a.Engine.AddAttributeOption(ctx, types.Attribute(args[0]), args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %q\n", args[0], value)
		return nil
	})
}

func runActivity(cmd *cobra.Command, _ []string) error {
	opts := activity.DefaultQueryOptions()
	opts.EventTypes, _ = cmd.Flags().GetStringSlice("type")
	opts.MinWeight, _ = cmd.Flags().GetString("min-weight")
	opts.Limit, _ = cmd.Flags().GetInt("limit")

	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		entries, _, err := a.Activity.Query(ctx, opts)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				e.OccurredAt.Local().Format(time.DateTime), e.Weight, e.EventType, e.Summary)
		}
		return tw.Flush()
	})
}

// runCheck reads the blobs straight from the store; opening the app would
// already have replaced invalid blobs with defaults in memory.
func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := blob.Open(ctx, cfg.BlobOptions())
	if err != nil {
		return err
	}
	defer store.Close()

	loader, err := persist.NewLoader(store)
	if err != nil {
		return err
	}
	reports, err := loader.Check(ctx)
	if err != nil {
		return err
	}

	invalid := 0
	for _, r := range reports {
		fmt.Fprintf(cmd.OutOrStdout(), "%-15s %s\n", r.Blob, r.Status)
		if r.Err != nil {
			invalid++
			fmt.Fprintf(cmd.OutOrStdout(), "  %v\n", r.Err)
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%d invalid blob(s)", invalid)
	}
	return nil
}
