package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent generation attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		store, closeDB, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		entries, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "No generations recorded yet.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tTYPE\tOUTCOME\tMODEL\tTOKENS\tCOST\tDURATION")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\t$%.4f\t%s\n",
				e.CreatedAt.Local().Format(time.DateTime), e.Type, e.Outcome, e.Model,
				e.InputTokens, e.OutputTokens, e.CostUSD, e.Duration.Round(time.Millisecond))
		}
		return tw.Flush()
	},
}

var historySummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Aggregate totals over all recorded attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, closeDB, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		sum, err := store.Summary(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Attempts:      %d\n", sum.Total)
		fmt.Fprintf(out, "Failures:      %d\n", sum.Failures)
		fmt.Fprintf(out, "No diagram:    %d\n", sum.Absent)
		fmt.Fprintf(out, "Total cost:    $%.4f\n", sum.CostUSD)

		types := make([]string, 0, len(sum.ByType))
		for t := range sum.ByType {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			fmt.Fprintf(out, "  %-12s %d\n", t, sum.ByType[t])
		}
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete attempts older than a given age",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		age, _ := cmd.Flags().GetDuration("older-than")
		if age <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}
		store, closeDB, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		n, err := store.DeleteBefore(cmd.Context(), time.Now().Add(-age))
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s removed %d entries\n", successLabel("Done:"), n)
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "number of entries to show")
	historyPruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "minimum age of the entries to delete")
	historyCmd.AddCommand(historySummaryCmd, historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}
