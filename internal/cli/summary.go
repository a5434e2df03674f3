package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/practicehq/planbudget/pkg/model"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <client-id>",
	Short: "Show a client's budget utilization and projections",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().String("as-of", "", "Evaluation date (YYYY-MM-DD, default today)")
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	today := model.DateOf(time.Now())
	if asOf, _ := cmd.Flags().GetString("as-of"); asOf != "" {
		today, err = model.ParseDate(asOf)
		if err != nil {
			return err
		}
	}

	engine, store, err := initEngine(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := engine.GetBudgetSummary(cmd.Context(), args[0], today)
	if err != nil {
		return fmt.Errorf("compute summary: %w", err)
	}
	if summary == nil {
		fmt.Println("No active plan for this client.")
		return nil
	}

	sc := summary.Scalars
	fmt.Printf("Plan %s to %s (as of %s)\n\n",
		summary.Settings.StartDate, summary.Settings.EndDate, summary.AsOf)
	fmt.Printf("  Total budget:   $%.2f\n", sc.TotalBudget)
	fmt.Printf("  Used:           $%.2f (%.1f%%)\n", sc.UsedBudget, sc.UtilizationPercentage)
	fmt.Printf("  Remaining:      $%.2f\n", sc.RemainingBudget)
	fmt.Printf("  Days:           %d elapsed / %d total\n", sc.DaysElapsed, sc.TotalDays)
	fmt.Printf("  Daily budget:   $%.2f\n", sc.DailyBudget)
	fmt.Printf("  Daily spend:    $%.2f\n", sc.DailySpendRate)

	if sc.ProjectedEndDate != nil {
		fmt.Printf("  Depletion:      %s (%d days at current rate)\n",
			*sc.ProjectedEndDate, *sc.DaysUntilDepletion)
	}
	if sc.ProjectedOverspend != nil {
		fmt.Printf("  Overspend risk: $%.2f by plan end\n", *sc.ProjectedOverspend)
	}

	if len(summary.Items) > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "CODE\tUSED\tALLOCATED\tRATE\tSTATUS\n")
		for _, item := range summary.Items {
			fmt.Fprintf(w, "%s\t%g\t%g\t%.0f%%\t%s\n",
				item.ItemCode, item.UsedQuantity, float64(item.Quantity),
				item.UtilizationRate*100, strings.ToUpper(string(item.Status)),
			)
		}
		w.Flush()
	}

	return nil
}
