package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/practicehq/planbudget/pkg/plan"
)

var importCmd = &cobra.Command{
	Use:   "import <plan.yaml>",
	Short: "Import a funding plan definition file",
	Long: `Import reads a YAML plan file (client, plan window, total funds, item
lines) and upserts it into storage. Re-importing updates the existing plan.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := plan.Load(args[0])
	if err != nil {
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := p.Apply(cmd.Context(), store); err != nil {
		return err
	}

	fmt.Printf("Plan imported:\n")
	fmt.Printf("  Client:  %s\n", p.Settings.ClientID)
	fmt.Printf("  Window:  %s to %s\n", p.Settings.StartDate, p.Settings.EndDate)
	fmt.Printf("  Items:   %d\n", len(p.Items))
	if p.Settings.TotalFunds > 0 {
		fmt.Printf("  Funds:   $%.2f\n", float64(p.Settings.TotalFunds))
	}

	return nil
}
