package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var itemsCmd = &cobra.Command{
	Use:   "items <client-id>",
	Short: "List a client's budget items",
	Args:  cobra.ExactArgs(1),
	RunE:  runItems,
}

func init() {
	rootCmd.AddCommand(itemsCmd)
}

func runItems(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	items, err := store.ListBudgetItems(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("list budget items: %w", err)
	}

	if len(items) == 0 {
		fmt.Println("No budget items. Use 'planbudget import' to set up a plan.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CODE\tDESCRIPTION\tCATEGORY\tUNIT PRICE\tQUANTITY\tTOTAL\n")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t$%.2f\t%g\t$%.2f\n",
			item.ItemCode, item.Description, item.Category,
			float64(item.UnitPrice), float64(item.Quantity), item.TotalCost(),
		)
	}
	w.Flush()

	return nil
}
