package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/practicehq/planbudget/pkg/model"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Record and list session usage",
}

var sessionsAddCmd = &cobra.Command{
	Use:   "add <client-id>",
	Short: "Record a session with product usage",
	Long: `Record a session. Product usage is given as repeated --use flags in the
form CODE=QUANTITY, e.g. --use 01_011_0107_1_1=2 --use TRAVEL=0.5.`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionsAdd,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list <client-id>",
	Short: "List a client's sessions",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsList,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsAddCmd)
	sessionsCmd.AddCommand(sessionsListCmd)

	sessionsAddCmd.Flags().String("date", "", "Session date (YYYY-MM-DD, default today)")
	sessionsAddCmd.Flags().String("status", string(model.SessionCompleted), "Session status (scheduled, completed, cancelled, no_show)")
	sessionsAddCmd.Flags().String("notes", "", "Session notes")
	sessionsAddCmd.Flags().StringArray("use", nil, "Product usage as CODE=QUANTITY (repeatable)")
}

func runSessionsAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	date := model.DateOf(time.Now())
	if d, _ := cmd.Flags().GetString("date"); d != "" {
		date, err = model.ParseDate(d)
		if err != nil {
			return err
		}
	}

	status, _ := cmd.Flags().GetString("status")
	notes, _ := cmd.Flags().GetString("notes")
	uses, _ := cmd.Flags().GetStringArray("use")

	products := make([]model.ProductUsage, 0, len(uses))
	for _, use := range uses {
		code, qtyStr, ok := strings.Cut(use, "=")
		if !ok || code == "" {
			return fmt.Errorf("invalid --use %q, expected CODE=QUANTITY", use)
		}
		qty, err := strconv.ParseFloat(qtyStr, 64)
		if err != nil {
			return fmt.Errorf("invalid quantity in --use %q: %w", use, err)
		}
		products = append(products, model.ProductUsage{
			ItemCode: code,
			Quantity: model.Quantity(qty),
		})
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	session := &model.SessionRecord{
		ClientID:    args[0],
		Status:      model.SessionStatus(status),
		SessionDate: date,
		Notes:       notes,
		Products:    products,
	}
	if err := store.RecordSession(cmd.Context(), session); err != nil {
		return fmt.Errorf("record session: %w", err)
	}

	fmt.Printf("Session recorded:\n")
	fmt.Printf("  ID:       %s\n", session.ID)
	fmt.Printf("  Date:     %s\n", session.SessionDate)
	fmt.Printf("  Status:   %s\n", session.Status)
	fmt.Printf("  Products: %d\n", len(session.Products))

	return nil
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.ListSessions(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded.")
		return nil
	}

	for _, session := range sessions {
		fmt.Printf("%s  %-10s  %d products", session.SessionDate, session.Status, len(session.Products))
		if session.Notes != "" {
			fmt.Printf("  %s", session.Notes)
		}
		fmt.Println()
	}

	return nil
}
