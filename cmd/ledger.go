package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"paisometer/internal/models"
	"paisometer/internal/writer"
)

var (
	outputDir   string
	entryIncome bool
	entryNote   string
	entryDate   string
	ledgerLimit int
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show the ledger, newest first",
	Args:  cobra.NoArgs,
	RunE:  runLedgerList,
}

var ledgerAddCmd = &cobra.Command{
	Use:   "add <amount> <category>",
	Short: "Add a transaction by hand",
	Args:  cobra.ExactArgs(2),
	RunE:  runLedgerAdd,
}

var ledgerExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ledger to CSV files, one per month",
	Args:  cobra.NoArgs,
	RunE:  runLedgerExport,
}

func init() {
	ledgerCmd.Flags().IntVarP(&ledgerLimit, "limit", "l", 50, "Show at most this many entries (0 for all)")

	ledgerAddCmd.Flags().BoolVar(&entryIncome, "income", false, "Record income instead of an expense")
	ledgerAddCmd.Flags().StringVarP(&entryNote, "note", "n", "", "Note to attach")
	ledgerAddCmd.Flags().StringVar(&entryDate, "date", "", "Date of the transaction (YYYY-MM-DD, default now)")

	ledgerExportCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Output directory for CSV files (created if not exists)")

	ledgerCmd.AddCommand(ledgerAddCmd, ledgerExportCmd)
	RootCmd.AddCommand(ledgerCmd)
}

func runLedgerList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd.OutOrStdout(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	txns, err := a.repo.All(ctx)
	if err != nil {
		return err
	}
	shown := txns
	if ledgerLimit > 0 && len(shown) > ledgerLimit {
		shown = shown[:ledgerLimit]
	}
	for _, t := range shown {
		a.out.Ledger(t)
	}
	a.out.Info("%d of %d entries", len(shown), len(txns))
	return nil
}

func runLedgerAdd(cmd *cobra.Command, args []string) error {
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[0], err)
	}

	at := time.Now()
	if entryDate != "" {
		if at, err = time.ParseInLocation("2006-01-02", entryDate, time.Local); err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}
	}

	txnType := models.TypeExpense
	if entryIncome {
		txnType = models.TypeIncome
	}

	txn := models.LedgerTransaction{
		ID:        uuid.NewString(),
		Amount:    amount,
		Type:      txnType,
		Category:  strings.ToLower(args[1]),
		Timestamp: at.UnixMilli(),
		Note:      entryNote,
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cmd.OutOrStdout(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.repo.Add(ctx, txn); err != nil {
		return err
	}
	a.out.Ledger(txn)
	return nil
}

func runLedgerExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd.OutOrStdout(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	txns, err := a.repo.All(ctx)
	if err != nil {
		return err
	}

	files, err := writer.New(outputDir).Write(txns)
	if err != nil {
		return fmt.Errorf("failed to write transactions: %w", err)
	}
	for _, f := range files {
		a.out.Success("Created %s", f)
	}
	if len(files) == 0 {
		a.out.Info("ledger is empty, nothing exported")
	}
	return nil
}
