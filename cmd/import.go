package cmd

import (
	"github.com/spf13/cobra"

	"paisometer/internal/importer"
	"paisometer/internal/pipeline"
)

var (
	senderName string
	startDate  string
)

var importCmd = &cobra.Command{
	Use:   "import [xml-file]",
	Short: "Import an SMS backup XML file",
	Long: `Replays every message of an SMS backup through the ingest pipeline,
using each message's own date. Importing the same backup twice does not
duplicate ledger entries.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&senderName, "sender", "s", "", "Filter by sender address (e.g., 'HDFCBK')")
	importCmd.Flags().StringVarP(&startDate, "from", "f", "", "Filter messages from this date onwards (format: YYYY-MM-DD)")
	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd.OutOrStdout(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := importer.New(a.ingestor, a.log).ImportFile(ctx, args[0], importer.Options{
		Sender: senderName,
		From:   startDate,
	})
	if err != nil {
		return err
	}

	for _, txn := range summary.Queued {
		a.out.Parsed(txn)
	}
	a.out.Success("%d messages read, %d transactions queued, %d duplicates",
		summary.Messages, summary.Outcomes[pipeline.Queued], summary.Outcomes[pipeline.Duplicate])
	return nil
}
