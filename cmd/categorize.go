package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"paisometer/internal/models"
)

var categorizeNote string

var categorizeCmd = &cobra.Command{
	Use:   "categorize <id> <category>",
	Short: "Set the category of a pending transaction",
	Long: fmt.Sprintf(`Sets the category (and optionally a note) of a transaction still in the
pending queue. Categories: %s.`, strings.Join(models.Categories, ", ")),
	Args: cobra.ExactArgs(2),
	RunE: runCategorize,
}

func init() {
	categorizeCmd.Flags().StringVarP(&categorizeNote, "note", "n", "", "Note to attach")
	RootCmd.AddCommand(categorizeCmd)
}

func runCategorize(cmd *cobra.Command, args []string) error {
	id, category := args[0], strings.ToLower(args[1])
	if !models.ValidCategory(category) {
		return fmt.Errorf("unknown category %q (use one of: %s)", category, strings.Join(models.Categories, ", "))
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cmd.OutOrStdout(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	var note *string
	if cmd.Flags().Changed("note") {
		note = &categorizeNote
	}

	found, err := a.queue.UpdateDisposition(ctx, id, category, note)
	if err != nil {
		return err
	}
	if !found {
		a.out.Warning("no pending transaction %s", id)
		return nil
	}
	a.out.Success("%s marked as %s", id, category)
	return nil
}
