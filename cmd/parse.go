package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"paisometer/internal/config"
	"paisometer/internal/parser"
	"paisometer/internal/ui"
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse [text...]",
	Short: "Parse one message and print the transaction it describes",
	Example: `  paisometer parse "Rs. 1,500.00 debited from your account at Swiggy"
  paisometer parse --json "You have received Rs 2000 via UPI from Amit"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "Print the result as JSON")
	RootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	vocab := parser.DefaultVocabulary()
	if cfg.VocabularyFile != "" {
		if vocab, err = parser.LoadVocabulary(cfg.VocabularyFile); err != nil {
			return err
		}
	}

	txn, ok := parser.New(vocab).Parse(strings.Join(args, " "))
	if !ok {
		return fmt.Errorf("no transaction found in message")
	}

	if parseJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(txn)
	}
	ui.New(cmd.OutOrStdout()).Parsed(txn)
	return nil
}
