package cmd

import (
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Move pending transactions into the ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cmd.OutOrStdout(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.syncer.Sync(ctx)
		if err != nil {
			return err
		}
		a.out.Success("imported %d transactions, ledger has %d", res.Imported, res.Total)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(syncCmd)
}
