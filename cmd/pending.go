package cmd

import (
	"github.com/spf13/cobra"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List transactions waiting to be synced",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cmd.OutOrStdout(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.queue.Peek(ctx)
		if err != nil {
			return err
		}
		for _, it := range items {
			a.out.Pending(it)
		}
		a.out.Info("%d pending", len(items))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(pendingCmd)
}
