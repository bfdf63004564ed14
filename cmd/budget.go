package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"paisometer/internal/alerts"
)

var (
	budgetLimit string
	budgetSpent string
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show the daily budget used for spending alerts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cmd.OutOrStdout(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		b, ok, err := a.monitor.Budget(ctx)
		if err != nil {
			return err
		}
		if !ok {
			a.out.Info("no budget set")
			return nil
		}
		a.out.Info("daily limit ₹%s, spent ₹%s", b.Limit.StringFixed(2), b.Spent.StringFixed(2))
		return nil
	},
}

var budgetSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the daily limit and the amount already spent today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := decimal.NewFromString(budgetLimit)
		if err != nil {
			return fmt.Errorf("invalid limit %q: %w", budgetLimit, err)
		}
		spent, err := decimal.NewFromString(budgetSpent)
		if err != nil {
			return fmt.Errorf("invalid spent %q: %w", budgetSpent, err)
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, cmd.OutOrStdout(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.monitor.SetBudget(ctx, alerts.Budget{Limit: limit, Spent: spent}); err != nil {
			return err
		}
		a.out.Success("budget set: limit ₹%s, spent ₹%s", limit.StringFixed(2), spent.StringFixed(2))
		return nil
	},
}

func init() {
	budgetSetCmd.Flags().StringVar(&budgetLimit, "limit", "", "Daily spending limit")
	budgetSetCmd.Flags().StringVar(&budgetSpent, "spent", "0", "Amount already spent today")
	_ = budgetSetCmd.MarkFlagRequired("limit")

	budgetCmd.AddCommand(budgetSetCmd)
	RootCmd.AddCommand(budgetCmd)
}
