package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/SscSPs/money_tracker/internal/dto"
	"github.com/SscSPs/money_tracker/internal/utils"
	"github.com/spf13/cobra"
)

func budgetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Inspect and copy budgets",
	}
	cmd.AddCommand(budgetShowCmd(a), budgetCopyCmd(a))
	return cmd
}

func budgetShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <budgetID>",
		Short: "Show a budget with the usage of each allocation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			view, err := s.svc.Query.GetBudgetWithCategories(s.ctx, args[0], s.userID)
			if err != nil {
				return err
			}
			printBudget(cmd.OutOrStdout(), view, a.cfg.DisplayCurrency)
			return nil
		},
	}
}

func budgetCopyCmd(a *app) *cobra.Command {
	var (
		name  string
		start string
	)
	cmd := &cobra.Command{
		Use:   "copy <budgetID>",
		Short: "Copy a budget and its allocations into a new period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := time.Parse("2006-01-02", start)
			if err != nil {
				return fmt.Errorf("invalid --start %q: %w", start, err)
			}
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			copied, err := s.svc.Budget.CopyBudget(s.ctx, args[0], dto.CopyBudgetRequest{Name: name, StartDate: startDate}, s.userID)
			if err != nil {
				return err
			}
			view, err := s.svc.Query.GetBudgetWithCategories(s.ctx, copied.BudgetID, s.userID)
			if err != nil {
				return err
			}
			printBudget(cmd.OutOrStdout(), view, a.cfg.DisplayCurrency)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name of the new budget")
	cmd.Flags().StringVar(&start, "start", "", "start date of the new period, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func printBudget(out io.Writer, view *dto.BudgetWithCategories, currency string) {
	b := view.Budget
	fmt.Fprintf(out, "%s (%s)  %s .. %s  total %s\n", b.Name, b.PeriodType,
		b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02"),
		utils.FormatWithCurrency(b.TotalAmount, currency))

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ALLOCATION\tCATEGORY\tALLOCATED\tSPENT\tUSED")
	for _, bc := range view.Categories {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%%\n", bc.BudgetCategoryID, bc.CategoryID,
			utils.FormatWithCurrency(bc.AllocatedAmount, currency),
			utils.FormatWithCurrency(bc.SpentAmount, currency),
			bc.UsagePercentage().StringFixed(2))
	}
	_ = w.Flush()
}
