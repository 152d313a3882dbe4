package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/SscSPs/money_tracker/internal/core/domain"
	"github.com/SscSPs/money_tracker/internal/utils"
	"github.com/spf13/cobra"
)

const balancePageSize = 100

func balanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [accountID...]",
		Short: "Print account balances, all accounts when none is named",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			var accounts []domain.Account
			if len(args) == 0 {
				for offset := 0; ; offset += balancePageSize {
					page, err := s.svc.Account.ListAccounts(s.ctx, s.userID, balancePageSize, offset)
					if err != nil {
						return err
					}
					accounts = append(accounts, page...)
					if len(page) < balancePageSize {
						break
					}
				}
			} else {
				for _, id := range args {
					acc, err := s.svc.Account.GetAccountByID(s.ctx, id, s.userID)
					if err != nil {
						return fmt.Errorf("%s: %w", id, err)
					}
					accounts = append(accounts, *acc)
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ACCOUNT\tNAME\tSTATUS\tBALANCE")
			for _, acc := range accounts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", acc.AccountID, acc.Name, acc.Status,
					utils.FormatWithCurrency(acc.Balance, a.cfg.DisplayCurrency))
			}
			return w.Flush()
		},
	}
}
