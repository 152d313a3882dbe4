package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/SscSPs/money_tracker/internal/ofx"
	"github.com/SscSPs/money_tracker/internal/utils"
	"github.com/spf13/cobra"
)

func importOFXCmd(a *app) *cobra.Command {
	var opts ofx.Options
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Record OFX/QFX statement entries as transactions",
		Long: `Each statement entry becomes an INCOME (positive amount) or EXPENSE (negative amount)
transaction on --account. Entries repeating a FITID already seen in this run are skipped.

Examples:
  pfmctl import-ofx --user u1 --account acc-1 --income-category salary --expense-category misc ~/Downloads/*.qfx
  pfmctl import-ofx --dry-run ... statement.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			opts.UserID = s.userID

			var entries []ofx.Entry
			for _, path := range files {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open %s: %w", path, err)
				}
				parsed, err := ofx.Parse(s.ctx, f)
				f.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", filepath.Base(path), err)
				}
				a.logger.Info("Processed file", slog.String("file", filepath.Base(path)), slog.Int("entries", len(parsed)))
				entries = append(entries, parsed...)
			}

			res, err := ofx.NewImporter(s.svc.Transaction).Import(s.ctx, entries, opts)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tDESCRIPTION")
			for _, req := range res.Planned {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", req.Date.Format("2006-01-02"), req.Type,
					utils.FormatWithCurrency(req.Amount, a.cfg.DisplayCurrency), req.Description)
			}
			_ = w.Flush()

			fmt.Fprintf(cmd.OutOrStdout(), "\nplanned %d, created %d, duplicates %d, zero-amount %d, refused %d\n",
				len(res.Planned), len(res.Created), res.Duplicates, res.Skipped, len(res.Failed))
			for _, f := range res.Failed {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s %s: %v\n", f.Entry.FITID, f.Entry.Date.Format("2006-01-02"), f.Err)
			}
			if opts.DryRun {
				fmt.Fprintln(cmd.OutOrStdout(), "dry run: nothing was saved")
			}
			if len(res.Failed) > 0 {
				return fmt.Errorf("%d entries were refused", len(res.Failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.AccountID, "account", "", "account the statement belongs to")
	cmd.Flags().StringVar(&opts.IncomeCategoryID, "income-category", "", "category for credits")
	cmd.Flags().StringVar(&opts.ExpenseCategoryID, "expense-category", "", "category for debits")
	cmd.Flags().BoolVar(&opts.ConfirmOverBudget, "confirm-over-budget", false, "accept allocation overages")
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "d", false, "preview without saving")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

// expandFiles resolves glob patterns; a pattern matching nothing must name an existing file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err != nil {
				slog.Warn("No files found matching pattern", slog.String("pattern", pattern))
				continue
			}
			matches = []string{pattern}
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, errors.New("no files found to import")
	}
	return files, nil
}
