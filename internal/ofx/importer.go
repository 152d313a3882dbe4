package ofx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/SscSPs/money_tracker/internal/core/domain"
	portssvc "github.com/SscSPs/money_tracker/internal/core/ports/services"
	"github.com/SscSPs/money_tracker/internal/dto"
	"github.com/SscSPs/money_tracker/internal/middleware"
)

// Options says where imported entries land.
type Options struct {
	UserID            string
	AccountID         string
	IncomeCategoryID  string
	ExpenseCategoryID string
	ConfirmOverBudget bool
	DryRun            bool
}

func (o Options) validate() error {
	switch {
	case o.UserID == "":
		return errors.New("user id is required")
	case o.AccountID == "":
		return errors.New("account id is required")
	case o.IncomeCategoryID == "" || o.ExpenseCategoryID == "":
		return errors.New("income and expense categories are required")
	}
	return nil
}

// Failure is an entry the processor refused.
type Failure struct {
	Entry Entry
	Err   error
}

// Result summarises an import run.
type Result struct {
	Planned    []dto.CreateTransactionRequest
	Created    []string // transaction ids
	Duplicates int
	Skipped    int // zero amounts
	Failed     []Failure
}

// Importer records statement entries through the transaction processor, one unit of work each.
type Importer struct {
	transactions portssvc.TransactionWriterSvc
}

// NewImporter creates an Importer.
func NewImporter(transactions portssvc.TransactionWriterSvc) *Importer {
	return &Importer{transactions: transactions}
}

// Request maps an entry to a transaction request. Zero amounts map to nothing.
func Request(e Entry, opts Options) (dto.CreateTransactionRequest, bool) {
	if e.Amount.IsZero() {
		return dto.CreateTransactionRequest{}, false
	}
	account := opts.AccountID
	req := dto.CreateTransactionRequest{
		Amount:            e.Amount.Abs(),
		Date:              domain.TruncateDay(e.Date),
		Description:       e.Description(),
		ConfirmOverBudget: opts.ConfirmOverBudget,
	}
	if e.Amount.IsPositive() {
		req.Type = domain.Income
		req.DestinationAccountID = &account
		req.CategoryID = opts.IncomeCategoryID
	} else {
		req.Type = domain.Expense
		req.SourceAccountID = &account
		req.CategoryID = opts.ExpenseCategoryID
	}
	return req, true
}

// Import records entries in statement order. Entries repeating an earlier FITID of the same
// statement account are skipped. A refused entry does not stop the run.
func (im *Importer) Import(ctx context.Context, entries []Entry, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	logger := middleware.GetLoggerFromCtx(ctx)

	res := &Result{}
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if e.FITID != "" {
			key := e.StatementAcct + "/" + e.FITID
			if _, dup := seen[key]; dup {
				res.Duplicates++
				continue
			}
			seen[key] = struct{}{}
		}

		req, ok := Request(e, opts)
		if !ok {
			res.Skipped++
			continue
		}
		res.Planned = append(res.Planned, req)
		if opts.DryRun {
			continue
		}

		txn, err := im.transactions.CreateTransaction(ctx, req, opts.UserID)
		if err != nil {
			logger.Warn("Statement entry refused", slog.String("fitid", e.FITID), slog.String("error", err.Error()))
			res.Failed = append(res.Failed, Failure{Entry: e, Err: err})
			continue
		}
		res.Created = append(res.Created, txn.TransactionID)
	}

	logger.Info("OFX import finished",
		slog.Int("planned", len(res.Planned)),
		slog.Int("created", len(res.Created)),
		slog.Int("duplicates", res.Duplicates),
		slog.Int("failed", len(res.Failed)),
		slog.Bool("dry_run", opts.DryRun))
	return res, nil
}
