// Package ofx reads OFX/QFX bank statements and records their entries as ledger transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/SscSPs/money_tracker/internal/middleware"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

// Entry is one statement line. Amount is signed: credits to the account are positive.
type Entry struct {
	FITID         string
	StatementAcct string
	Date          time.Time
	Amount        decimal.Decimal
	Payee         string
	Memo          string
	TrnType       string
}

// Description is the text stored on the resulting transaction.
func (e Entry) Description() string {
	switch {
	case e.Payee != "" && e.Memo != "" && !strings.EqualFold(e.Payee, e.Memo):
		return e.Payee + " - " + e.Memo
	case e.Payee != "":
		return e.Payee
	default:
		return e.Memo
	}
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocess fixes formatting quirks some banks ship in their exports.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// Parse reads every bank and credit card statement in r.
func Parse(ctx context.Context, r io.Reader) ([]Entry, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var entries []Entry
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			entries = append(entries, convert(stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID))...)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			entries = append(entries, convert(stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID))...)
		}
	}

	middleware.GetLoggerFromCtx(ctx).Info("Parsed OFX file",
		slog.Int("entries", len(entries)),
		slog.Int("bank_statements", len(resp.Bank)),
		slog.Int("cc_statements", len(resp.CreditCard)))
	return entries, nil
}

func convert(txns []ofxgo.Transaction, acctID string) []Entry {
	out := make([]Entry, 0, len(txns))
	for _, t := range txns {
		amount, err := decimal.NewFromString(t.TrnAmt.FloatString(4))
		if err != nil {
			continue
		}
		payee := strings.TrimSpace(string(t.Name))
		if t.Payee != nil && t.Payee.Name != "" {
			payee = strings.TrimSpace(string(t.Payee.Name))
		}
		out = append(out, Entry{
			FITID:         string(t.FiTID),
			StatementAcct: acctID,
			Date:          t.DtPosted.Time,
			Amount:        amount,
			Payee:         payee,
			Memo:          strings.TrimSpace(string(t.Memo)),
			TrnType:       t.TrnType.String(),
		})
	}
	return out
}
