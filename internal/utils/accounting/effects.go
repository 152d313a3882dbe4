package accounting

import (
	"sort"
	"time"

	"github.com/SscSPs/money_tracker/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountDelta is a signed change to one account balance.
type AccountDelta struct {
	AccountID string
	Amount    decimal.Decimal
}

// UsageDelta is a signed change to the spent amount of the allocations covering (CategoryID, Date).
type UsageDelta struct {
	CategoryID string
	Date       time.Time
	Amount     decimal.Decimal
}

// Effects is everything a stored transaction contributes to balances and budget usage.
type Effects struct {
	Accounts []AccountDelta
	Usage    *UsageDelta
}

// EffectsOf computes the deltas a transaction applies when it is recorded.
// INCOME credits the destination, EXPENSE debits the source and adds to budget usage,
// TRANSFER moves the amount between the two accounts.
func EffectsOf(txn domain.Transaction) Effects {
	var eff Effects
	switch txn.Type {
	case domain.Income:
		eff.Accounts = []AccountDelta{{AccountID: *txn.DestinationAccountID, Amount: txn.Amount}}
	case domain.Expense:
		eff.Accounts = []AccountDelta{{AccountID: *txn.SourceAccountID, Amount: txn.Amount.Neg()}}
		eff.Usage = &UsageDelta{CategoryID: txn.CategoryID, Date: domain.TruncateDay(txn.Date), Amount: txn.Amount}
	case domain.Transfer:
		eff.Accounts = []AccountDelta{
			{AccountID: *txn.SourceAccountID, Amount: txn.Amount.Neg()},
			{AccountID: *txn.DestinationAccountID, Amount: txn.Amount},
		}
	}
	return eff
}

// Reverse negates every delta, undoing the effects exactly.
func (e Effects) Reverse() Effects {
	out := Effects{Accounts: make([]AccountDelta, len(e.Accounts))}
	for i, d := range e.Accounts {
		out.Accounts[i] = AccountDelta{AccountID: d.AccountID, Amount: d.Amount.Neg()}
	}
	if e.Usage != nil {
		u := *e.Usage
		u.Amount = u.Amount.Neg()
		out.Usage = &u
	}
	return out
}

// OrderCreditsFirst returns the deltas with every non-negative amount ahead of the negative ones,
// keeping the relative order inside each group. Applying credits first means a debit is only
// refused when the balance it leaves behind is really negative.
func OrderCreditsFirst(deltas []AccountDelta) []AccountDelta {
	out := make([]AccountDelta, len(deltas))
	copy(out, deltas)
	sort.SliceStable(out, func(i, j int) bool {
		return !out[i].Amount.IsNegative() && out[j].Amount.IsNegative()
	})
	return out
}

// NetByAccount sums deltas per account. Used for reporting the net effect of an update, never
// for applying it.
func NetByAccount(deltas []AccountDelta) map[string]decimal.Decimal {
	net := make(map[string]decimal.Decimal, len(deltas))
	for _, d := range deltas {
		net[d.AccountID] = net[d.AccountID].Add(d.Amount)
	}
	return net
}
