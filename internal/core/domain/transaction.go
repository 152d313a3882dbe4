package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType says which way money moves.
type TransactionType string

const (
	Income   TransactionType = "INCOME"
	Expense  TransactionType = "EXPENSE"
	Transfer TransactionType = "TRANSFER"
)

var (
	ErrInvalidTransactionType = errors.New("unknown transaction type")
	ErrNonPositiveAmount      = errors.New("amount must be greater than zero")
	ErrInvalidShape           = errors.New("accounts do not match transaction type")
	ErrCategoryTypeMismatch   = errors.New("category type does not match transaction type")
)

// Transaction is one recorded movement of money for a user.
// INCOME only has a destination, EXPENSE only a source, TRANSFER both.
type Transaction struct {
	TransactionID        string          `json:"transactionID"` // Primary Key (UUID)
	UserID               string          `json:"userID"`
	SourceAccountID      *string         `json:"sourceAccountID,omitempty"`      // Debited account
	DestinationAccountID *string         `json:"destinationAccountID,omitempty"` // Credited account
	CategoryID           string          `json:"categoryID"`
	Amount               decimal.Decimal `json:"amount"` // Always positive
	Type                 TransactionType `json:"type"`
	Date                 time.Time       `json:"date"` // Calendar day, UTC
	Description          string          `json:"description"`
	AuditFields
}

// Validate checks amount and account shape. The returned errors are meant to be wrapped
// with apperrors.ErrValidation by callers.
func (t Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if err := CheckAmountScale(t.Amount); err != nil {
		return err
	}
	src, dst := deref(t.SourceAccountID), deref(t.DestinationAccountID)
	switch t.Type {
	case Income:
		if src != "" || dst == "" {
			return fmt.Errorf("%w: income needs a destination account only", ErrInvalidShape)
		}
	case Expense:
		if src == "" || dst != "" {
			return fmt.Errorf("%w: expense needs a source account only", ErrInvalidShape)
		}
	case Transfer:
		if src == "" || dst == "" {
			return fmt.Errorf("%w: transfer needs source and destination accounts", ErrInvalidShape)
		}
		if src == dst {
			return fmt.Errorf("%w: transfer source and destination must differ", ErrInvalidShape)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTransactionType, t.Type)
	}
	return nil
}

// AcceptsCategory reports whether a category of type ct may label a transaction of this type.
func (t Transaction) AcceptsCategory(ct CategoryType) bool {
	switch t.Type {
	case Income:
		return ct == CategoryIncome
	case Expense:
		return ct == CategoryExpense
	case Transfer:
		return true
	}
	return false
}

// AccountIDs lists the accounts the transaction touches.
func (t Transaction) AccountIDs() []string {
	ids := make([]string, 0, 2)
	if s := deref(t.SourceAccountID); s != "" {
		ids = append(ids, s)
	}
	if d := deref(t.DestinationAccountID); d != "" {
		ids = append(ids, d)
	}
	return ids
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
