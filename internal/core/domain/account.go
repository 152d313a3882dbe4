package domain

import (
	"github.com/shopspring/decimal"
)

// AccountStatus tells whether an account still accepts balance changes.
type AccountStatus string

const (
	AccountActive   AccountStatus = "ACTIVE"
	AccountInactive AccountStatus = "INACTIVE"
)

// Account represents a user's money holder. Its balance only moves through the ledger.
type Account struct {
	AccountID   string          `json:"accountID"` // Primary Key (UUID)
	UserID      string          `json:"userID"`    // Owner
	Name        string          `json:"name"`
	Balance     decimal.Decimal `json:"balance"`
	Status      AccountStatus   `json:"status"`
	AuditFields                 // Embed CreatedAt, CreatedBy, etc.
}

// IsActive reports whether the ledger may apply deltas to the account.
func (a Account) IsActive() bool {
	return a.Status == AccountActive
}

// OwnedBy reports whether userID owns the account.
func (a Account) OwnedBy(userID string) bool {
	return a.UserID == userID
}
