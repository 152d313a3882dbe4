package models

import (
	"github.com/shopspring/decimal"
)

// Account is the row layout of the accounts table.
type Account struct {
	AccountID   string          `db:"account_id"`
	UserID      string          `db:"user_id"`
	Name        string          `db:"name"`
	Balance     decimal.Decimal `db:"balance"`
	Status      string          `db:"status"` // ACTIVE or INACTIVE
	AuditFields                 // Embed common audit fields
}
