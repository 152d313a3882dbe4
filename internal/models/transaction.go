package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the row layout of the transactions table.
type Transaction struct {
	TransactionID        string          `db:"transaction_id"`
	UserID               string          `db:"user_id"`
	SourceAccountID      sql.NullString  `db:"source_account_id"`
	DestinationAccountID sql.NullString  `db:"destination_account_id"`
	CategoryID           string          `db:"category_id"`
	Amount               decimal.Decimal `db:"amount"`
	Type                 string          `db:"type"`
	Date                 time.Time       `db:"date"`
	Description          string          `db:"description"`
	AuditFields
}
