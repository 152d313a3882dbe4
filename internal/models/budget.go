package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is the row layout of the budgets table.
type Budget struct {
	BudgetID    string          `db:"budget_id"`
	UserID      string          `db:"user_id"`
	Name        string          `db:"name"`
	PeriodType  string          `db:"period_type"`
	StartDate   time.Time       `db:"start_date"`
	EndDate     time.Time       `db:"end_date"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	AuditFields
}

// BudgetCategory is the row layout of the budget_categories table.
type BudgetCategory struct {
	BudgetCategoryID string          `db:"budget_category_id"`
	BudgetID         string          `db:"budget_id"`
	CategoryID       string          `db:"category_id"`
	AllocatedAmount  decimal.Decimal `db:"allocated_amount"`
	SpentAmount      decimal.Decimal `db:"spent_amount"`
	AuditFields
}
