package mapping

import (
	"testing"
	"time"

	"github.com/SscSPs/money_tracker/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionMapping_NullableAccounts(t *testing.T) {
	src := "acc-1"
	empty := ""
	d := domain.Transaction{
		TransactionID:        "t",
		SourceAccountID:      &src,
		DestinationAccountID: &empty,
		Amount:               decimal.NewFromInt(5),
		Type:                 domain.Expense,
		Date:                 time.Date(2025, 7, 1, 15, 4, 5, 0, time.UTC),
	}

	m := ToModelTransaction(d)
	assert.True(t, m.SourceAccountID.Valid)
	assert.False(t, m.DestinationAccountID.Valid, "empty id is stored as NULL")
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), m.Date)

	back := ToDomainTransaction(m)
	assert.Equal(t, "acc-1", *back.SourceAccountID)
	assert.Nil(t, back.DestinationAccountID)
}

func TestBudgetMapping_DatesAreCalendarDays(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	m := ToModelBudget(domain.Budget{BudgetID: "b"})
	m.StartDate = time.Date(2025, 7, 1, 0, 0, 0, 0, loc)
	m.EndDate = time.Date(2025, 7, 31, 0, 0, 0, 0, loc)

	d := ToDomainBudget(m)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), d.StartDate)
	assert.Equal(t, time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC), d.EndDate)
}
