package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodType decides how a budget's end date follows from its start date.
type PeriodType string

const (
	PeriodWeekly    PeriodType = "WEEKLY"
	PeriodMonthly   PeriodType = "MONTHLY"
	PeriodQuarterly PeriodType = "QUARTERLY"
	PeriodYearly    PeriodType = "YEARLY"
	PeriodCustom    PeriodType = "CUSTOM"
)

var (
	ErrInvalidPeriodType = errors.New("unknown period type")
	ErrMissingEndDate    = errors.New("custom period needs an end date")
	ErrEndBeforeStart    = errors.New("end date is before start date")
)

// Budget caps spending across a period. Its allocations live in BudgetCategory.
type Budget struct {
	BudgetID    string          `json:"budgetID"`
	UserID      string          `json:"userID"`
	Name        string          `json:"name"` // Unique per user
	PeriodType  PeriodType      `json:"periodType"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"` // Inclusive
	TotalAmount decimal.Decimal `json:"totalAmount"`
	AuditFields
}

// Contains reports whether day falls inside the budget period, both ends included.
func (b Budget) Contains(day time.Time) bool {
	d := TruncateDay(day)
	return !d.Before(b.StartDate) && !d.After(b.EndDate)
}

// Overlaps reports whether the closed intervals of b and [start, end] intersect.
func (b Budget) Overlaps(start, end time.Time) bool {
	return PeriodsOverlap(b.StartDate, b.EndDate, start, end)
}

// LengthDays is the inclusive number of days the period covers.
func (b Budget) LengthDays() int {
	return int(b.EndDate.Sub(b.StartDate).Hours()/24) + 1
}

// BudgetCategory is an allocation of part of a budget to one expense category.
type BudgetCategory struct {
	BudgetCategoryID string          `json:"budgetCategoryID"`
	BudgetID         string          `json:"budgetID"`
	CategoryID       string          `json:"categoryID"`
	AllocatedAmount  decimal.Decimal `json:"allocatedAmount"`
	SpentAmount      decimal.Decimal `json:"spentAmount"` // Never negative
	AuditFields
}

var hundred = decimal.NewFromInt(100)

// UsagePercentage is spent/allocated*100 rounded to two places. A zero allocation reports 0.
func (bc BudgetCategory) UsagePercentage() decimal.Decimal {
	if bc.AllocatedAmount.IsZero() {
		return decimal.Zero
	}
	return bc.SpentAmount.Div(bc.AllocatedAmount).Mul(hundred).Round(2)
}

// Remaining is allocated minus spent. It goes negative when the allocation is overspent.
func (bc BudgetCategory) Remaining() decimal.Decimal {
	return bc.AllocatedAmount.Sub(bc.SpentAmount)
}

// IsOverspent reports whether more was spent than allocated.
func (bc BudgetCategory) IsOverspent() bool {
	return bc.SpentAmount.GreaterThan(bc.AllocatedAmount)
}

// ApplySpent adds delta to the spent amount, flooring the result at zero.
func (bc *BudgetCategory) ApplySpent(delta decimal.Decimal) {
	bc.SpentAmount = decimal.Max(decimal.Zero, bc.SpentAmount.Add(delta))
}

// PeriodsOverlap is the closed interval test startA <= endB && endA >= startB.
func PeriodsOverlap(startA, endA, startB, endB time.Time) bool {
	return !startA.After(endB) && !endA.Before(startB)
}

// DeriveEndDate computes the inclusive end of a period starting at start.
// customEnd is only consulted for PeriodCustom.
func DeriveEndDate(pt PeriodType, start time.Time, customEnd *time.Time) (time.Time, error) {
	start = TruncateDay(start)
	switch pt {
	case PeriodWeekly:
		return start.AddDate(0, 0, 6), nil
	case PeriodMonthly:
		return AddMonthsClamped(start, 1).AddDate(0, 0, -1), nil
	case PeriodQuarterly:
		return AddMonthsClamped(start, 3).AddDate(0, 0, -1), nil
	case PeriodYearly:
		return AddMonthsClamped(start, 12).AddDate(0, 0, -1), nil
	case PeriodCustom:
		if customEnd == nil {
			return time.Time{}, ErrMissingEndDate
		}
		end := TruncateDay(*customEnd)
		if end.Before(start) {
			return time.Time{}, ErrEndBeforeStart
		}
		return end, nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriodType, pt)
	}
}

// AddMonthsClamped moves t by n months, pinning the day to the end of the target month
// instead of overflowing into the next one (Jan 31 + 1 month is Feb 28 or 29).
func AddMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, time.UTC)
}
