package mapping

import (
	"github.com/SscSPs/money_tracker/internal/core/domain"
	"github.com/SscSPs/money_tracker/internal/models"
)

// ToModelBudget converts a domain Budget to its row.
func ToModelBudget(d domain.Budget) models.Budget {
	return models.Budget{
		BudgetID:    d.BudgetID,
		UserID:      d.UserID,
		Name:        d.Name,
		PeriodType:  string(d.PeriodType),
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		TotalAmount: d.TotalAmount,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBudget converts a budget row to the domain type. Dates come back as UTC calendar days.
func ToDomainBudget(m models.Budget) domain.Budget {
	return domain.Budget{
		BudgetID:    m.BudgetID,
		UserID:      m.UserID,
		Name:        m.Name,
		PeriodType:  domain.PeriodType(m.PeriodType),
		StartDate:   domain.TruncateDay(m.StartDate),
		EndDate:     domain.TruncateDay(m.EndDate),
		TotalAmount: m.TotalAmount,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelBudgetCategory converts an allocation to its row.
func ToModelBudgetCategory(d domain.BudgetCategory) models.BudgetCategory {
	return models.BudgetCategory{
		BudgetCategoryID: d.BudgetCategoryID,
		BudgetID:         d.BudgetID,
		CategoryID:       d.CategoryID,
		AllocatedAmount:  d.AllocatedAmount,
		SpentAmount:      d.SpentAmount,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBudgetCategory converts an allocation row to the domain type.
func ToDomainBudgetCategory(m models.BudgetCategory) domain.BudgetCategory {
	return domain.BudgetCategory{
		BudgetCategoryID: m.BudgetCategoryID,
		BudgetID:         m.BudgetID,
		CategoryID:       m.CategoryID,
		AllocatedAmount:  m.AllocatedAmount,
		SpentAmount:      m.SpentAmount,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}
