package mapping

import (
	"database/sql"

	"github.com/SscSPs/money_tracker/internal/core/domain"
	"github.com/SscSPs/money_tracker/internal/models"
)

func toNullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// ToModelTransaction converts a domain Transaction to its row.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:        d.TransactionID,
		UserID:               d.UserID,
		SourceAccountID:      toNullString(d.SourceAccountID),
		DestinationAccountID: toNullString(d.DestinationAccountID),
		CategoryID:           d.CategoryID,
		Amount:               d.Amount,
		Type:                 string(d.Type),
		Date:                 domain.TruncateDay(d.Date),
		Description:          d.Description,
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a transaction row to the domain type.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:        m.TransactionID,
		UserID:               m.UserID,
		SourceAccountID:      fromNullString(m.SourceAccountID),
		DestinationAccountID: fromNullString(m.DestinationAccountID),
		CategoryID:           m.CategoryID,
		Amount:               m.Amount,
		Type:                 domain.TransactionType(m.Type),
		Date:                 domain.TruncateDay(m.Date),
		Description:          m.Description,
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}
