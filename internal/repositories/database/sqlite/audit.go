package sqlite

import (
	"fmt"

	"github.com/SscSPs/money_tracker/internal/models"
)

const auditColumns = `created_at, created_by, last_updated_at, last_updated_by`

// auditCols receives the audit columns as stored text.
type auditCols struct {
	createdAt, createdBy         string
	lastUpdatedAt, lastUpdatedBy string
}

func (a *auditCols) dest() []any {
	return []any{&a.createdAt, &a.createdBy, &a.lastUpdatedAt, &a.lastUpdatedBy}
}

func (a auditCols) model() (models.AuditFields, error) {
	created, err := parseTS(a.createdAt)
	if err != nil {
		return models.AuditFields{}, fmt.Errorf("parse created_at %q: %w", a.createdAt, err)
	}
	updated, err := parseTS(a.lastUpdatedAt)
	if err != nil {
		return models.AuditFields{}, fmt.Errorf("parse last_updated_at %q: %w", a.lastUpdatedAt, err)
	}
	return models.AuditFields{
		CreatedAt:     created,
		CreatedBy:     a.createdBy,
		LastUpdatedAt: updated,
		LastUpdatedBy: a.lastUpdatedBy,
	}, nil
}

func auditArgs(m models.AuditFields) []any {
	return []any{ts(m.CreatedAt), m.CreatedBy, ts(m.LastUpdatedAt), m.LastUpdatedBy}
}
