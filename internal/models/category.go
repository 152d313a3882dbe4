package models

// Category is the row layout of the categories table.
type Category struct {
	CategoryID string `db:"category_id"`
	Name       string `db:"name"`
	Type       string `db:"type"`
	AuditFields
}
