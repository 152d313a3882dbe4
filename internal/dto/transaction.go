package dto

import (
	"time"

	"github.com/SscSPs/money_tracker/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest records a new income, expense or transfer.
type CreateTransactionRequest struct {
	Type                 domain.TransactionType `json:"type" binding:"required,oneof=INCOME EXPENSE TRANSFER"`
	SourceAccountID      *string                `json:"sourceAccountID"`
	DestinationAccountID *string                `json:"destinationAccountID"`
	CategoryID           string                 `json:"categoryID" binding:"required"`
	Amount               decimal.Decimal        `json:"amount" binding:"decimal_gt0"`
	Date                 time.Time              `json:"date" binding:"required"`
	Description          string                 `json:"description" binding:"max=1024"`
	ConfirmOverBudget    bool                   `json:"confirmOverBudget"` // Accept an allocation overage
}

// UpdateTransactionRequest replaces every editable field of a transaction.
type UpdateTransactionRequest CreateTransactionRequest

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID        string                 `json:"transactionID"`
	Type                 domain.TransactionType `json:"type"`
	SourceAccountID      *string                `json:"sourceAccountID,omitempty"`
	DestinationAccountID *string                `json:"destinationAccountID,omitempty"`
	CategoryID           string                 `json:"categoryID"`
	Amount               decimal.Decimal        `json:"amount"`
	Date                 time.Time              `json:"date"`
	Description          string                 `json:"description"`
	CreatedAt            time.Time              `json:"createdAt"`
	LastUpdatedAt        time.Time              `json:"lastUpdatedAt"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:        txn.TransactionID,
		Type:                 txn.Type,
		SourceAccountID:      txn.SourceAccountID,
		DestinationAccountID: txn.DestinationAccountID,
		CategoryID:           txn.CategoryID,
		Amount:               txn.Amount,
		Date:                 txn.Date,
		Description:          txn.Description,
		CreatedAt:            txn.CreatedAt,
		LastUpdatedAt:        txn.LastUpdatedAt,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		responses[i] = ToTransactionResponse(&txn)
	}
	return responses
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit      int        `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken  string     `form:"nextToken"`
	AccountID  string     `form:"accountID"`
	CategoryID string     `form:"categoryID"`
	From       *time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To         *time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"`
}

// ListTransactionsResponse is one page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"` // Absent on the last page
}
