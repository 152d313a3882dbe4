package handlers_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/SscSPs/money_tracker/internal/core/domain"
	"github.com/SscSPs/money_tracker/internal/dto"
	"github.com/SscSPs/money_tracker/internal/handlers"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type TransactionHandlerTestSuite struct {
	handlerSuite
	mockTransactionService *MockTransactionService
}

func (suite *TransactionHandlerTestSuite) SetupTest() {
	suite.setupRouter()
	suite.mockTransactionService = new(MockTransactionService)
	handlers.RegisterTransactionRoutes(suite.v1, suite.mockTransactionService)
}

func expenseBody() gin.H {
	return gin.H{
		"type":            "EXPENSE",
		"sourceAccountID": "acc-1",
		"categoryID":      "cat-food",
		"amount":          "42.10",
		"date":            "2026-03-14T00:00:00Z",
		"description":     "groceries",
	}
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_Success() {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	txn := &domain.Transaction{
		TransactionID:   "txn-1",
		UserID:          suite.userID,
		SourceAccountID: strPtr("acc-1"),
		CategoryID:      "cat-food",
		Amount:          decimal.RequireFromString("42.10"),
		Type:            domain.Expense,
		Date:            day,
		Description:     "groceries",
	}
	suite.mockTransactionService.On("CreateTransaction", mock.Anything,
		mock.MatchedBy(func(req dto.CreateTransactionRequest) bool {
			return req.Type == domain.Expense &&
				req.SourceAccountID != nil && *req.SourceAccountID == "acc-1" &&
				req.DestinationAccountID == nil &&
				req.Amount.Equal(decimal.RequireFromString("42.1")) &&
				req.Date.Equal(day) && !req.ConfirmOverBudget
		}),
		suite.userID,
	).Return(txn, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions", expenseBody())

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.TransactionResponse
	suite.decode(w, &resp)
	suite.Equal("txn-1", resp.TransactionID)
	suite.Equal(domain.Expense, resp.Type)
	suite.Nil(resp.DestinationAccountID)
	suite.mockTransactionService.AssertExpectations(suite.T())
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_RejectsZeroAmount() {
	body := expenseBody()
	body["amount"] = "0"

	w := suite.do(http.MethodPost, "/api/v1/transactions", body)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockTransactionService.AssertNotCalled(suite.T(), "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_RejectsUnknownType() {
	body := expenseBody()
	body["type"] = "REFUND"

	w := suite.do(http.MethodPost, "/api/v1/transactions", body)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_InsufficientFunds() {
	suite.mockTransactionService.On("CreateTransaction", mock.Anything, mock.Anything, suite.userID).
		Return(nil, apperrors.ErrInsufficientFunds).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions", expenseBody())

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	var resp map[string]any
	suite.decode(w, &resp)
	suite.Contains(resp["error"], "insufficient funds")
	suite.NotContains(resp, "retryable")
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_BudgetExceededCarriesDetails() {
	exceeded := &apperrors.BudgetExceededError{
		BudgetCategoryID: "bc-1",
		Allocated:        decimal.NewFromInt(100),
		Spent:            decimal.NewFromInt(120),
	}
	suite.mockTransactionService.On("CreateTransaction", mock.Anything, mock.Anything, suite.userID).
		Return(nil, exceeded).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions", expenseBody())

	suite.Equal(http.StatusConflict, w.Code)
	var resp struct {
		Error   string         `json:"error"`
		Details map[string]any `json:"details"`
	}
	suite.decode(w, &resp)
	suite.Equal("bc-1", resp.Details["budgetCategoryID"])
	suite.Equal("20", resp.Details["overPercent"])
	suite.Contains(resp.Details["hint"], "confirmOverBudget")
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_PersistenceFailureIsRetryable() {
	suite.mockTransactionService.On("CreateTransaction", mock.Anything, mock.Anything, suite.userID).
		Return(nil, apperrors.NewPersistenceError("commit failed", errors.New("connection reset"))).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions", expenseBody())

	suite.Equal(http.StatusServiceUnavailable, w.Code)
	var resp map[string]any
	suite.decode(w, &resp)
	suite.Equal(true, resp["retryable"])
	suite.Equal("Failed to create transaction", resp["error"])
}

func (suite *TransactionHandlerTestSuite) TestListTransactions_ReturnsNextToken() {
	suite.mockTransactionService.On("ListTransactions", mock.Anything, suite.userID,
		mock.MatchedBy(func(p dto.ListTransactionsParams) bool {
			return p.Limit == 2 && p.CategoryID == "cat-food" && p.From != nil &&
				p.From.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
		}),
	).Return([]domain.Transaction{{TransactionID: "t2"}, {TransactionID: "t1"}}, "cursor-2", nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/transactions?limit=2&categoryID=cat-food&from=2026-03-01", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListTransactionsResponse
	suite.decode(w, &resp)
	suite.Len(resp.Transactions, 2)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal("cursor-2", *resp.NextToken)
	suite.mockTransactionService.AssertExpectations(suite.T())
}

func (suite *TransactionHandlerTestSuite) TestListTransactions_LastPageOmitsToken() {
	suite.mockTransactionService.On("ListTransactions", mock.Anything, suite.userID, mock.Anything).
		Return([]domain.Transaction{}, "", nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/transactions", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.NotContains(w.Body.String(), "nextToken")
}

func (suite *TransactionHandlerTestSuite) TestUpdateTransaction_ForwardsConfirmation() {
	body := expenseBody()
	body["confirmOverBudget"] = true
	suite.mockTransactionService.On("UpdateTransaction", mock.Anything, "txn-1",
		mock.MatchedBy(func(req dto.UpdateTransactionRequest) bool { return req.ConfirmOverBudget }),
		suite.userID,
	).Return(&domain.Transaction{TransactionID: "txn-1", Type: domain.Expense}, nil).Once()

	w := suite.do(http.MethodPut, "/api/v1/transactions/txn-1", body)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockTransactionService.AssertExpectations(suite.T())
}

func (suite *TransactionHandlerTestSuite) TestDeleteTransaction() {
	suite.mockTransactionService.On("DeleteTransaction", mock.Anything, "txn-1", suite.userID).Return(nil).Once()
	suite.mockTransactionService.On("DeleteTransaction", mock.Anything, "gone", suite.userID).
		Return(apperrors.ErrTransactionNotFound).Once()

	suite.Equal(http.StatusNoContent, suite.do(http.MethodDelete, "/api/v1/transactions/txn-1", nil).Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodDelete, "/api/v1/transactions/gone", nil).Code)
}

func TestTransactionHandler(t *testing.T) {
	suite.Run(t, new(TransactionHandlerTestSuite))
}
