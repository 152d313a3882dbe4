package ofx_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/SscSPs/money_tracker/internal/core/domain"
	"github.com/SscSPs/money_tracker/internal/dto"
	"github.com/SscSPs/money_tracker/internal/ofx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockTransactionWriter struct {
	mock.Mock
}

func (m *MockTransactionWriter) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionWriter) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionWriter) DeleteTransaction(ctx context.Context, transactionID string, userID string) error {
	return m.Called(ctx, transactionID, userID).Error(0)
}

type ImporterTestSuite struct {
	suite.Suite
	writer   *MockTransactionWriter
	importer *ofx.Importer
	opts     ofx.Options
}

func (s *ImporterTestSuite) SetupTest() {
	s.writer = new(MockTransactionWriter)
	s.importer = ofx.NewImporter(s.writer)
	s.opts = ofx.Options{
		UserID:            "user-1",
		AccountID:         "acc-1",
		IncomeCategoryID:  "cat-salary",
		ExpenseCategoryID: "cat-misc",
	}
}

func entry(fitid, amount string, day int) ofx.Entry {
	return ofx.Entry{
		FITID:         fitid,
		StatementAcct: "998877",
		Date:          time.Date(2026, 3, day, 12, 0, 0, 0, time.UTC),
		Amount:        decimal.RequireFromString(amount),
		Payee:         "payee " + fitid,
	}
}

func (s *ImporterTestSuite) TestRequestMapping() {
	income, ok := ofx.Request(entry("a", "10.5", 2), s.opts)
	s.Require().True(ok)
	s.Equal(domain.Income, income.Type)
	s.Nil(income.SourceAccountID)
	s.Equal("acc-1", *income.DestinationAccountID)
	s.Equal("cat-salary", income.CategoryID)
	s.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), income.Date)

	expense, ok := ofx.Request(entry("b", "-7.25", 3), s.opts)
	s.Require().True(ok)
	s.Equal(domain.Expense, expense.Type)
	s.Equal("acc-1", *expense.SourceAccountID)
	s.Nil(expense.DestinationAccountID)
	s.True(expense.Amount.Equal(decimal.RequireFromString("7.25")))
	s.Equal("cat-misc", expense.CategoryID)

	_, ok = ofx.Request(entry("c", "0", 4), s.opts)
	s.False(ok)
}

func (s *ImporterTestSuite) TestImport_RecordsInOrderAndContinuesPastFailures() {
	ctx := context.Background()
	s.writer.On("CreateTransaction", ctx, mock.MatchedBy(func(r dto.CreateTransactionRequest) bool { return r.Type == domain.Income }), "user-1").
		Return(&domain.Transaction{TransactionID: "t-1"}, nil).Once()
	s.writer.On("CreateTransaction", ctx, mock.MatchedBy(func(r dto.CreateTransactionRequest) bool { return r.Type == domain.Expense }), "user-1").
		Return(nil, apperrors.ErrInsufficientFunds).Once()

	res, err := s.importer.Import(ctx, []ofx.Entry{
		entry("a", "100", 1),
		entry("a", "100", 1), // duplicate FITID
		entry("b", "-500", 2),
		entry("c", "0", 3),
	}, s.opts)

	s.Require().NoError(err)
	s.Equal([]string{"t-1"}, res.Created)
	s.Equal(1, res.Duplicates)
	s.Equal(1, res.Skipped)
	s.Require().Len(res.Failed, 1)
	s.ErrorIs(res.Failed[0].Err, apperrors.ErrInsufficientFunds)
	s.Len(res.Planned, 2)
	s.writer.AssertExpectations(s.T())
}

func (s *ImporterTestSuite) TestImport_DryRunWritesNothing() {
	s.opts.DryRun = true

	res, err := s.importer.Import(context.Background(), []ofx.Entry{entry("a", "1", 1), entry("b", "-2", 2)}, s.opts)

	s.Require().NoError(err)
	s.Len(res.Planned, 2)
	s.Empty(res.Created)
	s.writer.AssertNotCalled(s.T(), "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ImporterTestSuite) TestImport_RequiresTarget() {
	s.opts.AccountID = ""
	_, err := s.importer.Import(context.Background(), nil, s.opts)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func TestImporter(t *testing.T) {
	suite.Run(t, new(ImporterTestSuite))
}

func TestDescriptionFallsBackToMemo(t *testing.T) {
	e := ofx.Entry{Memo: "atm withdrawal"}
	require.Equal(t, "atm withdrawal", e.Description())
	assert.Equal(t, "same", ofx.Entry{Payee: "same", Memo: "SAME"}.Description())
}
