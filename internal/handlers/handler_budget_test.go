package handlers_test

import (
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

type BudgetHandlerTestSuite struct {
	handlerSuite
	mockBudgetService *MockBudgetService
	mockQueryService  *MockQueryService
}

func (suite *BudgetHandlerTestSuite) SetupTest() {
	suite.setupRouter()
	suite.mockBudgetService = new(MockBudgetService)
	suite.mockQueryService = new(MockQueryService)
	handlers.RegisterBudgetRoutes(suite.v1, suite.mockBudgetService, suite.mockQueryService)
}

func marchBudget() domain.Budget {
	return domain.Budget{
		BudgetID:    "b-1",
		Name:        "March",
		PeriodType:  domain.PeriodMonthly,
		StartDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		TotalAmount: decimal.NewFromInt(1000),
	}
}

func (suite *BudgetHandlerTestSuite) TestCreateBudget_ReadsBackAllocations() {
	b := marchBudget()
	suite.mockBudgetService.On("CreateBudget", mock.Anything,
		mock.MatchedBy(func(req dto.CreateBudgetRequest) bool {
			return req.Name == "March" && req.PeriodType == domain.PeriodMonthly &&
				req.EndDate == nil && len(req.Categories) == 1
		}),
		suite.userID,
	).Return(&b, nil).Once()
	suite.mockQueryService.On("GetBudgetWithCategories", mock.Anything, "b-1", suite.userID).
		Return(&dto.BudgetWithCategories{
			Budget: b,
			Categories: []domain.BudgetCategory{{
				BudgetCategoryID: "bc-1",
				BudgetID:         "b-1",
				CategoryID:       "cat-food",
				AllocatedAmount:  decimal.NewFromInt(400),
				SpentAmount:      decimal.NewFromInt(100),
			}},
		}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/budgets", gin.H{
		"name":        "March",
		"periodType":  "MONTHLY",
		"startDate":   "2026-03-01T00:00:00Z",
		"totalAmount": "1000",
		"categories":  []gin.H{{"categoryID": "cat-food", "allocatedAmount": "400"}},
	})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.BudgetResponse
	suite.decode(w, &resp)
	suite.Equal("b-1", resp.BudgetID)
	suite.Require().Len(resp.Categories, 1)
	suite.True(resp.Categories[0].UsagePercentage.Equal(decimal.NewFromInt(25)))
	suite.True(resp.Categories[0].Remaining.Equal(decimal.NewFromInt(300)))
	suite.mockBudgetService.AssertExpectations(suite.T())
	suite.mockQueryService.AssertExpectations(suite.T())
}

func (suite *BudgetHandlerTestSuite) TestCreateBudget_RejectsNonPositiveAllocation() {
	w := suite.do(http.MethodPost, "/api/v1/budgets", gin.H{
		"name":        "March",
		"periodType":  "MONTHLY",
		"startDate":   "2026-03-01T00:00:00Z",
		"totalAmount": "1000",
		"categories":  []gin.H{{"categoryID": "cat-food", "allocatedAmount": "0"}},
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockBudgetService.AssertNotCalled(suite.T(), "CreateBudget", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BudgetHandlerTestSuite) TestCreateBudget_DuplicateName() {
	suite.mockBudgetService.On("CreateBudget", mock.Anything, mock.Anything, suite.userID).
		Return(nil, apperrors.ErrDuplicateBudgetName).Once()

	w := suite.do(http.MethodPost, "/api/v1/budgets", gin.H{
		"name":        "March",
		"periodType":  "MONTHLY",
		"startDate":   "2026-03-01T00:00:00Z",
		"totalAmount": "1000",
	})

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockQueryService.AssertNotCalled(suite.T(), "GetBudgetWithCategories", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BudgetHandlerTestSuite) TestUpdateBudget_PartialFields() {
	b := marchBudget()
	b.TotalAmount = decimal.NewFromInt(1200)
	suite.mockBudgetService.On("UpdateBudget", mock.Anything, "b-1",
		mock.MatchedBy(func(req dto.UpdateBudgetRequest) bool {
			return req.Name == nil && req.TotalAmount != nil && req.TotalAmount.Equal(decimal.NewFromInt(1200))
		}),
		suite.userID,
	).Return(&b, nil).Once()
	suite.mockQueryService.On("GetBudgetWithCategories", mock.Anything, "b-1", suite.userID).
		Return(&dto.BudgetWithCategories{Budget: b}, nil).Once()

	w := suite.do(http.MethodPut, "/api/v1/budgets/b-1", gin.H{"totalAmount": "1200"})

	suite.Equal(http.StatusOK, w.Code)
	suite.mockBudgetService.AssertExpectations(suite.T())
}

func (suite *BudgetHandlerTestSuite) TestCopyBudget() {
	copied := marchBudget()
	copied.BudgetID = "b-2"
	copied.Name = "April"
	suite.mockBudgetService.On("CopyBudget", mock.Anything, "b-1",
		mock.MatchedBy(func(req dto.CopyBudgetRequest) bool { return req.Name == "April" }),
		suite.userID,
	).Return(&copied, nil).Once()
	suite.mockQueryService.On("GetBudgetWithCategories", mock.Anything, "b-2", suite.userID).
		Return(&dto.BudgetWithCategories{Budget: copied}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/budgets/b-1/copy", gin.H{"name": "April", "startDate": "2026-04-01T00:00:00Z"})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.BudgetResponse
	suite.decode(w, &resp)
	suite.Equal("b-2", resp.BudgetID)
}

func (suite *BudgetHandlerTestSuite) TestAddBudgetCategory_ExceedsTotal() {
	suite.mockBudgetService.On("AddBudgetCategory", mock.Anything, "b-1", mock.Anything, suite.userID).
		Return(nil, apperrors.ErrAllocationExceedsBudget).Once()

	w := suite.do(http.MethodPost, "/api/v1/budgets/b-1/categories", gin.H{"categoryID": "cat-food", "allocatedAmount": "5000"})

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *BudgetHandlerTestSuite) TestAddBudgetCategory_Overlap() {
	suite.mockBudgetService.On("AddBudgetCategory", mock.Anything, "b-1", mock.Anything, suite.userID).
		Return(nil, apperrors.ErrBudgetOverlap).Once()

	w := suite.do(http.MethodPost, "/api/v1/budgets/b-1/categories", gin.H{"categoryID": "cat-food", "allocatedAmount": "50"})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *BudgetHandlerTestSuite) TestRemoveBudgetCategory() {
	suite.mockBudgetService.On("RemoveBudgetCategory", mock.Anything, "b-1", "bc-1", suite.userID).Return(nil).Once()

	w := suite.do(http.MethodDelete, "/api/v1/budgets/b-1/categories/bc-1", nil)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockBudgetService.AssertExpectations(suite.T())
}

func (suite *BudgetHandlerTestSuite) TestGetUsage() {
	suite.mockQueryService.On("GetUsagePercentage", mock.Anything, "bc-1", suite.userID).
		Return(decimal.RequireFromString("62.5"), nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/budgets/b-1/categories/bc-1/usage", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.UsageResponse
	suite.decode(w, &resp)
	suite.Equal("bc-1", resp.BudgetCategoryID)
	suite.True(resp.UsagePercentage.Equal(decimal.RequireFromString("62.5")))
}

func (suite *BudgetHandlerTestSuite) TestListBudgets() {
	suite.mockBudgetService.On("ListBudgets", mock.Anything, suite.userID).
		Return([]domain.Budget{marchBudget()}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/budgets", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.BudgetResponse
	suite.decode(w, &resp)
	suite.Len(resp, 1)
	suite.Empty(resp[0].Categories)
}

func TestBudgetHandler(t *testing.T) {
	suite.Run(t, new(BudgetHandlerTestSuite))
}
