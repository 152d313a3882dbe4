package services_test

import (
	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/SscSPs/money_tracker/internal/core/domain"
	"github.com/SscSPs/money_tracker/internal/dto"
)

func (suite *EngineTestSuite) TestCreateBudget_DerivesEndDate() {
	b := suite.monthlyBudget("Feb", day(2024, 1, 31), "100.00")
	suite.Equal(day(2024, 2, 28), b.EndDate)

	_, err := suite.svc.Budget.CreateBudget(suite.ctx, dto.CreateBudgetRequest{
		Name: "Trip", PeriodType: domain.PeriodCustom, StartDate: day(2025, 7, 1), TotalAmount: dec("100"),
	}, testUser)
	suite.ErrorIs(err, apperrors.ErrValidation, "custom needs an end date")
}

func (suite *EngineTestSuite) TestCreateBudget_DuplicateName() {
	suite.monthlyBudget("July", day(2025, 7, 1), "100.00")

	_, err := suite.svc.Budget.CreateBudget(suite.ctx, dto.CreateBudgetRequest{
		Name: "July", PeriodType: domain.PeriodWeekly, StartDate: day(2026, 7, 1), TotalAmount: dec("1"),
	}, testUser)
	suite.ErrorIs(err, apperrors.ErrDuplicateBudgetName)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *EngineTestSuite) TestCreateBudget_RejectsNonPositiveTotal() {
	_, err := suite.svc.Budget.CreateBudget(suite.ctx, dto.CreateBudgetRequest{
		Name: "Zero", PeriodType: domain.PeriodMonthly, StartDate: day(2025, 7, 1), TotalAmount: dec("0"),
	}, testUser)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *EngineTestSuite) TestAddBudgetCategory_Rules() {
	b := suite.monthlyBudget("July", day(2025, 7, 1), "500.00", suite.alloc(suite.food, "100.00"))

	_, err := suite.svc.Budget.AddBudgetCategory(suite.ctx, b.BudgetID, suite.alloc(suite.salary, "10"), testUser)
	suite.ErrorIs(err, apperrors.ErrValidation, "income categories cannot be budgeted")

	_, err = suite.svc.Budget.AddBudgetCategory(suite.ctx, b.BudgetID, suite.alloc(suite.food, "10"), testUser)
	suite.ErrorIs(err, apperrors.ErrDuplicate)

	_, err = suite.svc.Budget.AddBudgetCategory(suite.ctx, b.BudgetID, suite.alloc("missing", "10"), testUser)
	suite.ErrorIs(err, apperrors.ErrCategoryNotFound)

	_, err = suite.svc.Budget.AddBudgetCategory(suite.ctx, b.BudgetID, suite.alloc(suite.rent, "10"), otherUser)
	suite.ErrorIs(err, apperrors.ErrBudgetNotFound)
}

func (suite *EngineTestSuite) TestAddBudgetCategory_SeedsSpentFromExistingExpenses() {
	acc := suite.account("Wallet", "100.00")
	suite.expense(acc, suite.food, "12.50", day(2025, 7, 3))
	suite.expense(acc, suite.food, "7.50", day(2025, 7, 20))

	b := suite.monthlyBudget("July", day(2025, 7, 1), "500.00")
	bc, err := suite.svc.Budget.AddBudgetCategory(suite.ctx, b.BudgetID, suite.alloc(suite.food, "100"), testUser)
	suite.Require().NoError(err)
	suite.True(dec("20.00").Equal(bc.SpentAmount))
}

func (suite *EngineTestSuite) TestUpdateBudget_TotalMustCoverAllocations() {
	b := suite.monthlyBudget("July", day(2025, 7, 1), "500.00", suite.alloc(suite.food, "300.00"))

	_, err := suite.svc.Budget.UpdateBudget(suite.ctx, b.BudgetID, dto.UpdateBudgetRequest{TotalAmount: ptr(dec("299.99"))}, testUser)
	suite.ErrorIs(err, apperrors.ErrAllocationExceedsBudget)

	updated, err := suite.svc.Budget.UpdateBudget(suite.ctx, b.BudgetID, dto.UpdateBudgetRequest{TotalAmount: ptr(dec("300")), Name: ptr("July food")}, testUser)
	suite.Require().NoError(err)
	suite.Equal("July food", updated.Name)
	suite.True(dec("300").Equal(updated.TotalAmount))
}

func (suite *EngineTestSuite) TestUpdateBudget_PeriodChange() {
	acc := suite.account("Wallet", "100.00")
	b := suite.monthlyBudget("July", day(2025, 7, 1), "500.00", suite.alloc(suite.food, "300.00"))
	suite.monthlyBudget("August", day(2025, 8, 1), "500.00", suite.alloc(suite.food, "300.00"))

	moved, err := suite.svc.Budget.UpdateBudget(suite.ctx, b.BudgetID, dto.UpdateBudgetRequest{StartDate: ptr(day(2025, 6, 1))}, testUser)
	suite.Require().NoError(err)
	suite.Equal(day(2025, 6, 30), moved.EndDate)

	_, err = suite.svc.Budget.UpdateBudget(suite.ctx, b.BudgetID, dto.UpdateBudgetRequest{PeriodType: ptr(domain.PeriodQuarterly)}, testUser)
	suite.ErrorIs(err, apperrors.ErrBudgetOverlap, "a quarter from June 1 runs into the August budget")
	suite.NotErrorIs(err, apperrors.ErrValidation)

	suite.expense(acc, suite.food, "5.00", day(2025, 6, 10))
	_, err = suite.svc.Budget.UpdateBudget(suite.ctx, b.BudgetID, dto.UpdateBudgetRequest{StartDate: ptr(day(2025, 5, 1))}, testUser)
	suite.ErrorIs(err, apperrors.ErrValidation, "spending was already tracked")
}

func (suite *EngineTestSuite) TestDeleteBudget_Cascades() {
	b := suite.monthlyBudget("July", day(2025, 7, 1), "500.00", suite.alloc(suite.food, "100"), suite.alloc(suite.rent, "100"))

	suite.Require().NoError(suite.svc.Budget.DeleteBudget(suite.ctx, b.BudgetID, testUser))
	suite.Equal(0, suite.store.budgetCount())
	suite.Empty(suite.store.allocationsOf(b.BudgetID))

	suite.ErrorIs(suite.svc.Budget.DeleteBudget(suite.ctx, b.BudgetID, testUser), apperrors.ErrBudgetNotFound)
}

func (suite *EngineTestSuite) TestCopyBudget() {
	acc := suite.account("Wallet", "500.00")
	src := suite.monthlyBudget("July", day(2025, 7, 1), "500.00", suite.alloc(suite.food, "200"), suite.alloc(suite.rent, "250"))
	suite.expense(acc, suite.food, "50.00", day(2025, 7, 3))

	cp, err := suite.svc.Budget.CopyBudget(suite.ctx, src.BudgetID, dto.CopyBudgetRequest{Name: "August", StartDate: day(2025, 8, 1)}, testUser)
	suite.Require().NoError(err)
	suite.Equal(day(2025, 8, 31), cp.EndDate)
	suite.Equal(domain.PeriodMonthly, cp.PeriodType)
	suite.True(dec("500.00").Equal(cp.TotalAmount))

	allocs := suite.store.allocationsOf(cp.BudgetID)
	suite.Require().Len(allocs, 2)
	for _, bc := range allocs {
		suite.True(bc.SpentAmount.IsZero(), "spent resets in the new period")
	}
}

func (suite *EngineTestSuite) TestCopyBudget_LeavesSourceUsageAlone() {
	acc := suite.account("Wallet", "500.00")
	src := suite.monthlyBudget("July", day(2025, 7, 1), "500.00", suite.alloc(suite.food, "200"))
	suite.expense(acc, suite.food, "50.00", day(2025, 7, 3))

	cp, err := suite.svc.Budget.CopyBudget(suite.ctx, src.BudgetID, dto.CopyBudgetRequest{Name: "August", StartDate: day(2025, 8, 1)}, testUser)
	suite.Require().NoError(err)

	suite.assertSpent(suite.onlyAllocation(src.BudgetID).BudgetCategoryID, "50.00")
	suite.assertSpent(suite.onlyAllocation(cp.BudgetID).BudgetCategoryID, "0")
}

func (suite *EngineTestSuite) TestCopyBudget_SeedsFromExpensesAlreadyInPeriod() {
	acc := suite.account("Wallet", "500.00")
	src := suite.monthlyBudget("July", day(2025, 7, 1), "500.00", suite.alloc(suite.food, "200"))
	suite.expense(acc, suite.food, "20.00", day(2025, 8, 4))

	cp, err := suite.svc.Budget.CopyBudget(suite.ctx, src.BudgetID, dto.CopyBudgetRequest{Name: "August", StartDate: day(2025, 8, 1)}, testUser)
	suite.Require().NoError(err)

	suite.assertSpent(suite.onlyAllocation(cp.BudgetID).BudgetCategoryID, "20.00")
}

func (suite *EngineTestSuite) TestCopyBudget_IsAllOrNothing() {
	src := suite.monthlyBudget("July", day(2025, 7, 1), "500.00", suite.alloc(suite.food, "200"), suite.alloc(suite.rent, "250"))
	suite.monthlyBudget("August rent", day(2025, 8, 1), "250.00", suite.alloc(suite.rent, "250"))

	_, err := suite.svc.Budget.CopyBudget(suite.ctx, src.BudgetID, dto.CopyBudgetRequest{Name: "August", StartDate: day(2025, 8, 1)}, testUser)
	suite.ErrorIs(err, apperrors.ErrBudgetOverlap)
	suite.Equal(2, suite.store.budgetCount())
}

func (suite *EngineTestSuite) TestCopyBudget_CustomKeepsLength() {
	end := day(2025, 7, 10)
	src, err := suite.svc.Budget.CreateBudget(suite.ctx, dto.CreateBudgetRequest{
		Name: "Trip", PeriodType: domain.PeriodCustom, StartDate: day(2025, 7, 1), EndDate: &end, TotalAmount: dec("100"),
	}, testUser)
	suite.Require().NoError(err)

	cp, err := suite.svc.Budget.CopyBudget(suite.ctx, src.BudgetID, dto.CopyBudgetRequest{Name: "Trip 2", StartDate: day(2025, 12, 28)}, testUser)
	suite.Require().NoError(err)
	suite.Equal(day(2026, 1, 6), cp.EndDate)
}

func (suite *EngineTestSuite) TestRemoveBudgetCategory() {
	b := suite.monthlyBudget("July", day(2025, 7, 1), "500.00", suite.alloc(suite.food, "100"))
	bc := suite.onlyAllocation(b.BudgetID)
	other := suite.monthlyBudget("August", day(2025, 8, 1), "500.00")

	err := suite.svc.Budget.RemoveBudgetCategory(suite.ctx, other.BudgetID, bc.BudgetCategoryID, testUser)
	suite.ErrorIs(err, apperrors.ErrBudgetCategoryNotFound, "allocation must belong to the budget in the path")

	suite.Require().NoError(suite.svc.Budget.RemoveBudgetCategory(suite.ctx, b.BudgetID, bc.BudgetCategoryID, testUser))
	suite.Empty(suite.store.allocationsOf(b.BudgetID))
}

func (suite *EngineTestSuite) TestGetBudgetWithCategories() {
	b := suite.monthlyBudget("July", day(2025, 7, 1), "500.00", suite.alloc(suite.food, "100"), suite.alloc(suite.rent, "100"))

	res, err := suite.svc.Query.GetBudgetWithCategories(suite.ctx, b.BudgetID, testUser)
	suite.Require().NoError(err)
	suite.Equal("July", res.Budget.Name)
	suite.Len(res.Categories, 2)

	_, err = suite.svc.Query.GetBudgetWithCategories(suite.ctx, b.BudgetID, otherUser)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *EngineTestSuite) TestCategoryTypeFrozenOnceReferenced() {
	fresh := suite.category("Misc", domain.CategoryExpense)
	updated, err := suite.svc.Category.UpdateCategory(suite.ctx, fresh, dto.UpdateCategoryRequest{Type: ptr(domain.CategoryIncome)}, testUser)
	suite.Require().NoError(err)
	suite.Equal(domain.CategoryIncome, updated.Type)

	suite.monthlyBudget("July", day(2025, 7, 1), "500.00", suite.alloc(suite.food, "100"))
	_, err = suite.svc.Category.UpdateCategory(suite.ctx, suite.food, dto.UpdateCategoryRequest{Type: ptr(domain.CategoryIncome)}, testUser)
	suite.ErrorIs(err, apperrors.ErrValidation)

	renamed, err := suite.svc.Category.UpdateCategory(suite.ctx, suite.food, dto.UpdateCategoryRequest{Name: ptr("Groceries")}, testUser)
	suite.Require().NoError(err)
	suite.Equal("Groceries", renamed.Name)
}
