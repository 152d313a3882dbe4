package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/money_tracker/internal/core/ports/services"
	"github.com/SscSPs/money_tracker/internal/dto"
	"github.com/gin-gonic/gin"
)

// budgetHandler exposes the budget lifecycle and the budget read queries.
type budgetHandler struct {
	budgetService portssvc.BudgetSvcFacade
	queryService  portssvc.QuerySvc
}

// RegisterBudgetRoutes registers routes related to budgets and their allocations.
func RegisterBudgetRoutes(rg *gin.RouterGroup, budgetService portssvc.BudgetSvcFacade, queryService portssvc.QuerySvc) {
	h := &budgetHandler{budgetService: budgetService, queryService: queryService}

	budgets := rg.Group("/budgets")
	{
		budgets.POST("", h.createBudget)
		budgets.GET("", h.listBudgets)
		budgets.GET("/:budgetID", h.getBudget)
		budgets.PUT("/:budgetID", h.updateBudget)
		budgets.DELETE("/:budgetID", h.deleteBudget)
		budgets.POST("/:budgetID/copy", h.copyBudget)

		budgets.POST("/:budgetID/categories", h.addBudgetCategory)
		budgets.PUT("/:budgetID/categories/:budgetCategoryID", h.updateBudgetCategory)
		budgets.DELETE("/:budgetID/categories/:budgetCategoryID", h.removeBudgetCategory)
		budgets.GET("/:budgetID/categories/:budgetCategoryID/usage", h.getUsage)
	}
}

// createBudget godoc
// @Summary Create a budget
// @Description The end date is derived from the period type unless the type is CUSTOM. Initial allocations are optional.
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budget body dto.CreateBudgetRequest true "Budget"
// @Success 201 {object} dto.BudgetResponse
// @Failure 409 {object} errorResponse "Duplicate name or overlapping budget"
// @Failure 422 {object} errorResponse "Allocations exceed the total"
// @Security BearerAuth
// @Router /budgets [post]
func (h *budgetHandler) createBudget(c *gin.Context) {
	var req dto.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	budget, err := h.budgetService.CreateBudget(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to create budget")
		return
	}
	h.respondWithBudget(c, http.StatusCreated, budget.BudgetID, userID)
}

// respondWithBudget reads the budget back with its allocations.
func (h *budgetHandler) respondWithBudget(c *gin.Context, status int, budgetID, userID string) {
	view, err := h.queryService.GetBudgetWithCategories(c.Request.Context(), budgetID, userID)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve budget")
		return
	}
	c.JSON(status, dto.ToBudgetResponse(&view.Budget, view.Categories))
}

// listBudgets godoc
// @Summary List budgets
// @Tags budgets
// @Produce  json
// @Success 200 {array} dto.BudgetResponse
// @Security BearerAuth
// @Router /budgets [get]
func (h *budgetHandler) listBudgets(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	budgets, err := h.budgetService.ListBudgets(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err, "Failed to list budgets")
		return
	}
	resp := make([]dto.BudgetResponse, len(budgets))
	for i := range budgets {
		resp[i] = dto.ToBudgetResponse(&budgets[i], nil)
	}
	c.JSON(http.StatusOK, resp)
}

// getBudget godoc
// @Summary Get a budget with its allocations and their usage
// @Tags budgets
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Success 200 {object} dto.BudgetResponse
// @Security BearerAuth
// @Router /budgets/{budgetID} [get]
func (h *budgetHandler) getBudget(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	h.respondWithBudget(c, http.StatusOK, c.Param("budgetID"), userID)
}

// updateBudget godoc
// @Summary Update a budget
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   budget body dto.UpdateBudgetRequest true "Fields to change"
// @Success 200 {object} dto.BudgetResponse
// @Security BearerAuth
// @Router /budgets/{budgetID} [put]
func (h *budgetHandler) updateBudget(c *gin.Context) {
	var req dto.UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	budget, err := h.budgetService.UpdateBudget(c.Request.Context(), c.Param("budgetID"), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to update budget")
		return
	}
	h.respondWithBudget(c, http.StatusOK, budget.BudgetID, userID)
}

// deleteBudget godoc
// @Summary Delete a budget and its allocations
// @Tags budgets
// @Param   budgetID path string true "Budget ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /budgets/{budgetID} [delete]
func (h *budgetHandler) deleteBudget(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.budgetService.DeleteBudget(c.Request.Context(), c.Param("budgetID"), userID); err != nil {
		respondWithError(c, err, "Failed to delete budget")
		return
	}
	c.Status(http.StatusNoContent)
}

// copyBudget godoc
// @Summary Copy a budget into a new period
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Source budget ID"
// @Param   copy body dto.CopyBudgetRequest true "New name and start date"
// @Success 201 {object} dto.BudgetResponse
// @Security BearerAuth
// @Router /budgets/{budgetID}/copy [post]
func (h *budgetHandler) copyBudget(c *gin.Context) {
	var req dto.CopyBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	budget, err := h.budgetService.CopyBudget(c.Request.Context(), c.Param("budgetID"), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to copy budget")
		return
	}
	h.respondWithBudget(c, http.StatusCreated, budget.BudgetID, userID)
}

// addBudgetCategory godoc
// @Summary Allocate part of a budget to an expense category
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   allocation body dto.AllocationRequest true "Allocation"
// @Success 201 {object} dto.BudgetCategoryResponse
// @Security BearerAuth
// @Router /budgets/{budgetID}/categories [post]
func (h *budgetHandler) addBudgetCategory(c *gin.Context) {
	var req dto.AllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	bc, err := h.budgetService.AddBudgetCategory(c.Request.Context(), c.Param("budgetID"), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to add budget category")
		return
	}
	c.JSON(http.StatusCreated, dto.ToBudgetCategoryResponse(bc))
}

// updateBudgetCategory godoc
// @Summary Change the allocated amount of an allocation
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   budgetCategoryID path string true "Allocation ID"
// @Param   allocation body dto.UpdateAllocationRequest true "New amount"
// @Success 200 {object} dto.BudgetCategoryResponse
// @Security BearerAuth
// @Router /budgets/{budgetID}/categories/{budgetCategoryID} [put]
func (h *budgetHandler) updateBudgetCategory(c *gin.Context) {
	var req dto.UpdateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	bc, err := h.budgetService.UpdateBudgetCategory(c.Request.Context(), c.Param("budgetID"), c.Param("budgetCategoryID"), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to update budget category")
		return
	}
	c.JSON(http.StatusOK, dto.ToBudgetCategoryResponse(bc))
}

// removeBudgetCategory godoc
// @Summary Remove an allocation
// @Tags budgets
// @Param   budgetID path string true "Budget ID"
// @Param   budgetCategoryID path string true "Allocation ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /budgets/{budgetID}/categories/{budgetCategoryID} [delete]
func (h *budgetHandler) removeBudgetCategory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.budgetService.RemoveBudgetCategory(c.Request.Context(), c.Param("budgetID"), c.Param("budgetCategoryID"), userID); err != nil {
		respondWithError(c, err, "Failed to remove budget category")
		return
	}
	c.Status(http.StatusNoContent)
}

// getUsage godoc
// @Summary Usage of an allocation in percent
// @Tags budgets
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   budgetCategoryID path string true "Allocation ID"
// @Success 200 {object} dto.UsageResponse
// @Security BearerAuth
// @Router /budgets/{budgetID}/categories/{budgetCategoryID}/usage [get]
func (h *budgetHandler) getUsage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	bcID := c.Param("budgetCategoryID")
	pct, err := h.queryService.GetUsagePercentage(c.Request.Context(), bcID, userID)
	if err != nil {
		respondWithError(c, err, "Failed to get usage")
		return
	}
	c.JSON(http.StatusOK, dto.UsageResponse{BudgetCategoryID: bcID, UsagePercentage: pct})
}
