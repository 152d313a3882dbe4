package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/SscSPs/money_tracker/internal/middleware"
	"github.com/gin-gonic/gin"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error     string         `json:"error"`
	Retryable bool           `json:"retryable,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// statusFor maps an engine error to an HTTP status code.
func statusFor(err error) int {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrBudgetOverlap),
		errors.Is(err, apperrors.ErrBudgetExceeded):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrInsufficientFunds),
		errors.Is(err, apperrors.ErrAccountInactive),
		errors.Is(err, apperrors.ErrAllocationExceedsBudget):
		return http.StatusUnprocessableEntity
	case errors.As(err, &appErr):
		return appErr.Code
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError writes the status and body for err. Server side failures are logged at
// error level and hide their cause behind fallback.
func respondWithError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := statusFor(err)

	body := errorResponse{Error: err.Error(), Retryable: apperrors.IsRetryable(err)}
	var exceeded *apperrors.BudgetExceededError
	if errors.As(err, &exceeded) {
		body.Details = map[string]any{
			"budgetCategoryID": exceeded.BudgetCategoryID,
			"allocated":        exceeded.Allocated,
			"spent":            exceeded.Spent,
			"overPercent":      exceeded.OverPercent(),
			"hint":             "resend with confirmOverBudget set to true",
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
		body.Error = fallback
	} else {
		logger.Warn(fallback, slog.String("error", err.Error()), slog.Int("status", status))
	}
	c.JSON(status, body)
}

// bindError answers a request whose body or query failed to bind.
func bindError(c *gin.Context, err error, what string) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind "+what, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid " + what + ": " + err.Error()})
}

// requireUser reads the authenticated user or answers 401.
func requireUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
	}
	return userID, ok
}
