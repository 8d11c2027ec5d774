package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/agrocampo/internal/domain/models"
)

// errorStatus maps domain validation errors to HTTP responses. Every
// validation error means the caller's view is stale or wrong: the answer is
// to refresh and resubmit, never to retry as-is.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, models.ErrOverAllocation):
		return http.StatusConflict, "over_allocation"
	case errors.Is(err, models.ErrHarvestClosed):
		return http.StatusConflict, "harvest_closed"
	case errors.Is(err, models.ErrAlreadyFinalized):
		return http.StatusConflict, "already_finalized"
	case errors.Is(err, models.ErrReservationNotPending):
		return http.StatusConflict, "reservation_not_pending"
	case errors.Is(err, models.ErrNotEligible):
		return http.StatusConflict, "not_eligible"
	case errors.Is(err, models.ErrInvalidReturn):
		return http.StatusBadRequest, "invalid_return"
	case errors.Is(err, models.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid_quantity"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func respondError(c *gin.Context, err error) {
	status, code := errorStatus(err)
	body := gin.H{"error": code}
	if status != http.StatusInternalServerError {
		body["detail"] = err.Error()
	}
	c.JSON(status, body)
}
