package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrocampo/internal/domain/models"
	"github.com/mamadbah2/agrocampo/internal/service/finance"
)

const asOfLayout = "2006-01-02"

// FinanceHandler exposes crop financial snapshots, sales and completion over
// HTTP.
type FinanceHandler struct {
	svc    *finance.Service
	logger *zap.Logger
}

// NewFinanceHandler constructs the HTTP handler adapter.
func NewFinanceHandler(svc *finance.Service, logger *zap.Logger) *FinanceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinanceHandler{svc: svc, logger: logger}
}

// Snapshot computes the crop's financial view. The as-of date defaults to
// today; domain code never reads the clock itself, so the default is fixed
// here at the HTTP edge.
func (h *FinanceHandler) Snapshot(c *gin.Context) {
	asOf := time.Now().UTC()
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := time.Parse(asOfLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be formatted as " + asOfLayout})
			return
		}
		// Include the whole as-of day.
		asOf = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	snapshot, err := h.svc.Snapshot(c.Request.Context(), c.Param("id"), asOf)
	if err != nil {
		h.logger.Error("snapshot failed", zap.String("crop_id", c.Param("id")), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

type saleAllocationRequest struct {
	HarvestID string  `json:"harvestId" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required"`
}

type recordSaleRequest struct {
	CropID      string                  `json:"cropId" binding:"required"`
	Date        time.Time               `json:"date"`
	Quantity    float64                 `json:"quantity" binding:"required"`
	UnitPrice   float64                 `json:"unitPrice"`
	Allocations []saleAllocationRequest `json:"allocations" binding:"required"`
}

// RecordSale registers a sale drawn from explicitly selected harvests.
func (h *FinanceHandler) RecordSale(c *gin.Context) {
	var req recordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sale payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	input := finance.SaleInput{
		CropID:      req.CropID,
		Date:        req.Date,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		Allocations: make([]models.SaleAllocation, 0, len(req.Allocations)),
	}
	if input.Date.IsZero() {
		input.Date = time.Now().UTC()
	}
	for _, alloc := range req.Allocations {
		input.Allocations = append(input.Allocations, models.SaleAllocation{
			HarvestID: alloc.HarvestID,
			Quantity:  alloc.Quantity,
		})
	}

	sale, err := h.svc.RecordSale(c.Request.Context(), input)
	if err != nil {
		h.logger.Warn("sale rejected", zap.String("crop_id", req.CropID), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sale)
}

// CompletionEligibility reports whether the crop can be completed.
func (h *FinanceHandler) CompletionEligibility(c *gin.Context) {
	eligible, err := h.svc.CompletionEligible(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("eligibility check failed", zap.String("crop_id", c.Param("id")), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cropId": c.Param("id"), "eligible": eligible})
}

// CompleteCrop performs the explicit completion action.
func (h *FinanceHandler) CompleteCrop(c *gin.Context) {
	crop, err := h.svc.CompleteCrop(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Warn("completion rejected", zap.String("crop_id", c.Param("id")), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, crop)
}
