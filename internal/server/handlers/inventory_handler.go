package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrocampo/internal/service/inventory"
)

// InventoryHandler exposes stock search, reservations and activity
// finalization over HTTP.
type InventoryHandler struct {
	svc    *inventory.Service
	logger *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(svc *inventory.Service, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, logger: logger}
}

// SearchProducts returns products matching the query together with their
// current available quantity.
func (h *InventoryHandler) SearchProducts(c *gin.Context) {
	results, err := h.svc.SearchAvailable(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.logger.Error("product search failed", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

type createReservationRequest struct {
	ActivityID string  `json:"activityId" binding:"required"`
	LotID      string  `json:"lotId" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"required"`
}

// CreateReservation places a hold on a stock lot for an activity.
func (h *InventoryHandler) CreateReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid reservation payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	reservation, err := h.svc.Reserve(c.Request.Context(), req.ActivityID, req.LotID, req.Quantity)
	if err != nil {
		h.logger.Warn("reservation rejected", zap.String("activity_id", req.ActivityID), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reservation)
}

// CancelReservation explicitly releases an abandoned pending reservation.
func (h *InventoryHandler) CancelReservation(c *gin.Context) {
	reservation, err := h.svc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Warn("cancel rejected", zap.String("reservation_id", c.Param("id")), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

type returnLineRequest struct {
	ReservationID    string   `json:"reservationId" binding:"required"`
	UsedQuantity     *float64 `json:"usedQuantity"`
	ReturnedQuantity float64  `json:"returnedQuantity"`
}

type finalizeActivityRequest struct {
	Observation    string              `json:"observation"`
	EvidenceImage  string              `json:"evidenceImage"`
	HoursDedicated float64             `json:"hoursDedicated"`
	HourlyRate     float64             `json:"hourlyRate"`
	Returns        []returnLineRequest `json:"returns"`
}

// FinalizeActivity records labor, evidence and per-reservation consumption
// in one all-or-nothing operation.
func (h *InventoryHandler) FinalizeActivity(c *gin.Context) {
	var req finalizeActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid finalize payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	input := inventory.FinalizeActivityInput{
		Observation:    req.Observation,
		EvidenceImage:  req.EvidenceImage,
		HoursDedicated: req.HoursDedicated,
		HourlyRate:     req.HourlyRate,
		Returns:        make([]inventory.ReturnLine, 0, len(req.Returns)),
	}
	for _, line := range req.Returns {
		input.Returns = append(input.Returns, inventory.ReturnLine{
			ReservationID: line.ReservationID,
			Used:          line.UsedQuantity,
			Returned:      line.ReturnedQuantity,
		})
	}

	result, err := h.svc.FinalizeActivity(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.logger.Warn("finalize rejected", zap.String("activity_id", c.Param("id")), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activity":     result.Activity,
		"reservations": result.Reservations,
	})
}
