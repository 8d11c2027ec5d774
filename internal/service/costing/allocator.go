package costing

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrocampo/internal/domain/models"
)

// residualRate is the fraction of a tool's price kept as residual value when
// computing depreciation per use.
var residualRate = decimal.NewFromFloat(0.10)

// Allocator prices confirmed reservations. The costing model is dispatched
// on the product's category: consumables are priced per physical unit, tools
// by depreciation per use.
type Allocator struct {
	logger *zap.Logger
}

// NewAllocator wires a cost allocator.
func NewAllocator(logger *zap.Logger) *Allocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Allocator{logger: logger}
}

// ReservationSubtotal computes the monetary subtotal of one reservation.
// Only Confirmed reservations carry cost; Pending and Cancelled ones price
// at zero even though Pending holds stock against availability.
func (a *Allocator) ReservationSubtotal(product models.Product, category models.Category, reservation models.Reservation) decimal.Decimal {
	switch reservation.State {
	case models.ReservationConfirmed:
	case models.ReservationPending, models.ReservationCancelled:
		return decimal.Zero
	default:
		return decimal.Zero
	}

	used := decimal.NewFromFloat(reservation.Used)

	if category.IsDivisible {
		return a.perUnitSubtotal(product, used)
	}

	if product.AverageUses <= 0 {
		// Documented fallback: a tool without a depreciation parameter is
		// priced with the consumable formula. The models are economically
		// different, so every occurrence is logged for follow-up.
		a.logger.Warn("tool missing average uses, falling back to per-unit costing",
			zap.String("product_id", product.ID),
			zap.String("product_name", product.Name))
		return a.perUnitSubtotal(product, used)
	}

	if used.IsZero() {
		return decimal.Zero
	}

	// One confirmed use contributes exactly costPerUse, independent of the
	// quantity recorded on the reservation.
	return a.costPerUse(product)
}

// costPerUse derives a tool's depreciation per use from its price, a 10%
// residual value and the expected number of uses before replacement.
func (a *Allocator) costPerUse(product models.Product) decimal.Decimal {
	price := decimal.NewFromFloat(product.Price)
	residual := price.Mul(residualRate)
	return price.Sub(residual).Div(decimal.NewFromInt(int64(product.AverageUses)))
}

func (a *Allocator) perUnitSubtotal(product models.Product, used decimal.Decimal) decimal.Decimal {
	capacity := decimal.NewFromFloat(product.PresentationCapacity)
	if !capacity.IsPositive() {
		a.logger.Warn("product has no presentation capacity, pricing per presentation",
			zap.String("product_id", product.ID))
		capacity = decimal.NewFromInt(1)
	}

	unitPrice := decimal.NewFromFloat(product.Price).Div(capacity)
	return used.Mul(unitPrice)
}
