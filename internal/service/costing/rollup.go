package costing

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/agrocampo/internal/domain/models"
)

// ProductLookup resolves a reservation's product and category for pricing.
type ProductLookup func(productID string) (models.Product, models.Category, error)

// LaborCost prices the labor of an activity: dedicated hours times the
// hourly rate.
func LaborCost(activity models.Activity) decimal.Decimal {
	return decimal.NewFromFloat(activity.HoursDedicated).Mul(decimal.NewFromFloat(activity.HourlyRate))
}

// ActivityCost totals an activity: labor plus the subtotal of every
// confirmed reservation. Pending reservations on an unfinalized activity
// contribute nothing to any financial total.
func (a *Allocator) ActivityCost(activity models.Activity, reservations []models.Reservation, lookup ProductLookup) (decimal.Decimal, error) {
	total := LaborCost(activity)

	for _, reservation := range reservations {
		if reservation.State != models.ReservationConfirmed {
			continue
		}
		product, category, err := lookup(reservation.ProductID)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(a.ReservationSubtotal(product, category, reservation))
	}

	return total, nil
}
