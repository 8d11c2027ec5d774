package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrocampo/internal/domain/models"
	"github.com/mamadbah2/agrocampo/pkg/clients/notify"
)

// rawAvailability derives onHand + surplus minus the quantity held by
// pending reservations, across every lot of the product. It is recomputed on
// every call; caching it across a reservation state change would go stale.
func (s *Service) rawAvailability(ctx context.Context, productID string) (decimal.Decimal, error) {
	lots, err := s.store.ListLotsByProduct(ctx, productID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list lots for product %s: %w", productID, err)
	}

	total := decimal.Zero
	for _, lot := range lots {
		total = total.Add(decimal.NewFromFloat(lot.OnHand)).Add(decimal.NewFromFloat(lot.Surplus))
	}

	reservations, err := s.store.ListReservationsByProduct(ctx, productID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list reservations for product %s: %w", productID, err)
	}
	for _, r := range reservations {
		total = total.Sub(decimal.NewFromFloat(r.Holding()))
	}

	return total, nil
}

// Availability reports the quantity of a product that can still be reserved
// or sold. Callers never observe a negative value: a negative intermediate is
// a ledger inconsistency, logged and pushed to the alert webhook, then
// clamped to zero.
func (s *Service) Availability(ctx context.Context, productID string) (float64, error) {
	raw, err := s.rawAvailability(ctx, productID)
	if err != nil {
		return 0, err
	}

	if raw.IsNegative() {
		s.logger.Warn("negative availability detected, ledger inconsistent",
			zap.String("product_id", productID),
			zap.String("raw", raw.String()))
		s.alert(ctx, notify.Alert{
			Kind:      notify.KindConsistencyWarning,
			Message:   fmt.Sprintf("product %s availability computed negative (%s)", productID, raw.String()),
			ProductID: productID,
			Value:     raw.InexactFloat64(),
		})
		return 0, nil
	}

	return raw.InexactFloat64(), nil
}

// SearchAvailable resolves a product name search into products paired with
// their current availability, for selection UIs.
func (s *Service) SearchAvailable(ctx context.Context, query string) ([]models.ProductAvailability, error) {
	products, err := s.store.SearchProducts(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	out := make([]models.ProductAvailability, 0, len(products))
	for _, product := range products {
		available, err := s.Availability(ctx, product.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.ProductAvailability{Product: product, AvailableQuantity: available})
	}

	return out, nil
}

// AuditLedger recomputes raw availability for every product, surfacing
// negative values as consistency warnings and quantities below the threshold
// as low-stock alerts. A threshold of zero disables low-stock alerts.
func (s *Service) AuditLedger(ctx context.Context, lowStockThreshold float64) error {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	threshold := decimal.NewFromFloat(lowStockThreshold)
	for _, product := range products {
		raw, err := s.rawAvailability(ctx, product.ID)
		if err != nil {
			return err
		}

		switch {
		case raw.IsNegative():
			s.logger.Warn("ledger audit found negative availability",
				zap.String("product_id", product.ID),
				zap.String("raw", raw.String()))
			s.alert(ctx, notify.Alert{
				Kind:      notify.KindConsistencyWarning,
				Message:   fmt.Sprintf("audit: product %s (%s) availability is %s", product.ID, product.Name, raw.String()),
				ProductID: product.ID,
				Value:     raw.InexactFloat64(),
			})
		case threshold.IsPositive() && raw.LessThan(threshold):
			s.alert(ctx, notify.Alert{
				Kind:      notify.KindLowStock,
				Message:   fmt.Sprintf("audit: product %s (%s) is low on stock: %s available", product.ID, product.Name, raw.String()),
				ProductID: product.ID,
				Value:     raw.InexactFloat64(),
			})
		}
	}

	s.logger.Info("ledger audit completed", zap.Int("products", len(products)))
	return nil
}
