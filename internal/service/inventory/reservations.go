package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrocampo/internal/domain/models"
)

// FinalizeActivityInput carries everything the executor records when closing
// out an activity.
type FinalizeActivityInput struct {
	Observation    string
	EvidenceImage  string
	HoursDedicated float64
	HourlyRate     float64
	Returns        []ReturnLine
}

// ReturnLine fixes the consumption of one reservation. When Used is nil the
// reservation is considered fully consumed except for the returned quantity.
type ReturnLine struct {
	ReservationID string
	Used          *float64
	Returned      float64
}

// FinalizeActivityResult is the committed outcome of a finalization.
type FinalizeActivityResult struct {
	Activity     models.Activity
	Reservations []models.Reservation
}

// Reserve places a hold of quantity on the given lot for the activity. The
// check against availability and the insertion of the pending reservation are
// serialized per product, so a concurrent second reserve observes the first.
func (s *Service) Reserve(ctx context.Context, activityID, lotID string, quantity float64) (models.Reservation, error) {
	qty := decimal.NewFromFloat(quantity)
	if !qty.IsPositive() {
		return models.Reservation{}, fmt.Errorf("%w: quantity must be positive, got %s", models.ErrInvalidQuantity, qty.String())
	}

	lot, err := s.store.GetLot(ctx, lotID)
	if err != nil {
		return models.Reservation{}, fmt.Errorf("load lot %s: %w", lotID, err)
	}

	activity, err := s.store.GetActivity(ctx, activityID)
	if err != nil {
		return models.Reservation{}, fmt.Errorf("load activity %s: %w", activityID, err)
	}
	if !activity.Active {
		return models.Reservation{}, fmt.Errorf("activity %s: %w", activityID, models.ErrAlreadyFinalized)
	}

	product, err := s.store.GetProduct(ctx, lot.ProductID)
	if err != nil {
		return models.Reservation{}, fmt.Errorf("load product %s: %w", lot.ProductID, err)
	}
	category, err := s.store.GetCategory(ctx, product.CategoryID)
	if err != nil {
		return models.Reservation{}, fmt.Errorf("load category %s: %w", product.CategoryID, err)
	}

	// Tools are reserved in whole use-counts. Rejected, never rounded.
	if !category.IsDivisible && !qty.IsInteger() {
		return models.Reservation{}, fmt.Errorf("%w: product %s is non-divisible, use-count must be whole, got %s",
			models.ErrInvalidQuantity, product.ID, qty.String())
	}

	lock := s.productLock(lot.ProductID)
	lock.Lock()
	defer lock.Unlock()

	available, err := s.rawAvailability(ctx, lot.ProductID)
	if err != nil {
		return models.Reservation{}, err
	}
	if qty.GreaterThan(available) {
		return models.Reservation{}, fmt.Errorf("%w: requested %s of product %s, available %s",
			models.ErrInsufficientStock, qty.String(), product.ID, available.String())
	}

	reservation := models.Reservation{
		ID:         uuid.NewString(),
		ActivityID: activityID,
		LotID:      lot.ID,
		ProductID:  lot.ProductID,
		Requested:  quantity,
		State:      models.ReservationPending,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.store.InsertReservation(ctx, reservation); err != nil {
		return models.Reservation{}, fmt.Errorf("insert reservation: %w", err)
	}

	s.logger.Info("reservation created",
		zap.String("reservation_id", reservation.ID),
		zap.String("activity_id", activityID),
		zap.String("lot_id", lot.ID),
		zap.Float64("quantity", quantity))

	return reservation, nil
}

// Cancel releases an abandoned pending reservation. Pending reservations
// hold stock indefinitely; this is the only way to free them short of
// finalizing the activity.
func (s *Service) Cancel(ctx context.Context, reservationID string) (models.Reservation, error) {
	reservation, err := s.store.GetReservation(ctx, reservationID)
	if err != nil {
		return models.Reservation{}, fmt.Errorf("load reservation %s: %w", reservationID, err)
	}

	lock := s.productLock(reservation.ProductID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock; a concurrent finalize may have confirmed it.
	reservation, err = s.store.GetReservation(ctx, reservationID)
	if err != nil {
		return models.Reservation{}, fmt.Errorf("load reservation %s: %w", reservationID, err)
	}

	switch reservation.State {
	case models.ReservationPending:
	case models.ReservationConfirmed:
		return models.Reservation{}, fmt.Errorf("reservation %s: %w", reservationID, models.ErrAlreadyFinalized)
	case models.ReservationCancelled:
		return models.Reservation{}, fmt.Errorf("reservation %s: %w", reservationID, models.ErrReservationNotPending)
	default:
		return models.Reservation{}, fmt.Errorf("reservation %s: %w", reservationID, models.ErrReservationNotPending)
	}

	reservation.State = models.ReservationCancelled
	if err := s.store.UpdateReservation(ctx, reservation); err != nil {
		return models.Reservation{}, fmt.Errorf("update reservation: %w", err)
	}

	s.logger.Info("reservation cancelled", zap.String("reservation_id", reservationID))
	return reservation, nil
}

// finalization is one validated return line resolved against its reservation.
type finalization struct {
	reservation models.Reservation
	used        decimal.Decimal
	returned    decimal.Decimal
}

// FinalizeActivity closes out an activity: it records labor, evidence and
// observation, and confirms every pending reservation with its actual used
// and returned quantities. The whole operation validates first and commits
// in one transaction, so partial failures leave nothing behind.
func (s *Service) FinalizeActivity(ctx context.Context, activityID string, input FinalizeActivityInput) (FinalizeActivityResult, error) {
	if input.HoursDedicated < 0 || input.HourlyRate < 0 {
		return FinalizeActivityResult{}, fmt.Errorf("%w: labor hours and rate must not be negative", models.ErrInvalidQuantity)
	}

	activity, err := s.store.GetActivity(ctx, activityID)
	if err != nil {
		return FinalizeActivityResult{}, fmt.Errorf("load activity %s: %w", activityID, err)
	}
	if !activity.Active {
		return FinalizeActivityResult{}, fmt.Errorf("activity %s: %w", activityID, models.ErrAlreadyFinalized)
	}

	reservations, err := s.store.ListReservationsByActivity(ctx, activityID)
	if err != nil {
		return FinalizeActivityResult{}, fmt.Errorf("list reservations for activity %s: %w", activityID, err)
	}

	productIDs := make([]string, 0, len(reservations))
	for _, r := range reservations {
		productIDs = append(productIDs, r.ProductID)
	}
	unlock := s.lockProducts(productIDs)
	defer unlock()

	// Validate every line before touching anything.
	finalizations, err := s.validateReturns(ctx, activityID, reservations, input.Returns)
	if err != nil {
		return FinalizeActivityResult{}, err
	}

	confirmedAt := s.now().UTC()
	confirmed := make([]models.Reservation, 0, len(finalizations))

	err = s.store.RunTransaction(ctx, func(txCtx context.Context) error {
		for _, f := range finalizations {
			lot, err := s.store.GetLot(txCtx, f.reservation.LotID)
			if err != nil {
				return fmt.Errorf("load lot %s: %w", f.reservation.LotID, err)
			}

			// Consumption drains OnHand first, then the surplus pool, so
			// neither side of the lot ledger goes negative when a draw eats
			// into previously reclaimed stock.
			consumed := f.used.Add(f.returned)
			onHand := decimal.NewFromFloat(lot.OnHand)
			fromOnHand := decimal.Min(consumed, onHand)
			fromSurplus := consumed.Sub(fromOnHand)
			lot.OnHand = onHand.Sub(fromOnHand).InexactFloat64()
			lot.Surplus = decimal.NewFromFloat(lot.Surplus).Sub(fromSurplus).Add(f.returned).InexactFloat64()
			if err := s.store.UpdateLot(txCtx, lot); err != nil {
				return fmt.Errorf("update lot %s: %w", lot.ID, err)
			}

			r := f.reservation
			r.Used = f.used.InexactFloat64()
			r.Returned = f.returned.InexactFloat64()
			r.State = models.ReservationConfirmed
			r.FinalizedAt = confirmedAt
			if err := s.store.UpdateReservation(txCtx, r); err != nil {
				return fmt.Errorf("update reservation %s: %w", r.ID, err)
			}
			confirmed = append(confirmed, r)
		}

		activity.Active = false
		activity.Observation = input.Observation
		activity.EvidenceImage = input.EvidenceImage
		activity.HoursDedicated = input.HoursDedicated
		activity.HourlyRate = input.HourlyRate
		if err := s.store.UpdateActivity(txCtx, activity); err != nil {
			return fmt.Errorf("update activity %s: %w", activity.ID, err)
		}
		return nil
	})
	if err != nil {
		return FinalizeActivityResult{}, err
	}

	s.logger.Info("activity finalized",
		zap.String("activity_id", activityID),
		zap.Int("reservations_confirmed", len(confirmed)))

	return FinalizeActivityResult{Activity: activity, Reservations: confirmed}, nil
}

// validateReturns resolves the input lines against the activity's pending
// reservations. Every pending reservation must be covered by exactly one
// line, quantities must be non-negative, used + returned must stay within
// the requested amount, and tool quantities must be whole use-counts.
func (s *Service) validateReturns(ctx context.Context, activityID string, reservations []models.Reservation, lines []ReturnLine) ([]finalization, error) {
	byID := make(map[string]models.Reservation, len(reservations))
	pending := 0
	for _, r := range reservations {
		byID[r.ID] = r
		if r.State == models.ReservationPending {
			pending++
		}
	}

	seen := make(map[string]struct{}, len(lines))
	out := make([]finalization, 0, len(lines))

	for _, line := range lines {
		reservation, ok := byID[line.ReservationID]
		if !ok {
			return nil, fmt.Errorf("%w: reservation %s does not belong to activity %s", models.ErrNotFound, line.ReservationID, activityID)
		}
		if _, dup := seen[line.ReservationID]; dup {
			return nil, fmt.Errorf("%w: duplicate return line for reservation %s", models.ErrInvalidReturn, line.ReservationID)
		}
		seen[line.ReservationID] = struct{}{}

		switch reservation.State {
		case models.ReservationPending:
		case models.ReservationConfirmed:
			return nil, fmt.Errorf("reservation %s: %w", reservation.ID, models.ErrAlreadyFinalized)
		case models.ReservationCancelled:
			return nil, fmt.Errorf("reservation %s: %w", reservation.ID, models.ErrReservationNotPending)
		default:
			return nil, fmt.Errorf("reservation %s: %w", reservation.ID, models.ErrReservationNotPending)
		}

		requested := decimal.NewFromFloat(reservation.Requested)
		returned := decimal.NewFromFloat(line.Returned)

		var used decimal.Decimal
		if line.Used != nil {
			used = decimal.NewFromFloat(*line.Used)
		} else {
			used = requested.Sub(returned)
		}

		if used.IsNegative() || returned.IsNegative() {
			return nil, fmt.Errorf("%w: reservation %s has negative used or returned quantity", models.ErrInvalidReturn, reservation.ID)
		}
		if used.Add(returned).GreaterThan(requested) {
			return nil, fmt.Errorf("%w: reservation %s used %s + returned %s exceeds requested %s",
				models.ErrInvalidReturn, reservation.ID, used.String(), returned.String(), requested.String())
		}

		product, err := s.store.GetProduct(ctx, reservation.ProductID)
		if err != nil {
			return nil, fmt.Errorf("load product %s: %w", reservation.ProductID, err)
		}
		category, err := s.store.GetCategory(ctx, product.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("load category %s: %w", product.CategoryID, err)
		}
		if !category.IsDivisible && (!used.IsInteger() || !returned.IsInteger()) {
			return nil, fmt.Errorf("%w: product %s is non-divisible, use-counts must be whole", models.ErrInvalidQuantity, product.ID)
		}

		out = append(out, finalization{reservation: reservation, used: used, returned: returned})
	}

	if len(out) != pending {
		return nil, fmt.Errorf("%w: activity %s has %d pending reservations but %d return lines",
			models.ErrInvalidReturn, activityID, pending, len(out))
	}

	return out, nil
}
