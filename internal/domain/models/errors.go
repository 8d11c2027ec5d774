package models

import "errors"

// Validation errors surfaced to callers. None of these are retryable: they
// mean the caller's view of availability is stale or the input is wrong, and
// the caller must refresh and resubmit.
var (
	// ErrInsufficientStock rejects a reservation exceeding available quantity.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidReturn rejects a finalization where used + returned exceeds
	// the requested quantity, or either value is negative.
	ErrInvalidReturn = errors.New("invalid return quantity")

	// ErrInvalidQuantity rejects non-positive quantities and fractional
	// quantities on non-divisible (tool) products.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrOverAllocation rejects a sale draw exceeding a specific harvest's
	// available quantity. Capacity is never borrowed from other harvests.
	ErrOverAllocation = errors.New("harvest over-allocation")

	// ErrHarvestClosed rejects draws against a closed harvest.
	ErrHarvestClosed = errors.New("harvest is closed")

	// ErrAlreadyFinalized rejects re-finalization of a confirmed reservation
	// or an inactive activity.
	ErrAlreadyFinalized = errors.New("already finalized")

	// ErrReservationNotPending rejects operations that require a pending
	// reservation, e.g. cancelling one that is already terminal.
	ErrReservationNotPending = errors.New("reservation is not pending")

	// ErrNotEligible rejects completion of a crop that still has open,
	// sellable harvest quantity or is perennial.
	ErrNotEligible = errors.New("crop not eligible for completion")

	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
)
