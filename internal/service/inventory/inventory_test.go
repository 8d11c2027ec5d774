package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mamadbah2/agrocampo/internal/domain/models"
	"github.com/mamadbah2/agrocampo/internal/repository/memory"
)

const (
	consumableCategory = "cat-consumable"
	toolCategory       = "cat-tool"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()

	mustSeed := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	mustSeed(store.InsertCategory(ctx, models.Category{ID: consumableCategory, Name: "Fertilizers", IsDivisible: true}))
	mustSeed(store.InsertCategory(ctx, models.Category{ID: toolCategory, Name: "Tools", IsDivisible: false}))

	mustSeed(store.InsertProduct(ctx, models.Product{
		ID: "prod-fert", Name: "Nitrogen fertilizer", Unit: "kg",
		Price: 100, PresentationCapacity: 10, CategoryID: consumableCategory,
	}))
	mustSeed(store.InsertProduct(ctx, models.Product{
		ID: "prod-tractor", Name: "Tractor", Unit: "use",
		Price: 1000000, CategoryID: toolCategory, AverageUses: 10,
	}))

	mustSeed(store.InsertLot(ctx, models.StockLot{ID: "lot-fert-1", ProductID: "prod-fert", OnHand: 50}))
	mustSeed(store.InsertLot(ctx, models.StockLot{ID: "lot-fert-2", ProductID: "prod-fert", OnHand: 30, Surplus: 5}))
	mustSeed(store.InsertLot(ctx, models.StockLot{ID: "lot-tractor", ProductID: "prod-tractor", OnHand: 2}))

	mustSeed(store.InsertCrop(ctx, models.Crop{ID: "crop-1", Name: "Tomatoes"}))
	mustSeed(store.InsertActivity(ctx, models.Activity{
		ID: "act-1", CropID: "crop-1", Description: "Fertilization",
		Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), Active: true,
	}))
	mustSeed(store.InsertActivity(ctx, models.Activity{
		ID: "act-2", CropID: "crop-1", Description: "Plowing",
		Date: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), Active: true,
	}))

	return NewService(store, nil, nil), store
}

func TestAvailability_DerivedFromLedger(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// 50 + 30 on hand plus 5 surplus across two lots.
	available, err := svc.Availability(ctx, "prod-fert")
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if available != 85 {
		t.Errorf("expected availability 85, got %v", available)
	}
}

func TestReserve_ReducesNextAvailabilityRead(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reservation, err := svc.Reserve(ctx, "act-1", "lot-fert-1", 20)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if reservation.State != models.ReservationPending {
		t.Errorf("expected Pending state, got %s", reservation.State)
	}

	available, err := svc.Availability(ctx, "prod-fert")
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if available != 65 {
		t.Errorf("expected availability 65 after reserving 20, got %v", available)
	}
}

func TestReserve_InsufficientStock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Reserve(ctx, "act-1", "lot-fert-1", 86); !errors.Is(err, models.ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got %v", err)
	}

	// Exactly the available quantity must succeed.
	if _, err := svc.Reserve(ctx, "act-1", "lot-fert-1", 85); err != nil {
		t.Errorf("reserving the full available quantity should succeed, got %v", err)
	}
}

func TestReserve_ToolRequiresWholeUseCounts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Reserve(ctx, "act-1", "lot-tractor", 1.5); !errors.Is(err, models.ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity for fractional tool use-count, got %v", err)
	}
	if _, err := svc.Reserve(ctx, "act-1", "lot-tractor", 1); err != nil {
		t.Errorf("whole use-count should succeed, got %v", err)
	}
}

func TestReserve_RejectsNonPositiveQuantity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, qty := range []float64{0, -3} {
		if _, err := svc.Reserve(ctx, "act-1", "lot-fert-1", qty); !errors.Is(err, models.ErrInvalidQuantity) {
			t.Errorf("quantity %v: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
}

func TestAvailability_ClampsNegativeToZero(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	// Force an inconsistent ledger: a pending hold larger than the stock.
	if err := store.InsertReservation(ctx, models.Reservation{
		ID: "res-bad", ActivityID: "act-1", LotID: "lot-fert-1", ProductID: "prod-fert",
		Requested: 500, State: models.ReservationPending,
	}); err != nil {
		t.Fatalf("seed reservation: %v", err)
	}

	available, err := svc.Availability(ctx, "prod-fert")
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if available != 0 {
		t.Errorf("negative ledger arithmetic must clamp to zero, got %v", available)
	}
}

func TestCancel_ReleasesHeldStock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reservation, err := svc.Reserve(ctx, "act-1", "lot-fert-1", 40)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, reservation.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.State != models.ReservationCancelled {
		t.Errorf("expected Cancelled state, got %s", cancelled.State)
	}

	available, err := svc.Availability(ctx, "prod-fert")
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if available != 85 {
		t.Errorf("expected availability restored to 85, got %v", available)
	}

	// A second cancel must fail: the reservation is terminal.
	if _, err := svc.Cancel(ctx, reservation.ID); !errors.Is(err, models.ErrReservationNotPending) {
		t.Errorf("expected ErrReservationNotPending, got %v", err)
	}
}

func usedPtr(v float64) *float64 { return &v }

func TestFinalizeActivity_InvalidReturn(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reservation, err := svc.Reserve(ctx, "act-1", "lot-fert-1", 10)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	cases := []struct {
		name string
		line ReturnLine
		want error
	}{
		{"used plus returned exceeds requested", ReturnLine{ReservationID: reservation.ID, Used: usedPtr(8), Returned: 3}, models.ErrInvalidReturn},
		{"negative returned", ReturnLine{ReservationID: reservation.ID, Used: usedPtr(2), Returned: -1}, models.ErrInvalidReturn},
		{"negative used", ReturnLine{ReservationID: reservation.ID, Used: usedPtr(-2), Returned: 1}, models.ErrInvalidReturn},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.FinalizeActivity(ctx, "act-1", FinalizeActivityInput{Returns: []ReturnLine{tc.line}})
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}

	// Nothing committed: the reservation still holds its full quantity.
	available, err := svc.Availability(ctx, "prod-fert")
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if available != 75 {
		t.Errorf("expected availability 75 after failed finalizations, got %v", available)
	}
}

func TestFinalizeActivity_ConfirmsAndMovesSurplus(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	reservation, err := svc.Reserve(ctx, "act-1", "lot-fert-1", 10)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	result, err := svc.FinalizeActivity(ctx, "act-1", FinalizeActivityInput{
		Observation:    "applied on north rows",
		HoursDedicated: 4,
		HourlyRate:     12.5,
		Returns:        []ReturnLine{{ReservationID: reservation.ID, Used: usedPtr(6), Returned: 3}},
	})
	if err != nil {
		t.Fatalf("FinalizeActivity: %v", err)
	}

	if result.Activity.Active {
		t.Error("activity should be inactive after finalization")
	}
	if len(result.Reservations) != 1 {
		t.Fatalf("expected 1 confirmed reservation, got %d", len(result.Reservations))
	}
	confirmed := result.Reservations[0]
	if confirmed.State != models.ReservationConfirmed || confirmed.Used != 6 || confirmed.Returned != 3 {
		t.Errorf("unexpected confirmed reservation: %+v", confirmed)
	}

	lot, err := store.GetLot(ctx, "lot-fert-1")
	if err != nil {
		t.Fatalf("GetLot: %v", err)
	}
	if lot.OnHand != 41 || lot.Surplus != 3 {
		t.Errorf("expected lot onHand 41 / surplus 3, got %v / %v", lot.OnHand, lot.Surplus)
	}

	// 85 - 6 used = 79: the returned quantity is reclaimable again, the
	// unused remainder was released.
	available, err := svc.Availability(ctx, "prod-fert")
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if available != 79 {
		t.Errorf("expected availability 79 after finalization, got %v", available)
	}
}

func TestFinalizeActivity_ConsumptionDrawsOnSurplusPool(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	// lot-fert-2 holds 30 on hand plus 5 surplus. A 33 reservation is
	// covered by the product-level availability; its consumption must drain
	// on-hand to zero and take the rest from surplus, never below zero.
	reservation, err := svc.Reserve(ctx, "act-1", "lot-fert-2", 33)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	_, err = svc.FinalizeActivity(ctx, "act-1", FinalizeActivityInput{
		Returns: []ReturnLine{{ReservationID: reservation.ID, Used: usedPtr(31), Returned: 2}},
	})
	if err != nil {
		t.Fatalf("FinalizeActivity: %v", err)
	}

	lot, err := store.GetLot(ctx, "lot-fert-2")
	if err != nil {
		t.Fatalf("GetLot: %v", err)
	}
	// consumed 33: 30 from on-hand, 3 from surplus; 2 returned back in.
	if lot.OnHand != 0 || lot.Surplus != 4 {
		t.Errorf("expected lot onHand 0 / surplus 4, got %v / %v", lot.OnHand, lot.Surplus)
	}

	available, err := svc.Availability(ctx, "prod-fert")
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if available != 54 {
		t.Errorf("expected availability 54 (85 - 31 used), got %v", available)
	}
}

func TestFinalizeActivity_DefaultsUsedToRemainder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reservation, err := svc.Reserve(ctx, "act-1", "lot-fert-1", 10)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	result, err := svc.FinalizeActivity(ctx, "act-1", FinalizeActivityInput{
		Returns: []ReturnLine{{ReservationID: reservation.ID, Returned: 4}},
	})
	if err != nil {
		t.Fatalf("FinalizeActivity: %v", err)
	}
	if got := result.Reservations[0].Used; got != 6 {
		t.Errorf("expected used to default to requested - returned = 6, got %v", got)
	}
}

func TestFinalizeActivity_Refinalize(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reservation, err := svc.Reserve(ctx, "act-1", "lot-fert-1", 10)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	input := FinalizeActivityInput{Returns: []ReturnLine{{ReservationID: reservation.ID, Used: usedPtr(10)}}}
	if _, err := svc.FinalizeActivity(ctx, "act-1", input); err != nil {
		t.Fatalf("first finalize: %v", err)
	}

	// A second finalize must fail instead of double-counting.
	if _, err := svc.FinalizeActivity(ctx, "act-1", input); !errors.Is(err, models.ErrAlreadyFinalized) {
		t.Errorf("expected ErrAlreadyFinalized, got %v", err)
	}
}

func TestFinalizeActivity_RequiresLineForEveryPendingReservation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Reserve(ctx, "act-1", "lot-fert-1", 10)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if _, err := svc.Reserve(ctx, "act-1", "lot-fert-2", 5); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	_, err = svc.FinalizeActivity(ctx, "act-1", FinalizeActivityInput{
		Returns: []ReturnLine{{ReservationID: first.ID, Used: usedPtr(10)}},
	})
	if !errors.Is(err, models.ErrInvalidReturn) {
		t.Errorf("expected ErrInvalidReturn when a pending reservation is missing its line, got %v", err)
	}
}

func TestReserve_ConcurrentCallsAreSerialized(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// 85 available; 100 goroutines each want 1. Exactly 85 may succeed.
	const workers = 100
	var wg sync.WaitGroup
	var mu sync.Mutex
	var succeeded, insufficient int

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(ctx, "act-1", "lot-fert-1", 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, models.ErrInsufficientStock):
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 85 || insufficient != 15 {
		t.Errorf("expected 85 successes and 15 rejections, got %d / %d", succeeded, insufficient)
	}

	available, err := svc.Availability(ctx, "prod-fert")
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if available != 0 {
		t.Errorf("expected availability 0 after saturation, got %v", available)
	}
}

func TestSearchAvailable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Reserve(ctx, "act-1", "lot-fert-1", 25); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	results, err := svc.SearchAvailable(ctx, "fertilizer")
	if err != nil {
		t.Fatalf("SearchAvailable: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Product.ID != "prod-fert" || results[0].AvailableQuantity != 60 {
		t.Errorf("unexpected result: %+v", results[0])
	}
}
