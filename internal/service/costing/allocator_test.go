package costing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/agrocampo/internal/domain/models"
)

var (
	consumable    = models.Category{ID: "cat-c", Name: "Fertilizers", IsDivisible: true}
	toolCategory  = models.Category{ID: "cat-t", Name: "Tools", IsDivisible: false}
	fertilizer    = models.Product{ID: "p-fert", Name: "Fertilizer", Price: 100, PresentationCapacity: 10, CategoryID: "cat-c"}
	tractor       = models.Product{ID: "p-tractor", Name: "Tractor", Price: 1000000, AverageUses: 10, CategoryID: "cat-t"}
	brokenTractor = models.Product{ID: "p-old", Name: "Old tractor", Price: 500000, PresentationCapacity: 5, CategoryID: "cat-t"}
)

func confirmedReservation(productID string, used float64) models.Reservation {
	return models.Reservation{
		ID: "res-1", ProductID: productID, Requested: used + 1,
		Used: used, State: models.ReservationConfirmed,
	}
}

func TestReservationSubtotal_Consumable(t *testing.T) {
	a := NewAllocator(nil)

	// price 100, capacity 10 => unit price 10; used 4 => 40.
	got := a.ReservationSubtotal(fertilizer, consumable, confirmedReservation("p-fert", 4))
	if !got.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected subtotal 40, got %s", got)
	}
}

func TestReservationSubtotal_ToolDepreciation(t *testing.T) {
	a := NewAllocator(nil)

	// price 1,000,000, 10% residual, 10 uses => 90,000 per use.
	want := decimal.NewFromInt(90000)

	// The quantity field is a use-count for tools but the subtotal is one
	// costPerUse per confirmed use, independent of its value.
	for _, used := range []float64{1, 3, 7} {
		got := a.ReservationSubtotal(tractor, toolCategory, confirmedReservation("p-tractor", used))
		if !got.Equal(want) {
			t.Errorf("used=%v: expected 90000, got %s", used, got)
		}
	}

	// No recorded use, no depreciation charged.
	got := a.ReservationSubtotal(tractor, toolCategory, confirmedReservation("p-tractor", 0))
	if !got.IsZero() {
		t.Errorf("expected zero subtotal for zero uses, got %s", got)
	}
}

func TestReservationSubtotal_ToolFallbackToPerUnit(t *testing.T) {
	a := NewAllocator(nil)

	// AverageUses unset: documented fallback to the consumable formula.
	// price 500,000 / capacity 5 = 100,000 per unit; used 2 => 200,000.
	got := a.ReservationSubtotal(brokenTractor, toolCategory, confirmedReservation("p-old", 2))
	if !got.Equal(decimal.NewFromInt(200000)) {
		t.Errorf("expected fallback subtotal 200000, got %s", got)
	}
}

func TestReservationSubtotal_OnlyConfirmedCarriesCost(t *testing.T) {
	a := NewAllocator(nil)

	pending := confirmedReservation("p-fert", 4)
	pending.State = models.ReservationPending
	cancelled := confirmedReservation("p-fert", 4)
	cancelled.State = models.ReservationCancelled

	if got := a.ReservationSubtotal(fertilizer, consumable, pending); !got.IsZero() {
		t.Errorf("pending reservation must price at zero, got %s", got)
	}
	if got := a.ReservationSubtotal(fertilizer, consumable, cancelled); !got.IsZero() {
		t.Errorf("cancelled reservation must price at zero, got %s", got)
	}
}

func TestActivityCost_LaborPlusConfirmedSubtotals(t *testing.T) {
	a := NewAllocator(nil)

	activity := models.Activity{ID: "act-1", HoursDedicated: 8, HourlyRate: 15}

	lookup := func(productID string) (models.Product, models.Category, error) {
		switch productID {
		case "p-fert":
			return fertilizer, consumable, nil
		default:
			return tractor, toolCategory, nil
		}
	}

	reservations := []models.Reservation{
		{ID: "r1", ProductID: "p-fert", Requested: 5, Used: 4, State: models.ReservationConfirmed},
		{ID: "r2", ProductID: "p-tractor", Requested: 1, Used: 1, State: models.ReservationConfirmed},
		// Pending holds stock but contributes nothing financially.
		{ID: "r3", ProductID: "p-fert", Requested: 20, State: models.ReservationPending},
	}

	got, err := a.ActivityCost(activity, reservations, lookup)
	if err != nil {
		t.Fatalf("ActivityCost: %v", err)
	}

	// labor 8*15=120, fertilizer 40, tractor 90,000.
	want := decimal.NewFromInt(120 + 40 + 90000)
	if !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestLaborCost(t *testing.T) {
	got := LaborCost(models.Activity{HoursDedicated: 2.5, HourlyRate: 20})
	if !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected labor cost 50, got %s", got)
	}
}
