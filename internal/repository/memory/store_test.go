package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/mamadbah2/agrocampo/internal/domain/models"
)

func TestGetProduct_NotFound(t *testing.T) {
	store := NewStore()

	_, err := store.GetProduct(context.Background(), "missing")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateLot_NotFound(t *testing.T) {
	store := NewStore()

	err := store.UpdateLot(context.Background(), models.StockLot{ID: "missing"})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchProducts_FiltersByName(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for _, p := range []models.Product{
		{ID: "p1", Name: "Triple 15 fertilizer"},
		{ID: "p2", Name: "Urea fertilizer"},
		{ID: "p3", Name: "Machete"},
	} {
		if err := store.InsertProduct(ctx, p); err != nil {
			t.Fatalf("InsertProduct: %v", err)
		}
	}

	results, err := store.SearchProducts(ctx, "fertilizer")
	if err != nil {
		t.Fatalf("SearchProducts: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(results))
	}
	for _, p := range results {
		if p.ID == "p3" {
			t.Error("machete must not match a fertilizer search")
		}
	}
}

func TestListLotsByProduct_StableOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for _, lot := range []models.StockLot{
		{ID: "lot-b", ProductID: "p1", OnHand: 10},
		{ID: "lot-a", ProductID: "p1", OnHand: 5},
		{ID: "lot-c", ProductID: "p2", OnHand: 7},
	} {
		if err := store.InsertLot(ctx, lot); err != nil {
			t.Fatalf("InsertLot: %v", err)
		}
	}

	lots, err := store.ListLotsByProduct(ctx, "p1")
	if err != nil {
		t.Fatalf("ListLotsByProduct: %v", err)
	}
	if len(lots) != 2 {
		t.Fatalf("expected 2 lots, got %d", len(lots))
	}
	if lots[0].ID != "lot-a" || lots[1].ID != "lot-b" {
		t.Errorf("expected lots sorted by ID, got %s then %s", lots[0].ID, lots[1].ID)
	}
}

func TestRunTransaction_PropagatesError(t *testing.T) {
	store := NewStore()

	boom := errors.New("boom")
	err := store.RunTransaction(context.Background(), func(ctx context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected transaction error to propagate, got %v", err)
	}
}
