package finance

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrocampo/internal/domain/models"
	"github.com/mamadbah2/agrocampo/internal/repository"
	"github.com/mamadbah2/agrocampo/internal/service/costing"
)

// Service computes crop financial snapshots and records sales against
// harvests. Snapshots are always derived on demand from the stored records;
// nothing here is cached.
type Service struct {
	store     repository.Store
	allocator *costing.Allocator
	logger    *zap.Logger

	mu           sync.Mutex
	harvestLocks map[string]*sync.Mutex
}

// NewService wires a finance service instance.
func NewService(store repository.Store, allocator *costing.Allocator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:        store,
		allocator:    allocator,
		logger:       logger,
		harvestLocks: make(map[string]*sync.Mutex),
	}
}

func (s *Service) harvestLock(harvestID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.harvestLocks[harvestID]
	if !ok {
		lock = &sync.Mutex{}
		s.harvestLocks[harvestID] = lock
	}
	return lock
}

// lockHarvests acquires the locks of all given harvests in sorted ID order
// and returns the matching unlock function.
func (s *Service) lockHarvests(harvestIDs []string) func() {
	unique := make(map[string]struct{}, len(harvestIDs))
	for _, id := range harvestIDs {
		unique[id] = struct{}{}
	}
	ids := make([]string, 0, len(unique))
	for id := range unique {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	locks := make([]*sync.Mutex, 0, len(ids))
	for _, id := range ids {
		lock := s.harvestLock(id)
		lock.Lock()
		locks = append(locks, lock)
	}

	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

// productLookup builds a memoized costing.ProductLookup over the store.
func (s *Service) productLookup(ctx context.Context) costing.ProductLookup {
	type entry struct {
		product  models.Product
		category models.Category
	}
	cache := make(map[string]entry)

	return func(productID string) (models.Product, models.Category, error) {
		if e, ok := cache[productID]; ok {
			return e.product, e.category, nil
		}
		product, err := s.store.GetProduct(ctx, productID)
		if err != nil {
			return models.Product{}, models.Category{}, fmt.Errorf("load product %s: %w", productID, err)
		}
		category, err := s.store.GetCategory(ctx, product.CategoryID)
		if err != nil {
			return models.Product{}, models.Category{}, fmt.Errorf("load category %s: %w", product.CategoryID, err)
		}
		cache[productID] = entry{product: product, category: category}
		return product, category, nil
	}
}

// productionCost totals the cost of every finalized activity of the crop
// dated no later than asOf.
func (s *Service) productionCost(ctx context.Context, cropID string, asOf time.Time) (decimal.Decimal, error) {
	activities, err := s.store.ListActivitiesByCrop(ctx, cropID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list activities for crop %s: %w", cropID, err)
	}

	lookup := s.productLookup(ctx)
	total := decimal.Zero

	for _, activity := range activities {
		if activity.Active || activity.Date.After(asOf) {
			continue
		}
		reservations, err := s.store.ListReservationsByActivity(ctx, activity.ID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("list reservations for activity %s: %w", activity.ID, err)
		}
		cost, err := s.allocator.ActivityCost(activity, reservations, lookup)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(cost)
	}

	return total, nil
}

// Snapshot derives the financial view of a crop as of the given date. The
// mode is re-evaluated on every call: the first harvest dated within asOf
// flips the crop from activity-only to dynamic with no caching in between.
// asOf is always explicit; this service never reads the system clock.
func (s *Service) Snapshot(ctx context.Context, cropID string, asOf time.Time) (models.FinancialSnapshot, error) {
	if _, err := s.store.GetCrop(ctx, cropID); err != nil {
		return models.FinancialSnapshot{}, fmt.Errorf("load crop %s: %w", cropID, err)
	}

	cost, err := s.productionCost(ctx, cropID, asOf)
	if err != nil {
		return models.FinancialSnapshot{}, err
	}

	harvests, err := s.store.ListHarvestsByCrop(ctx, cropID)
	if err != nil {
		return models.FinancialSnapshot{}, fmt.Errorf("list harvests for crop %s: %w", cropID, err)
	}

	var withinAsOf []models.Harvest
	for _, h := range harvests {
		if !h.Date.After(asOf) {
			withinAsOf = append(withinAsOf, h)
		}
	}

	snapshot := models.FinancialSnapshot{
		CropID:         cropID,
		ProductionCost: cost.InexactFloat64(),
		AsOf:           asOf,
	}

	if len(withinAsOf) == 0 {
		// Growth phase: costs are visible, yields and revenue report zero.
		snapshot.Mode = models.ModeActivityOnly
		snapshot.Profit = cost.Neg().InexactFloat64()
		return snapshot, nil
	}

	snapshot.Mode = models.ModeDynamic

	harvested := decimal.Zero
	for _, h := range withinAsOf {
		harvested = harvested.Add(decimal.NewFromFloat(h.Quantity))
	}

	sales, err := s.store.ListSalesByCrop(ctx, cropID)
	if err != nil {
		return models.FinancialSnapshot{}, fmt.Errorf("list sales for crop %s: %w", cropID, err)
	}

	sold := decimal.Zero
	revenue := decimal.Zero
	for _, sale := range sales {
		if sale.Date.After(asOf) {
			continue
		}
		qty := decimal.NewFromFloat(sale.Quantity)
		sold = sold.Add(qty)
		revenue = revenue.Add(qty.Mul(decimal.NewFromFloat(sale.UnitPrice)))
	}

	profit := revenue.Sub(cost)
	snapshot.QuantityHarvested = harvested.InexactFloat64()
	snapshot.QuantitySold = sold.InexactFloat64()
	snapshot.Revenue = revenue.InexactFloat64()
	snapshot.Profit = profit.InexactFloat64()
	if cost.IsPositive() {
		snapshot.Margin = profit.Div(cost).InexactFloat64()
	}

	return snapshot, nil
}
