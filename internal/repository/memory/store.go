package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mamadbah2/agrocampo/internal/domain/models"
)

// Store is an in-memory implementation of repository.Store backed by
// mutex-guarded maps. It is used by service tests and local tooling.
type Store struct {
	mu           sync.RWMutex
	txMu         sync.Mutex
	products     map[string]models.Product
	categories   map[string]models.Category
	lots         map[string]models.StockLot
	reservations map[string]models.Reservation
	activities   map[string]models.Activity
	crops        map[string]models.Crop
	harvests     map[string]models.Harvest
	sales        map[string]models.Sale
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		products:     make(map[string]models.Product),
		categories:   make(map[string]models.Category),
		lots:         make(map[string]models.StockLot),
		reservations: make(map[string]models.Reservation),
		activities:   make(map[string]models.Activity),
		crops:        make(map[string]models.Crop),
		harvests:     make(map[string]models.Harvest),
		sales:        make(map[string]models.Sale),
	}
}

func (s *Store) InsertProduct(_ context.Context, product models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.ID] = product
	return nil
}

func (s *Store) GetProduct(_ context.Context, id string) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	product, ok := s.products[id]
	if !ok {
		return models.Product{}, models.ErrNotFound
	}
	return product, nil
}

func (s *Store) ListProducts(_ context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sortByID(out, func(p models.Product) string { return p.ID })
	return out, nil
}

func (s *Store) SearchProducts(_ context.Context, query string) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(query)
	var out []models.Product
	for _, p := range s.products {
		if needle == "" || strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	sortByID(out, func(p models.Product) string { return p.ID })
	return out, nil
}

func (s *Store) InsertCategory(_ context.Context, category models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[category.ID] = category
	return nil
}

func (s *Store) GetCategory(_ context.Context, id string) (models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	category, ok := s.categories[id]
	if !ok {
		return models.Category{}, models.ErrNotFound
	}
	return category, nil
}

func (s *Store) InsertLot(_ context.Context, lot models.StockLot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lots[lot.ID] = lot
	return nil
}

func (s *Store) GetLot(_ context.Context, id string) (models.StockLot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lot, ok := s.lots[id]
	if !ok {
		return models.StockLot{}, models.ErrNotFound
	}
	return lot, nil
}

func (s *Store) UpdateLot(_ context.Context, lot models.StockLot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lots[lot.ID]; !ok {
		return models.ErrNotFound
	}
	s.lots[lot.ID] = lot
	return nil
}

func (s *Store) ListLotsByProduct(_ context.Context, productID string) ([]models.StockLot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.StockLot
	for _, lot := range s.lots {
		if lot.ProductID == productID {
			out = append(out, lot)
		}
	}
	sortByID(out, func(l models.StockLot) string { return l.ID })
	return out, nil
}

func (s *Store) InsertReservation(_ context.Context, reservation models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[reservation.ID] = reservation
	return nil
}

func (s *Store) GetReservation(_ context.Context, id string) (models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reservation, ok := s.reservations[id]
	if !ok {
		return models.Reservation{}, models.ErrNotFound
	}
	return reservation, nil
}

func (s *Store) UpdateReservation(_ context.Context, reservation models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[reservation.ID]; !ok {
		return models.ErrNotFound
	}
	s.reservations[reservation.ID] = reservation
	return nil
}

func (s *Store) ListReservationsByProduct(_ context.Context, productID string) ([]models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Reservation
	for _, r := range s.reservations {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	sortByID(out, func(r models.Reservation) string { return r.ID })
	return out, nil
}

func (s *Store) ListReservationsByActivity(_ context.Context, activityID string) ([]models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Reservation
	for _, r := range s.reservations {
		if r.ActivityID == activityID {
			out = append(out, r)
		}
	}
	sortByID(out, func(r models.Reservation) string { return r.ID })
	return out, nil
}

func (s *Store) InsertActivity(_ context.Context, activity models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities[activity.ID] = activity
	return nil
}

func (s *Store) GetActivity(_ context.Context, id string) (models.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	activity, ok := s.activities[id]
	if !ok {
		return models.Activity{}, models.ErrNotFound
	}
	return activity, nil
}

func (s *Store) UpdateActivity(_ context.Context, activity models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.activities[activity.ID]; !ok {
		return models.ErrNotFound
	}
	s.activities[activity.ID] = activity
	return nil
}

func (s *Store) ListActivitiesByCrop(_ context.Context, cropID string) ([]models.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Activity
	for _, a := range s.activities {
		if a.CropID == cropID {
			out = append(out, a)
		}
	}
	sortByID(out, func(a models.Activity) string { return a.ID })
	return out, nil
}

func (s *Store) InsertCrop(_ context.Context, crop models.Crop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crops[crop.ID] = crop
	return nil
}

func (s *Store) GetCrop(_ context.Context, id string) (models.Crop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	crop, ok := s.crops[id]
	if !ok {
		return models.Crop{}, models.ErrNotFound
	}
	return crop, nil
}

func (s *Store) UpdateCrop(_ context.Context, crop models.Crop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.crops[crop.ID]; !ok {
		return models.ErrNotFound
	}
	s.crops[crop.ID] = crop
	return nil
}

func (s *Store) ListCrops(_ context.Context) ([]models.Crop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Crop, 0, len(s.crops))
	for _, c := range s.crops {
		out = append(out, c)
	}
	sortByID(out, func(c models.Crop) string { return c.ID })
	return out, nil
}

func (s *Store) InsertHarvest(_ context.Context, harvest models.Harvest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.harvests[harvest.ID] = harvest
	return nil
}

func (s *Store) GetHarvest(_ context.Context, id string) (models.Harvest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	harvest, ok := s.harvests[id]
	if !ok {
		return models.Harvest{}, models.ErrNotFound
	}
	return harvest, nil
}

func (s *Store) UpdateHarvest(_ context.Context, harvest models.Harvest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.harvests[harvest.ID]; !ok {
		return models.ErrNotFound
	}
	s.harvests[harvest.ID] = harvest
	return nil
}

func (s *Store) ListHarvestsByCrop(_ context.Context, cropID string) ([]models.Harvest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Harvest
	for _, h := range s.harvests {
		if h.CropID == cropID {
			out = append(out, h)
		}
	}
	sortByID(out, func(h models.Harvest) string { return h.ID })
	return out, nil
}

func (s *Store) InsertSale(_ context.Context, sale models.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales[sale.ID] = sale
	return nil
}

func (s *Store) ListSalesByCrop(_ context.Context, cropID string) ([]models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Sale
	for _, sale := range s.sales {
		if sale.CropID == cropID {
			out = append(out, sale)
		}
	}
	sortByID(out, func(sl models.Sale) string { return sl.ID })
	return out, nil
}

// RunTransaction serializes the callback against other transactions. The map
// writes inside fn cannot fail after service-level validation, so there is no
// rollback machinery here; callers must validate before mutating.
func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}

func sortByID[T any](items []T, id func(T) string) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
