package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/agrocampo/internal/repository"
	"github.com/mamadbah2/agrocampo/pkg/clients/notify"
)

// Notifier is the subset of the alert client the inventory service needs.
type Notifier interface {
	SendAlert(ctx context.Context, alert notify.Alert) error
}

// Service owns the stock ledger: availability reads, reservations, explicit
// cancellation and activity finalization.
type Service struct {
	store    repository.Store
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time

	mu           sync.Mutex
	productLocks map[string]*sync.Mutex
}

// NewService wires a new inventory service instance. The notifier may be nil
// when no webhook is configured.
func NewService(store repository.Store, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:        store,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
		productLocks: make(map[string]*sync.Mutex),
	}
}

// productLock returns the mutex serializing check-then-write operations on
// one product's lots. Reservations lock the product, not the lot, so that the
// availability check (which spans all lots of the product) stays atomic.
func (s *Service) productLock(productID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.productLocks[productID]
	if !ok {
		lock = &sync.Mutex{}
		s.productLocks[productID] = lock
	}
	return lock
}

// lockProducts acquires the locks for all given products in sorted order and
// returns the matching unlock function. Sorted acquisition avoids deadlock
// between finalizations touching overlapping product sets.
func (s *Service) lockProducts(productIDs []string) func() {
	unique := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		unique[id] = struct{}{}
	}
	ids := make([]string, 0, len(unique))
	for id := range unique {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	locks := make([]*sync.Mutex, 0, len(ids))
	for _, id := range ids {
		lock := s.productLock(id)
		lock.Lock()
		locks = append(locks, lock)
	}

	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

func (s *Service) alert(ctx context.Context, alert notify.Alert) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendAlert(ctx, alert); err != nil {
		s.logger.Warn("failed to deliver alert", zap.String("kind", alert.Kind), zap.Error(err))
	}
}
