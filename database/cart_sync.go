package database

import (
	"context"
	"sync"
	"time"

	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/store"

	"go.uber.org/zap"
)

// CartSnapshots is the persistence used by CartSync.
type CartSnapshots interface {
	LoadCart(ctx context.Context, userID int64) ([]models.CartItem, error)
	SaveCart(ctx context.Context, userID int64, items []models.CartItem) error
	DeleteCart(ctx context.Context, userID int64) error
}

// CartSync mirrors the cart of the signed-in user into CartSnapshots and
// restores it on the next login. Snapshots survive logout; an emptied cart
// deletes the snapshot.
type CartSync struct {
	snapshots CartSnapshots
	cart      *store.CartStore
	sessions  *store.SessionStore
	logger    *zap.Logger
	timeout   time.Duration

	mu        sync.Mutex
	lastSaved uint64
	restoring bool
	stops     []func()
}

func NewCartSync(snapshots CartSnapshots, cart *store.CartStore, sessions *store.SessionStore, logger *zap.Logger) *CartSync {
	return &CartSync{
		snapshots: snapshots,
		cart:      cart,
		sessions:  sessions,
		logger:    logger,
		timeout:   3 * time.Second,
	}
}

// Start subscribes to both stores. Stop undoes it.
func (s *CartSync) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops = append(s.stops,
		s.cart.Subscribe(s.onCartChange),
		s.sessions.Subscribe(s.onSessionChange),
	)
}

func (s *CartSync) Stop() {
	s.mu.Lock()
	stops := s.stops
	s.stops = nil
	s.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
}

func (s *CartSync) onCartChange(snap store.CartSnapshot) {
	session, ok := s.sessions.Current()
	if !ok {
		return
	}

	s.mu.Lock()
	if s.restoring || snap.Version <= s.lastSaved {
		s.mu.Unlock()
		return
	}
	s.lastSaved = snap.Version
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if len(snap.Items) == 0 {
		if err := s.snapshots.DeleteCart(ctx, session.User.ID); err != nil {
			s.logger.Warn("Failed to delete cart snapshot", zap.Int64("user_id", session.User.ID), zap.Error(err))
		}
		return
	}
	if err := s.snapshots.SaveCart(ctx, session.User.ID, snap.Items); err != nil {
		s.logger.Warn("Failed to save cart snapshot",
			zap.Int64("user_id", session.User.ID),
			zap.Uint64("version", snap.Version),
			zap.Error(err),
		)
	}
}

func (s *CartSync) onSessionChange(state store.SessionState, session *models.Session) {
	if state != store.LoggedIn || session == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	items, err := s.snapshots.LoadCart(ctx, session.User.ID)
	if err != nil {
		s.logger.Warn("Failed to load cart snapshot", zap.Int64("user_id", session.User.ID), zap.Error(err))
		return
	}
	if len(items) == 0 {
		return
	}

	// restoring the stored cart must not write it straight back
	s.mu.Lock()
	s.restoring = true
	s.mu.Unlock()
	s.cart.Restore(items)
	s.mu.Lock()
	s.restoring = false
	s.lastSaved = s.cart.Snapshot().Version
	s.mu.Unlock()

	s.logger.Info("Cart restored", zap.Int64("user_id", session.User.ID), zap.Int("lines", len(items)))
}
