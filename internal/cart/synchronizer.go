// Package cart keeps a local mirror of the server cart. Mutations apply
// optimistically so the caller sees them immediately, then converge to
// the server's snapshot or roll back when the backend rejects them.
package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/miku-nicol/klassyz-hair-client/internal/api"
	"github.com/miku-nicol/klassyz-hair-client/internal/domain"
	"github.com/miku-nicol/klassyz-hair-client/internal/session"
	apperrors "github.com/miku-nicol/klassyz-hair-client/pkg/errors"
	"github.com/miku-nicol/klassyz-hair-client/pkg/logger"
)

// API is the slice of the backend client the synchronizer needs.
type API interface {
	GetCart(ctx context.Context) (*domain.CartSnapshot, error)
	AddToCart(ctx context.Context, productID string, quantity int) error
	UpdateQuantity(ctx context.Context, productID, action string) (*api.UpdateQuantityResult, error)
	RemoveItem(ctx context.Context, productID string) error
	ClearCart(ctx context.Context) error
}

// TokenSource reports whether a credential is currently held.
type TokenSource interface {
	Token() (string, bool)
}

// Synchronizer mirrors the server cart. All reads and mutations go
// through one mutex so a rollback never interleaves with a refresh.
type Synchronizer struct {
	api    API
	tokens TokenSource
	logger *slog.Logger

	mu       sync.Mutex
	snapshot domain.CartSnapshot
}

// New creates a synchronizer with an empty local mirror.
func New(backend API, tokens TokenSource, log *slog.Logger) *Synchronizer {
	return &Synchronizer{api: backend, tokens: tokens, logger: log}
}

// Snapshot returns a copy of the current local mirror.
func (s *Synchronizer) Snapshot() domain.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone()
}

// Count returns the total unit count of the local mirror.
func (s *Synchronizer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.ItemCount()
}

// Refresh replaces the local mirror with the server snapshot. Without a
// credential the mirror resets to empty and no request is made. A fetch
// failure also empties the mirror; showing nothing beats showing a cart
// the server may no longer have.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	if _, ok := s.tokens.Token(); !ok {
		s.replace(domain.CartSnapshot{})
		return nil
	}

	snapshot, err := s.api.GetCart(ctx)
	if err != nil {
		s.replace(domain.CartSnapshot{})
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "cart refresh failed",
			slog.String("error", err.Error()),
		)
		return err
	}
	s.replace(*snapshot)
	return nil
}

// Add puts quantity units of a product in the cart. Without a credential
// it fails immediately with an authentication error and issues no
// request. The local increment is applied before the request and rolled
// back if the server rejects it.
func (s *Synchronizer) Add(ctx context.Context, productID string, quantity int) error {
	if _, ok := s.tokens.Token(); !ok {
		return apperrors.Unauthenticated("sign in to add items to your cart")
	}
	if quantity <= 0 {
		return apperrors.Validation("quantity must be positive", nil)
	}

	s.mu.Lock()
	before := s.snapshot.Clone()
	s.applyAddLocked(productID, quantity)
	s.mu.Unlock()

	if err := s.api.AddToCart(ctx, productID, quantity); err != nil {
		s.replace(before)
		return err
	}

	// Converge on the server's view; the optimistic line lacks pricing
	// for products not already in the cart.
	if err := s.Refresh(ctx); err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "cart resync after add failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// UpdateQuantity applies an increase or decrease action to a line. On
// success the server's replacement snapshot becomes the local mirror; on
// failure the stale mirror is kept so the user does not lose their view.
func (s *Synchronizer) UpdateQuantity(ctx context.Context, productID, action string) error {
	if _, ok := s.tokens.Token(); !ok {
		return apperrors.Unauthenticated("sign in to modify your cart")
	}

	result, err := s.api.UpdateQuantity(ctx, productID, action)
	if err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "quantity update failed",
			slog.String("product_id", productID),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		return err
	}
	s.replace(result.Data)
	return nil
}

// Remove drops a line optimistically. When the server rejects the
// removal the mirror resynchronizes from the server instead of guessing
// at the rollback.
func (s *Synchronizer) Remove(ctx context.Context, productID string) error {
	if _, ok := s.tokens.Token(); !ok {
		return apperrors.Unauthenticated("sign in to modify your cart")
	}

	s.mu.Lock()
	if i := s.snapshot.FindItem(productID); i >= 0 {
		s.snapshot.CartedItems = append(s.snapshot.CartedItems[:i], s.snapshot.CartedItems[i+1:]...)
	}
	s.mu.Unlock()

	if err := s.api.RemoveItem(ctx, productID); err != nil {
		_ = s.Refresh(ctx)
		return err
	}
	return nil
}

// Clear empties the cart optimistically, resynchronizing on failure.
func (s *Synchronizer) Clear(ctx context.Context) error {
	if _, ok := s.tokens.Token(); !ok {
		return apperrors.Unauthenticated("sign in to modify your cart")
	}

	s.replace(domain.CartSnapshot{})

	if err := s.api.ClearCart(ctx); err != nil {
		_ = s.Refresh(ctx)
		return err
	}
	return nil
}

// Watch keeps the mirror in step with credential changes: a login pulls
// the server cart, a logout empties the mirror locally. Returns when the
// context is done or the event channel closes.
func (s *Synchronizer) Watch(ctx context.Context, events <-chan session.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.LoggedIn {
				_ = s.Refresh(ctx)
			} else {
				s.replace(domain.CartSnapshot{})
			}
		}
	}
}

func (s *Synchronizer) replace(snapshot domain.CartSnapshot) {
	s.mu.Lock()
	s.snapshot = snapshot.Clone()
	s.mu.Unlock()
}

// applyAddLocked performs the optimistic increment. A product not yet in
// the cart gets a placeholder line without pricing; the follow-up refresh
// fills it in.
func (s *Synchronizer) applyAddLocked(productID string, quantity int) {
	if i := s.snapshot.FindItem(productID); i >= 0 {
		item := &s.snapshot.CartedItems[i]
		item.Quantity += quantity
		item.TotalItemPrice = item.Price * int64(item.Quantity)
		return
	}
	s.snapshot.CartedItems = append(s.snapshot.CartedItems, domain.CartItem{
		ProductID: productID,
		Quantity:  quantity,
	})
}
