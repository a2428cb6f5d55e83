package session

import (
	"context"
	"log/slog"

	"github.com/miku-nicol/klassyz-hair-client/internal/api"
	"github.com/miku-nicol/klassyz-hair-client/pkg/logger"
)

// Authenticator is the slice of the backend client the manager needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, input api.RegisterInput) (string, error)
}

// CartAdder replays a deferred cart add after authentication succeeds.
type CartAdder interface {
	Add(ctx context.Context, productID string, quantity int) error
}

// Manager drives the login, registration and logout flows and owns the
// pending-intent replay that stitches a pre-login add back into the cart.
type Manager struct {
	auth   Authenticator
	store  *Store
	cart   CartAdder
	logger *slog.Logger
}

// NewManager wires the session flows. cart may be nil when no replay
// target exists.
func NewManager(auth Authenticator, store *Store, cart CartAdder, log *slog.Logger) *Manager {
	return &Manager{auth: auth, store: store, cart: cart, logger: log}
}

// Login exchanges credentials for a token, stores it and replays any
// pending cart intent. An authentication failure discards the intent
// rather than holding it for a retry the user may never make.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	token, err := m.auth.Login(ctx, email, password)
	if err != nil {
		m.store.DiscardPendingIntent()
		return err
	}
	if err := m.store.SetToken(token); err != nil {
		return err
	}
	m.replayPendingIntent(ctx)
	return nil
}

// Register creates an account, stores the issued token and replays any
// pending cart intent, mirroring Login.
func (m *Manager) Register(ctx context.Context, input api.RegisterInput) error {
	token, err := m.auth.Register(ctx, input)
	if err != nil {
		m.store.DiscardPendingIntent()
		return err
	}
	if err := m.store.SetToken(token); err != nil {
		return err
	}
	m.replayPendingIntent(ctx)
	return nil
}

// Logout drops the credential. The server keeps no session state, so
// there is nothing to revoke remotely.
func (m *Manager) Logout() error {
	return m.store.Clear()
}

// replayPendingIntent performs the deferred cart add at most once. The
// intent is consumed before the add is attempted; a replay failure is
// logged and the intent stays gone.
func (m *Manager) replayPendingIntent(ctx context.Context) {
	intent, ok := m.store.ConsumePendingIntent()
	if !ok || m.cart == nil {
		return
	}

	log := logger.WithContext(ctx, m.logger)
	if err := m.cart.Add(ctx, intent.ProductID, intent.Quantity); err != nil {
		log.WarnContext(ctx, "pending cart intent replay failed",
			slog.String("product_id", intent.ProductID),
			slog.String("error", err.Error()),
		)
		return
	}
	log.InfoContext(ctx, "replayed pending cart intent",
		slog.String("product_id", intent.ProductID),
		slog.Int("quantity", intent.Quantity),
	)
}
