// Package session owns the bearer credential. The store is the single
// writer of the persisted token; every other component reads it fresh
// through the TokenSource contract and hears about changes through the
// subscription channel.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/miku-nicol/klassyz-hair-client/internal/domain"
	"github.com/miku-nicol/klassyz-hair-client/internal/storage"
)

// Event announces a credential change to subscribers.
type Event struct {
	LoggedIn bool
}

// Store holds the credential and the pending cart intent in durable
// storage. The in-memory logged-in flag is updated in the same critical
// section as the storage write so a reader inside one event handler never
// observes the two out of sync.
type Store struct {
	storage storage.Store
	logger  *slog.Logger

	mu       sync.Mutex
	loggedIn bool
	subs     map[int]chan Event
	nextSub  int
}

// NewStore creates a session store over the given durable storage.
func NewStore(st storage.Store, logger *slog.Logger) *Store {
	s := &Store{
		storage: st,
		logger:  logger,
		subs:    make(map[int]chan Event),
	}
	if token, ok, err := st.Get(storage.KeyAuthToken); err == nil && ok && token != "" {
		s.loggedIn = true
	}
	return s
}

// Token returns the current credential, read fresh from storage. Validity
// is never cached; an expired token is discovered by the backend's 401.
func (s *Store) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok, err := s.storage.Get(storage.KeyAuthToken)
	if err != nil || !ok || token == "" {
		return "", false
	}
	return token, true
}

// LoggedIn reports whether a credential is currently held.
func (s *Store) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

// SetToken stores a new credential and notifies subscribers.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	if err := s.storage.Set(storage.KeyAuthToken, token); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist credential: %w", err)
	}
	s.loggedIn = true
	s.publishLocked(Event{LoggedIn: true})
	s.mu.Unlock()
	return nil
}

// Clear drops the credential. Called at logout and when the backend
// rejects the token with a 401. Clearing an already-empty store is a
// no-op and publishes nothing.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loggedIn {
		return nil
	}
	if err := s.storage.Delete(storage.KeyAuthToken); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	s.loggedIn = false
	s.publishLocked(Event{LoggedIn: false})
	return nil
}

// Subscribe registers for credential-changed events. The returned cancel
// function removes the subscription and closes the channel.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 4)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// publishLocked fans an event out to subscribers without blocking; a
// subscriber that has fallen behind misses the event and resynchronizes on
// its next refresh.
func (s *Store) publishLocked(ev Event) {
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// CapturePendingIntent records a deferred cart add across the login
// redirect.
func (s *Store) CapturePendingIntent(intent domain.PendingIntent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("encode pending intent: %w", err)
	}
	if err := s.storage.Set(storage.KeyPendingIntent, string(data)); err != nil {
		return fmt.Errorf("persist pending intent: %w", err)
	}
	return nil
}

// ConsumePendingIntent removes and returns the stored intent, if any.
// The removal happens before the caller replays it, so the intent is
// consumed exactly once regardless of replay outcome.
func (s *Store) ConsumePendingIntent() (domain.PendingIntent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.storage.Get(storage.KeyPendingIntent)
	if err != nil || !ok {
		return domain.PendingIntent{}, false
	}
	_ = s.storage.Delete(storage.KeyPendingIntent)

	var intent domain.PendingIntent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		s.logger.Warn("discarding unreadable pending intent", slog.String("error", err.Error()))
		return domain.PendingIntent{}, false
	}
	if intent.ProductID == "" || intent.Quantity <= 0 {
		return domain.PendingIntent{}, false
	}
	return intent, true
}

// DiscardPendingIntent drops any stored intent without replaying it.
func (s *Store) DiscardPendingIntent() {
	_ = s.storage.Delete(storage.KeyPendingIntent)
}

// Claims returns the token's JWT claims without verifying the signature.
// Display use only: the backend remains the authority on token validity.
func (s *Store) Claims() (jwt.MapClaims, error) {
	token, ok := s.Token()
	if !ok {
		return nil, fmt.Errorf("no credential available")
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return claims, nil
}
