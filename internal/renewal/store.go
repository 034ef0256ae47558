package renewal

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Rounit002/maasaraswatilibrary/internal/shared/apperrors"
	"github.com/Rounit002/maasaraswatilibrary/pkg/logger"
)

// Store holds open renewal sessions in memory. A session exists only for
// the lifetime of its dialog; a background sweep expires abandoned ones.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
	}
}

// Put registers a new session.
func (st *Store) Put(sess *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[sess.ID] = sess
}

// Get returns the session or ErrSessionNotFound if it expired or never
// existed.
func (st *Store) Get(id uuid.UUID) (*Session, error) {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()

	if !ok || time.Now().After(sess.ExpiresAt) {
		return nil, apperrors.ErrSessionNotFound
	}
	return sess, nil
}

// Delete tears the session down (submit or cancel).
func (st *Store) Delete(id uuid.UUID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// TTL returns the configured session lifetime.
func (st *Store) TTL() time.Duration {
	return st.ttl
}

// StartSweeper expires abandoned sessions until ctx is cancelled.
func (st *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st.sweep()
			}
		}
	}()
}

func (st *Store) sweep() {
	now := time.Now()

	st.mu.Lock()
	defer st.mu.Unlock()

	for id, sess := range st.sessions {
		if now.After(sess.ExpiresAt) {
			delete(st.sessions, id)
			logger.GetDefault().Debug("expired renewal session swept", "session_id", id.String())
		}
	}
}
