package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/alexedwards/scs/v2/memstore"
)

// MemoryStore keeps sessions in process memory. Sessions are lost on restart
// and are not shared between instances.
type MemoryStore struct {
	ttl   time.Duration
	now   func() time.Time
	items *memstore.MemStore
}

// NewMemoryStore returns an in-process session store. Expired sessions are
// swept every minute.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemoryStore{
		ttl:   ttl,
		now:   time.Now,
		items: memstore.New(),
	}
}

func (s *MemoryStore) Create(_ context.Context, userID uint) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", err
	}
	val := []byte(strconv.FormatUint(uint64(userID), 10))
	if err := s.items.Commit(token, val, s.now().Add(s.ttl)); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *MemoryStore) UserID(_ context.Context, token string) (uint, bool, error) {
	if token == "" {
		return 0, false, nil
	}
	val, found, err := s.items.Find(token)
	if err != nil {
		return 0, false, fmt.Errorf("load session: %w", err)
	}
	if !found {
		return 0, false, nil
	}
	id, err := strconv.ParseUint(string(val), 10, 64)
	if err != nil || id == 0 {
		return 0, false, nil
	}
	return uint(id), true, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	return s.items.Delete(token)
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close stops the background sweep.
func (s *MemoryStore) Close() {
	s.items.StopCleanup()
}
