package services

import (
	"container/list"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/atticus-labs/lexrag/internal/core/domain"
	"github.com/atticus-labs/lexrag/internal/logger"
)

// DefaultSessionCapacity bounds the number of prepared documents held
// in memory. Prepared sessions carry a full chunk-embedding matrix, so
// the cache evicts least-recently-used entries beyond this limit.
const DefaultSessionCapacity = 32

// SessionStore holds prepared document sessions with LRU eviction.
// Concurrent preparations for the same identifier are coalesced via
// single-flight so only one computation runs per key.
type SessionStore struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	flight   singleflight.Group
}

type sessionEntry struct {
	key     string
	session *domain.PreparedDocument
}

// NewSessionStore creates a session store with the given capacity.
// Non-positive capacities fall back to DefaultSessionCapacity.
func NewSessionStore(capacity int) *SessionStore {
	if capacity <= 0 {
		capacity = DefaultSessionCapacity
	}
	return &SessionStore{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the prepared session for documentID, marking it as
// recently used. The second result reports whether it exists.
func (s *SessionStore) Get(documentID string) (*domain.PreparedDocument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[documentID]
	if !ok {
		return nil, false
	}
	s.order.MoveToFront(el)
	return el.Value.(*sessionEntry).session, true
}

// Put stores a prepared session, replacing any existing one for the
// same identifier and evicting the least-recently-used entry when the
// store is over capacity.
func (s *SessionStore) Put(session *domain.PreparedDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[session.DocumentID]; ok {
		el.Value.(*sessionEntry).session = session
		s.order.MoveToFront(el)
		return
	}

	el := s.order.PushFront(&sessionEntry{key: session.DocumentID, session: session})
	s.entries[session.DocumentID] = el

	for s.order.Len() > s.capacity {
		oldest := s.order.Back()
		entry := oldest.Value.(*sessionEntry)
		s.order.Remove(oldest)
		delete(s.entries, entry.key)
		logger.Debug("Session store: evicted %s", entry.key)
	}
}

// Delete removes the session for documentID, if any.
func (s *SessionStore) Delete(documentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[documentID]; ok {
		s.order.Remove(el)
		delete(s.entries, documentID)
	}
}

// Len returns the number of cached sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// prepareOnce coalesces concurrent calls for one identifier: callers
// that arrive while a preparation is in flight share its outcome
// instead of racing to overwrite the key.
func (s *SessionStore) prepareOnce(documentID string, fn func() (*domain.PreparedDocument, error)) error {
	_, err, _ := s.flight.Do(documentID, func() (any, error) {
		session, err := fn()
		if err != nil {
			// Leave any prior session for this identifier untouched.
			return nil, err
		}
		s.Put(session)
		return session, nil
	})
	return err
}
