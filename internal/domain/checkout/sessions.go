package checkout

import (
	"strings"
	"sync"
)

// Sessions keeps one cart per operator. Calls for the same operator are
// serialized; different operators proceed in parallel.
type Sessions struct {
	mu    sync.Mutex
	carts map[string]*session
}

type session struct {
	mu   sync.Mutex
	cart Cart
}

// NewSessions returns an empty session registry.
func NewSessions() *Sessions {
	return &Sessions{carts: make(map[string]*session)}
}

// With runs fn against the operator's cart, creating the cart on first use.
func (s *Sessions) With(operator string, fn func(*Cart) error) error {
	sess := s.get(operator)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(&sess.cart)
}

// Reset drops the operator's cart.
func (s *Sessions) Reset(operator string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, strings.ToLower(operator))
}

func (s *Sessions) get(operator string) *session {
	key := strings.ToLower(operator)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.carts[key]
	if !ok {
		sess = &session{}
		s.carts[key] = sess
	}
	return sess
}
