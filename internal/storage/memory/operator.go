package memory

import (
	"context"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/kicks-pos/internal/domain/auth"
)

var _ auth.Repository = (*OperatorStore)(nil)

// OperatorStore holds the operators allowed to sign in. It is read-only
// after construction. Usernames are matched case-insensitively.
type OperatorStore struct {
	operators map[string]auth.Operator
}

// NewOperatorStore returns an OperatorStore seeded with operators.
func NewOperatorStore(operators ...auth.Operator) (*OperatorStore, error) {
	s := &OperatorStore{operators: make(map[string]auth.Operator, len(operators))}
	for _, op := range operators {
		key := strings.ToLower(op.Username)
		if key == "" {
			return nil, errors.New("operator username required")
		}
		if _, ok := s.operators[key]; ok {
			return nil, errors.Errorf("duplicate operator %q", op.Username)
		}
		s.operators[key] = op
	}
	return s, nil
}

// FindByUsername returns the operator with the given username.
func (s *OperatorStore) FindByUsername(_ context.Context, username string) (*auth.Operator, error) {
	op, ok := s.operators[strings.ToLower(username)]
	if !ok {
		return nil, auth.ErrOperatorNotFound
	}
	return &op, nil
}

// Count returns the number of operators.
func (s *OperatorStore) Count(_ context.Context) (int, error) {
	return len(s.operators), nil
}
