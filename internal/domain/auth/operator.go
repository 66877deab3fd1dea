package auth

import (
	"context"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"
)

// Role is the permission level of an operator.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleSeller  Role = "seller"
	RoleCashier Role = "cashier"
)

// ParseRole converts s to a Role, defaulting to RoleSeller when empty.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case "":
		return RoleSeller, nil
	case RoleAdmin, RoleSeller, RoleCashier:
		return r, nil
	default:
		return "", errors.Errorf("unknown role %q", s)
	}
}

var (
	// ErrInvalidCredentials is returned when a username or password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned when a bearer token cannot be verified.
	ErrInvalidToken = errors.New("invalid token")
	// ErrForbidden is returned when an operator lacks the role for an action.
	ErrForbidden = errors.New("forbidden")
	// ErrOperatorNotFound is returned by repositories for unknown usernames.
	ErrOperatorNotFound = errors.New("operator not found")
)

// Operator is a store employee who can sign in.
type Operator struct {
	Username     string
	Role         Role
	PasswordHash []byte
}

// Can reports whether the operator holds role, with admin holding every role.
func (o Operator) Can(role Role) bool {
	return o.Role == RoleAdmin || o.Role == role
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	return hash, nil
}

// Repository provides lookup of operators by username.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*Operator, error)
}

// Directory authenticates operators against a Repository.
type Directory struct {
	repo Repository
}

// NewDirectory creates a Directory backed by the given Repository.
func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo}
}

// Authenticate returns the operator when password matches its stored hash.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (d *Directory) Authenticate(ctx context.Context, username, password string) (*Operator, error) {
	op, err := d.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrOperatorNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "lookup operator")
	}
	if err := bcrypt.CompareHashAndPassword(op.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return op, nil
}
