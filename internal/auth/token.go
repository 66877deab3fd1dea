// Package auth issues and verifies operator session tokens.
package auth

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/xenking/kicks-pos/internal/domain/auth"
)

const issuerName = "kicks-pos"

// Claims are the JWT claims of an operator session.
type Claims struct {
	jwt.RegisteredClaims
	Role domainauth.Role `json:"role"`
}

// Username returns the operator the token was issued to.
func (c *Claims) Username() string {
	return c.Subject
}

// Issuer signs HS256 session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer signing with secret. Tokens expire after ttl.
func NewIssuer(secret []byte, ttl time.Duration) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret is empty")
	}
	if ttl <= 0 {
		return nil, errors.Errorf("token ttl must be positive, got %s", ttl)
	}
	return &Issuer{secret: secret, ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token for op and its expiry.
func (i *Issuer) Issue(op domainauth.Operator) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   op.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: op.Role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign token")
	}
	return signed, exp, nil
}

// Verify parses token and checks its signature, issuer and expiry. Any
// failure is reported as domainauth.ErrInvalidToken.
func (i *Issuer) Verify(token string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, errors.Wrap(domainauth.ErrInvalidToken, err.Error())
	}
	if claims.Subject == "" {
		return nil, errors.Wrap(domainauth.ErrInvalidToken, "token has no subject")
	}
	if _, err := domainauth.ParseRole(string(claims.Role)); err != nil || claims.Role == "" {
		return nil, errors.Wrap(domainauth.ErrInvalidToken, "token has no valid role")
	}
	return &claims, nil
}
