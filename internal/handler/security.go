package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/kicks-pos/internal/codec"
	"github.com/xenking/kicks-pos/internal/domain/auth"
)

type operatorKey struct{}

// operatorFrom returns the operator authenticated for the request.
func operatorFrom(ctx context.Context) auth.Operator {
	op, _ := ctx.Value(operatorKey{}).(auth.Operator)
	return op
}

// operator authenticates the bearer token and runs fn with the operator
// stored in the request context.
func (h *Handler) operator(fn apiFunc) http.Handler {
	return h.authenticated("", fn)
}

// admin is operator restricted to the admin role.
func (h *Handler) admin(fn apiFunc) http.Handler {
	return h.authenticated(auth.RoleAdmin, fn)
}

func (h *Handler) authenticated(role auth.Role, fn apiFunc) http.Handler {
	return h.serve(func(w http.ResponseWriter, r *http.Request) error {
		token, ok := bearerToken(r)
		if !ok {
			return errors.Wrap(auth.ErrInvalidToken, "missing bearer token")
		}
		claims, err := h.Tokens.Verify(token)
		if err != nil {
			return err
		}
		op := auth.Operator{Username: claims.Username(), Role: claims.Role}
		if role != "" && !op.Can(role) {
			return errors.Wrapf(auth.ErrForbidden, "%s role required", role)
		}

		ctx := context.WithValue(r.Context(), operatorKey{}, op)
		ctx = zctx.Base(ctx, zctx.From(ctx).With(zap.String("operator", op.Username)))
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("pos.operator", op.Username))
		return fn(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// login exchanges a username and password for a session token.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) error {
	var username, password string
	if err := decodeBody(w, r, func(d *jx.Decoder) error {
		return decodeFields(d, map[string]func(*jx.Decoder) error{
			"username": func(d *jx.Decoder) (err error) { username, err = d.Str(); return err },
			"password": func(d *jx.Decoder) (err error) { password, err = d.Str(); return err },
		})
	}); err != nil {
		return err
	}
	if username == "" || password == "" {
		return badRequest(errors.New("username and password required"))
	}

	op, err := h.Directory.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			zctx.From(r.Context()).Warn("Login rejected", zap.String("username", username))
		}
		return err
	}
	token, exp, err := h.Tokens.Issue(*op)
	if err != nil {
		return errors.Wrap(err, "issue token")
	}

	zctx.From(r.Context()).Info("Operator signed in",
		zap.String("username", op.Username),
		zap.String("role", string(op.Role)),
	)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("token", func(e *jx.Encoder) { e.Str(token) })
			e.Field("expires_at", func(e *jx.Encoder) { codec.Time(e, exp.UTC()) })
			e.Field("username", func(e *jx.Encoder) { e.Str(op.Username) })
			e.Field("role", func(e *jx.Encoder) { e.Str(string(op.Role)) })
		})
	})
	return nil
}

// logout drops the operator's cart. The token stays valid until it expires.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) error {
	op := operatorFrom(r.Context())
	h.Sessions.Reset(op.Username)
	zctx.From(r.Context()).Info("Operator signed out", zap.String("username", op.Username))
	w.WriteHeader(http.StatusNoContent)
	return nil
}
