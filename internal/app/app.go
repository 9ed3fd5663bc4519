// Package app holds the storefront use-cases: validated CRUD over the
// catalog entities and the admin sign-in flow.
package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"littleforest/pkg/domain"
	"littleforest/pkg/store"
)

// Sessions issues and checks admin tokens.
type Sessions interface {
	NewSession(admin domain.AdminUser) (string, time.Time, error)
	ParseSession(ctx context.Context, token string) (store.AdminClaims, error)
	DeleteSession(ctx context.Context, token string) error
}

// Config wires the application. Store, Sessions and AdminEmails are required.
type Config struct {
	Store       store.Store
	Sessions    Sessions
	AdminEmails []string
}

// App is safe for concurrent use; it holds no per-request state.
type App struct {
	store    store.Store
	sessions Sessions
	admins   map[string]struct{}
	validate *validator.Validate
}

func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, errors.New("app: store is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("app: session issuer is required")
	}
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		if e = normalizeEmail(e); e != "" {
			admins[e] = struct{}{}
		}
	}
	if len(admins) == 0 {
		return nil, errors.New("app: admin allow-list is empty")
	}
	return &App{
		store:    cfg.Store,
		sessions: cfg.Sessions,
		admins:   admins,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// Ping reports whether the backing store answers.
func (a *App) Ping(ctx context.Context) error {
	return a.store.Ping(ctx)
}

func (a *App) check(v any) error {
	if err := a.validate.Struct(v); err != nil {
		return invalid("%v", err)
	}
	return nil
}

// checkVar validates an optional patch field against tag.
func checkVar[T any](a *App, field *T, tag string) error {
	if field == nil {
		return nil
	}
	if err := a.validate.Var(*field, tag); err != nil {
		return invalid("%v", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeEnum trims and lowercases an optional enum field so updates
// accept the same spellings as creates.
func normalizeEnum[E ~string](v *E) *E {
	if v == nil {
		return nil
	}
	e := E(strings.ToLower(strings.TrimSpace(string(*v))))
	return &e
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
