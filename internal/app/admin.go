package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"littleforest/pkg/auth"
	"littleforest/pkg/domain"
	"littleforest/pkg/store"
)

// AdminIdentity is the projection of an admin returned to clients.
type AdminIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AdminSession is a successful login.
type AdminSession struct {
	User      AdminIdentity
	Token     string
	ExpiresAt time.Time
}

// IsAdminEmail reports whether email is on the allow-list.
func (a *App) IsAdminEmail(email string) bool {
	_, ok := a.admins[normalizeEmail(email)]
	return ok
}

// AdminLogin checks the allow-list before touching the store, then the
// stored bcrypt hash, and issues a signed session token.
func (a *App) AdminLogin(ctx context.Context, email, password string) (AdminSession, error) {
	email = normalizeEmail(email)
	if !a.IsAdminEmail(email) {
		return AdminSession{}, ErrUnauthorizedEmail
	}
	admin, ok, err := a.store.GetAdminUserByEmail(ctx, email)
	if err != nil {
		return AdminSession{}, storeError("get admin user", err)
	}
	if !ok || !auth.CheckPassword(password, admin.PasswordHash) {
		return AdminSession{}, ErrInvalidCredentials
	}
	token, expires, err := a.sessions.NewSession(admin)
	if err != nil {
		return AdminSession{}, fmt.Errorf("issue admin session: %w", err)
	}
	return AdminSession{
		User:      AdminIdentity{ID: admin.ID, Email: admin.Email},
		Token:     token,
		ExpiresAt: expires,
	}, nil
}

// VerifyAdmin resolves a session token to the admin it was issued for. The
// admin must still be allow-listed and still exist with the same id.
func (a *App) VerifyAdmin(ctx context.Context, token string) (AdminIdentity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return AdminIdentity{}, ErrNoToken
	}
	claims, err := a.sessions.ParseSession(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrInvalidToken) {
			return AdminIdentity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
		return AdminIdentity{}, fmt.Errorf("check admin session: %w", err)
	}
	if !a.IsAdminEmail(claims.Email) {
		return AdminIdentity{}, ErrUnauthorized
	}
	admin, ok, err := a.store.GetAdminUserByEmail(ctx, normalizeEmail(claims.Email))
	if err != nil {
		return AdminIdentity{}, storeError("get admin user", err)
	}
	if !ok || admin.ID != claims.Subject {
		return AdminIdentity{}, ErrInvalidToken
	}
	return AdminIdentity{ID: admin.ID, Email: admin.Email}, nil
}

// AdminLogout revokes token when it is a live session. Callers report
// success regardless of the returned error.
func (a *App) AdminLogout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return a.sessions.DeleteSession(ctx, token)
}

// SeedAdmin creates an admin row for an allow-listed email unless one
// exists. It reports whether a row was created.
func (a *App) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if !a.IsAdminEmail(email) {
		return false, ErrUnauthorizedEmail
	}
	if err := auth.ValidatePassword(password); err != nil {
		return false, invalid("%v", err)
	}
	if _, ok, err := a.store.GetAdminUserByEmail(ctx, email); err != nil {
		return false, storeError("get admin user", err)
	} else if ok {
		return false, nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	if _, err := a.store.CreateAdminUser(ctx, domain.AdminUser{Email: email, PasswordHash: hash}); err != nil {
		return false, storeError("create admin user", err)
	}
	return true, nil
}

// AdminEmails returns the allow-list in no particular order.
func (a *App) AdminEmails() []string {
	out := make([]string, 0, len(a.admins))
	for e := range a.admins {
		out = append(out, e)
	}
	return out
}
