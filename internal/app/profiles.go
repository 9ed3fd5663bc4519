package app

import (
	"context"
	"strings"

	"littleforest/pkg/domain"
)

// ProfileInput creates a customer profile. Role is recorded as given but
// never grants access; admin rights come only from the allow-list.
type ProfileInput struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"max=200"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
}

func (a *App) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	profiles, err := a.store.ListProfiles(ctx)
	if err != nil {
		return nil, storeError("list profiles", err)
	}
	return profiles, nil
}

func (a *App) GetProfile(ctx context.Context, id string) (domain.Profile, error) {
	p, ok, err := a.store.GetProfile(ctx, id)
	if err != nil {
		return domain.Profile{}, storeError("get profile", err)
	}
	if !ok {
		return domain.Profile{}, ErrNotFound
	}
	return p, nil
}

func (a *App) GetProfileByEmail(ctx context.Context, email string) (domain.Profile, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.Profile{}, ErrNotFound
	}
	p, ok, err := a.store.GetProfileByEmail(ctx, email)
	if err != nil {
		return domain.Profile{}, storeError("get profile by email", err)
	}
	if !ok {
		return domain.Profile{}, ErrNotFound
	}
	return p, nil
}

func (a *App) CreateProfile(ctx context.Context, in ProfileInput) (domain.Profile, error) {
	in.Email = normalizeEmail(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if err := a.check(in); err != nil {
		return domain.Profile{}, err
	}
	role := domain.ProfileRole(in.Role)
	if role == "" {
		role = domain.RoleUser
	}
	p, err := a.store.CreateProfile(ctx, domain.Profile{
		Email:    in.Email,
		FullName: in.FullName,
		Role:     role,
	})
	if err != nil {
		return domain.Profile{}, storeError("create profile", err)
	}
	return p, nil
}

func (a *App) UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) (domain.Profile, error) {
	if patch.Email != nil {
		e := normalizeEmail(*patch.Email)
		patch.Email = &e
	}
	patch.FullName = trimPtr(patch.FullName)
	patch.Role = normalizeEnum(patch.Role)
	for _, err := range []error{
		checkVar(a, patch.Email, "required,email"),
		checkVar(a, patch.FullName, "max=200"),
		checkVar(a, patch.Role, "oneof=admin user"),
	} {
		if err != nil {
			return domain.Profile{}, err
		}
	}
	p, ok, err := a.store.UpdateProfile(ctx, id, patch)
	if err != nil {
		return domain.Profile{}, storeError("update profile", err)
	}
	if !ok {
		return domain.Profile{}, ErrNotFound
	}
	return p, nil
}

func (a *App) DeleteProfile(ctx context.Context, id string) error {
	if _, err := a.store.DeleteProfile(ctx, id); err != nil {
		return storeError("delete profile", err)
	}
	return nil
}
