package app

import (
	"context"
	"strings"

	"littleforest/pkg/domain"
)

type ContactMessageInput struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=50"`
	Message string `json:"message" validate:"required,max=10000"`
}

func (a *App) ListContactMessages(ctx context.Context) ([]domain.ContactMessage, error) {
	msgs, err := a.store.ListContactMessages(ctx)
	if err != nil {
		return nil, storeError("list contact messages", err)
	}
	return msgs, nil
}

func (a *App) GetContactMessage(ctx context.Context, id string) (domain.ContactMessage, error) {
	m, ok, err := a.store.GetContactMessage(ctx, id)
	if err != nil {
		return domain.ContactMessage{}, storeError("get contact message", err)
	}
	if !ok {
		return domain.ContactMessage{}, ErrNotFound
	}
	return m, nil
}

// CreateContactMessage stores a message from the public form. Status always
// starts as new.
func (a *App) CreateContactMessage(ctx context.Context, in ContactMessageInput) (domain.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Message = strings.TrimSpace(in.Message)
	if err := a.check(in); err != nil {
		return domain.ContactMessage{}, err
	}
	m, err := a.store.CreateContactMessage(ctx, domain.ContactMessage{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Message: in.Message,
		Status:  domain.MessageNew,
	})
	if err != nil {
		return domain.ContactMessage{}, storeError("create contact message", err)
	}
	return m, nil
}

func (a *App) UpdateContactMessage(ctx context.Context, id string, patch domain.ContactMessagePatch) (domain.ContactMessage, error) {
	patch.Name = trimPtr(patch.Name)
	patch.Status = normalizeEnum(patch.Status)
	if patch.Email != nil {
		e := normalizeEmail(*patch.Email)
		patch.Email = &e
	}
	for _, err := range []error{
		checkVar(a, patch.Name, "required,max=200"),
		checkVar(a, patch.Email, "required,email"),
		checkVar(a, patch.Phone, "max=50"),
		checkVar(a, patch.Message, "required,max=10000"),
		checkVar(a, patch.Status, "oneof=new read replied"),
	} {
		if err != nil {
			return domain.ContactMessage{}, err
		}
	}
	m, ok, err := a.store.UpdateContactMessage(ctx, id, patch)
	if err != nil {
		return domain.ContactMessage{}, storeError("update contact message", err)
	}
	if !ok {
		return domain.ContactMessage{}, ErrNotFound
	}
	return m, nil
}

func (a *App) DeleteContactMessage(ctx context.Context, id string) error {
	if _, err := a.store.DeleteContactMessage(ctx, id); err != nil {
		return storeError("delete contact message", err)
	}
	return nil
}
