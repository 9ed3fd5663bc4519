package app

import (
	"context"
	"strings"

	"littleforest/pkg/domain"
	"littleforest/pkg/store"
)

type ContentInput struct {
	Title     string  `json:"title" validate:"required,max=300"`
	Body      string  `json:"content" validate:"required"`
	Type      string  `json:"type" validate:"required,oneof=page blog announcement"`
	Status    string  `json:"status" validate:"omitempty,oneof=draft published"`
	CreatedBy *string `json:"created_by" validate:"omitempty,uuid"`
}

func (a *App) ListContent(ctx context.Context, contentType, status string) ([]domain.Content, error) {
	filter := store.ContentFilter{
		Type:   domain.ContentType(strings.ToLower(strings.TrimSpace(contentType))),
		Status: domain.ContentStatus(strings.ToLower(strings.TrimSpace(status))),
	}
	items, err := a.store.ListContent(ctx, filter)
	if err != nil {
		return nil, storeError("list content", err)
	}
	return items, nil
}

func (a *App) GetContent(ctx context.Context, id string) (domain.Content, error) {
	c, ok, err := a.store.GetContent(ctx, id)
	if err != nil {
		return domain.Content{}, storeError("get content", err)
	}
	if !ok {
		return domain.Content{}, ErrNotFound
	}
	return c, nil
}

func (a *App) CreateContent(ctx context.Context, in ContentInput) (domain.Content, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	in.CreatedBy = trimPtr(in.CreatedBy)
	if in.CreatedBy != nil && *in.CreatedBy == "" {
		in.CreatedBy = nil
	}
	if strings.TrimSpace(in.Body) == "" {
		in.Body = ""
	}
	if err := a.check(in); err != nil {
		return domain.Content{}, err
	}
	status := domain.ContentStatus(in.Status)
	if status == "" {
		status = domain.ContentDraft
	}
	c, err := a.store.CreateContent(ctx, domain.Content{
		Title:     in.Title,
		Body:      in.Body,
		Type:      domain.ContentType(in.Type),
		Status:    status,
		CreatedBy: in.CreatedBy,
	})
	if err != nil {
		return domain.Content{}, storeError("create content", err)
	}
	return c, nil
}

func (a *App) UpdateContent(ctx context.Context, id string, patch domain.ContentPatch) (domain.Content, error) {
	patch.Title = trimPtr(patch.Title)
	patch.CreatedBy = trimPtr(patch.CreatedBy)
	patch.Type = normalizeEnum(patch.Type)
	patch.Status = normalizeEnum(patch.Status)
	for _, err := range []error{
		checkVar(a, patch.Title, "required,max=300"),
		checkVar(a, patch.Body, "required"),
		checkVar(a, patch.Type, "oneof=page blog announcement"),
		checkVar(a, patch.Status, "oneof=draft published"),
		checkVar(a, patch.CreatedBy, "uuid"),
	} {
		if err != nil {
			return domain.Content{}, err
		}
	}
	c, ok, err := a.store.UpdateContent(ctx, id, patch)
	if err != nil {
		return domain.Content{}, storeError("update content", err)
	}
	if !ok {
		return domain.Content{}, ErrNotFound
	}
	return c, nil
}

func (a *App) DeleteContent(ctx context.Context, id string) error {
	if _, err := a.store.DeleteContent(ctx, id); err != nil {
		return storeError("delete content", err)
	}
	return nil
}
