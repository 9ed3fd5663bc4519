package app

import (
	"context"
	"strings"

	"littleforest/pkg/domain"
)

type TestimonialInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	Location string `json:"location" validate:"required,max=200"`
	Text     string `json:"text" validate:"required,max=5000"`
	Project  string `json:"project" validate:"max=200"`
	Rating   *int   `json:"rating" validate:"omitempty,min=1,max=5"`
}

func (a *App) ListTestimonials(ctx context.Context) ([]domain.Testimonial, error) {
	items, err := a.store.ListTestimonials(ctx)
	if err != nil {
		return nil, storeError("list testimonials", err)
	}
	return items, nil
}

func (a *App) GetTestimonial(ctx context.Context, id string) (domain.Testimonial, error) {
	t, ok, err := a.store.GetTestimonial(ctx, id)
	if err != nil {
		return domain.Testimonial{}, storeError("get testimonial", err)
	}
	if !ok {
		return domain.Testimonial{}, ErrNotFound
	}
	return t, nil
}

func (a *App) CreateTestimonial(ctx context.Context, in TestimonialInput) (domain.Testimonial, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	in.Text = strings.TrimSpace(in.Text)
	in.Project = strings.TrimSpace(in.Project)
	if err := a.check(in); err != nil {
		return domain.Testimonial{}, err
	}
	t, err := a.store.CreateTestimonial(ctx, domain.Testimonial{
		Name:     in.Name,
		Location: in.Location,
		Text:     in.Text,
		Project:  in.Project,
		Rating:   in.Rating,
	})
	if err != nil {
		return domain.Testimonial{}, storeError("create testimonial", err)
	}
	return t, nil
}

func (a *App) UpdateTestimonial(ctx context.Context, id string, patch domain.TestimonialPatch) (domain.Testimonial, error) {
	patch.Name = trimPtr(patch.Name)
	patch.Location = trimPtr(patch.Location)
	patch.Text = trimPtr(patch.Text)
	patch.Project = trimPtr(patch.Project)
	for _, err := range []error{
		checkVar(a, patch.Name, "required,max=200"),
		checkVar(a, patch.Location, "required,max=200"),
		checkVar(a, patch.Text, "required,max=5000"),
		checkVar(a, patch.Project, "max=200"),
		checkVar(a, patch.Rating, "min=1,max=5"),
	} {
		if err != nil {
			return domain.Testimonial{}, err
		}
	}
	t, ok, err := a.store.UpdateTestimonial(ctx, id, patch)
	if err != nil {
		return domain.Testimonial{}, storeError("update testimonial", err)
	}
	if !ok {
		return domain.Testimonial{}, ErrNotFound
	}
	return t, nil
}

func (a *App) DeleteTestimonial(ctx context.Context, id string) error {
	if _, err := a.store.DeleteTestimonial(ctx, id); err != nil {
		return storeError("delete testimonial", err)
	}
	return nil
}
