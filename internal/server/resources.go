package server

import (
	"context"
	"errors"
	"net/http"

	"littleforest/internal/app"
	"littleforest/internal/util"
	"littleforest/pkg/domain"
)

// resource binds one entity's use-cases to HTTP. T is the entity, In the
// create payload and P the partial-update payload.
type resource[T, In, P any] struct {
	s *Server

	// singular and plural name the entity in error messages ("Failed to get
	// products"); title is used for 404s ("Product not found").
	singular string
	plural   string
	title    string

	listFn   func(r *http.Request) ([]T, error)
	getFn    func(ctx context.Context, id string) (T, error)
	createFn func(ctx context.Context, in In) (T, error)
	updateFn func(ctx context.Context, id string, patch P) (T, error)
	removeFn func(ctx context.Context, id string) error
}

func (res resource[T, In, P]) list(w http.ResponseWriter, r *http.Request) {
	items, err := res.listFn(r)
	if err != nil {
		res.fail(w, r, err, "Failed to get "+res.plural)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (res resource[T, In, P]) get(w http.ResponseWriter, r *http.Request) {
	item, err := res.getFn(r.Context(), r.PathValue("id"))
	if err != nil {
		res.fail(w, r, err, "Failed to get "+res.singular)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (res resource[T, In, P]) create(w http.ResponseWriter, r *http.Request) {
	msg := "Failed to create " + res.singular
	var in In
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	item, err := res.createFn(r.Context(), in)
	if err != nil {
		res.fail(w, r, err, msg)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (res resource[T, In, P]) update(w http.ResponseWriter, r *http.Request) {
	msg := "Failed to update " + res.singular
	var patch P
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	item, err := res.updateFn(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		res.fail(w, r, err, msg)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// remove answers 204 whether or not the row existed.
func (res resource[T, In, P]) remove(w http.ResponseWriter, r *http.Request) {
	if err := res.removeFn(r.Context(), r.PathValue("id")); err != nil {
		res.fail(w, r, err, "Failed to delete "+res.singular)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps an app error onto a status. Storage faults are logged in full
// and answered with msg only.
func (res resource[T, In, P]) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, res.title+" not found")
	case errors.Is(err, app.ErrValidation):
		util.LoggerFromContext(r.Context()).Info("request rejected", "entity", res.singular, "err", err)
		writeError(w, http.StatusBadRequest, msg)
	default:
		util.LoggerFromContext(r.Context()).Error("storage failure", "entity", res.singular, "err", err)
		res.s.metrics.StoreError(res.singular)
		writeError(w, http.StatusInternalServerError, msg)
	}
}

func (s *Server) productResource() resource[domain.Product, app.ProductInput, domain.ProductPatch] {
	return resource[domain.Product, app.ProductInput, domain.ProductPatch]{
		s:        s,
		singular: "product",
		plural:   "products",
		title:    "Product",
		listFn: func(r *http.Request) ([]domain.Product, error) {
			q := r.URL.Query()
			return s.app.ListProducts(r.Context(), q.Get("category"), q.Get("status"))
		},
		getFn:    s.app.GetProduct,
		createFn: s.app.CreateProduct,
		updateFn: s.app.UpdateProduct,
		removeFn: s.app.DeleteProduct,
	}
}

func (s *Server) contentResource() resource[domain.Content, app.ContentInput, domain.ContentPatch] {
	return resource[domain.Content, app.ContentInput, domain.ContentPatch]{
		s:        s,
		singular: "content",
		plural:   "content",
		title:    "Content",
		listFn: func(r *http.Request) ([]domain.Content, error) {
			q := r.URL.Query()
			return s.app.ListContent(r.Context(), q.Get("type"), q.Get("status"))
		},
		getFn:    s.app.GetContent,
		createFn: s.app.CreateContent,
		updateFn: s.app.UpdateContent,
		removeFn: s.app.DeleteContent,
	}
}

func (s *Server) messageResource() resource[domain.ContactMessage, app.ContactMessageInput, domain.ContactMessagePatch] {
	return resource[domain.ContactMessage, app.ContactMessageInput, domain.ContactMessagePatch]{
		s:        s,
		singular: "contact message",
		plural:   "contact messages",
		title:    "Message",
		listFn: func(r *http.Request) ([]domain.ContactMessage, error) {
			return s.app.ListContactMessages(r.Context())
		},
		getFn:    s.app.GetContactMessage,
		createFn: s.app.CreateContactMessage,
		updateFn: s.app.UpdateContactMessage,
		removeFn: s.app.DeleteContactMessage,
	}
}

func (s *Server) testimonialResource() resource[domain.Testimonial, app.TestimonialInput, domain.TestimonialPatch] {
	return resource[domain.Testimonial, app.TestimonialInput, domain.TestimonialPatch]{
		s:        s,
		singular: "testimonial",
		plural:   "testimonials",
		title:    "Testimonial",
		listFn: func(r *http.Request) ([]domain.Testimonial, error) {
			return s.app.ListTestimonials(r.Context())
		},
		getFn:    s.app.GetTestimonial,
		createFn: s.app.CreateTestimonial,
		updateFn: s.app.UpdateTestimonial,
		removeFn: s.app.DeleteTestimonial,
	}
}

func (s *Server) profileResource() resource[domain.Profile, app.ProfileInput, domain.ProfilePatch] {
	return resource[domain.Profile, app.ProfileInput, domain.ProfilePatch]{
		s:        s,
		singular: "profile",
		plural:   "profiles",
		title:    "Profile",
		listFn: func(r *http.Request) ([]domain.Profile, error) {
			return s.app.ListProfiles(r.Context())
		},
		getFn:    s.app.GetProfile,
		createFn: s.app.CreateProfile,
		updateFn: s.app.UpdateProfile,
		removeFn: s.app.DeleteProfile,
	}
}

func (s *Server) handleProfileByEmail(w http.ResponseWriter, r *http.Request) {
	p, err := s.app.GetProfileByEmail(r.Context(), r.PathValue("email"))
	if err != nil {
		s.profileResource().fail(w, r, err, "Failed to get profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
