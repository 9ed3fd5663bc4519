package store

import (
	"context"
	"errors"

	"littleforest/pkg/domain"
)

var (
	// ErrConflict wraps create/update failures caused by a database
	// constraint (duplicate email, bad enum, malformed uuid).
	ErrConflict = errors.New("store: constraint violation")
	// ErrUnavailable wraps transport and service faults.
	ErrUnavailable = errors.New("store: unavailable")
)

// Lookups return (zero, false, nil) when the row does not exist. Deletes
// report whether a row was removed; deleting a missing id is not an error.

type ProfileRepository interface {
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
	GetProfile(ctx context.Context, id string) (domain.Profile, bool, error)
	GetProfileByEmail(ctx context.Context, email string) (domain.Profile, bool, error)
	CreateProfile(ctx context.Context, p domain.Profile) (domain.Profile, error)
	UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) (domain.Profile, bool, error)
	DeleteProfile(ctx context.Context, id string) (bool, error)
}

// ProductFilter narrows ListProducts; empty fields match everything.
type ProductFilter struct {
	Category string
	Status   domain.ProductStatus
}

type ProductRepository interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, bool, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, bool, error)
	DeleteProduct(ctx context.Context, id string) (bool, error)
}

// ContentFilter narrows ListContent; empty fields match everything.
type ContentFilter struct {
	Type   domain.ContentType
	Status domain.ContentStatus
}

type ContentRepository interface {
	ListContent(ctx context.Context, filter ContentFilter) ([]domain.Content, error)
	GetContent(ctx context.Context, id string) (domain.Content, bool, error)
	CreateContent(ctx context.Context, c domain.Content) (domain.Content, error)
	UpdateContent(ctx context.Context, id string, patch domain.ContentPatch) (domain.Content, bool, error)
	DeleteContent(ctx context.Context, id string) (bool, error)
}

type ContactMessageRepository interface {
	ListContactMessages(ctx context.Context) ([]domain.ContactMessage, error)
	GetContactMessage(ctx context.Context, id string) (domain.ContactMessage, bool, error)
	CreateContactMessage(ctx context.Context, m domain.ContactMessage) (domain.ContactMessage, error)
	UpdateContactMessage(ctx context.Context, id string, patch domain.ContactMessagePatch) (domain.ContactMessage, bool, error)
	DeleteContactMessage(ctx context.Context, id string) (bool, error)
}

type TestimonialRepository interface {
	ListTestimonials(ctx context.Context) ([]domain.Testimonial, error)
	GetTestimonial(ctx context.Context, id string) (domain.Testimonial, bool, error)
	CreateTestimonial(ctx context.Context, t domain.Testimonial) (domain.Testimonial, error)
	UpdateTestimonial(ctx context.Context, id string, patch domain.TestimonialPatch) (domain.Testimonial, bool, error)
	DeleteTestimonial(ctx context.Context, id string) (bool, error)
}

type AdminUserRepository interface {
	ListAdminUsers(ctx context.Context) ([]domain.AdminUser, error)
	GetAdminUserByEmail(ctx context.Context, email string) (domain.AdminUser, bool, error)
	CreateAdminUser(ctx context.Context, u domain.AdminUser) (domain.AdminUser, error)
}

// Store is the single persistence abstraction; every backend implements all
// six repositories against one backing database.
type Store interface {
	ProfileRepository
	ProductRepository
	ContentRepository
	ContactMessageRepository
	TestimonialRepository
	AdminUserRepository

	// Ping reports whether the backing database is reachable.
	Ping(ctx context.Context) error
}

// Tables lists the backing tables in dependency order.
var Tables = []string{"profiles", "products", "content", "contact_messages", "testimonials", "admin_users"}
