package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"littleforest/pkg/domain"
)

// memTable keeps rows by id and remembers insertion order.
type memTable[T any] struct {
	rows  map[string]T
	order []string
}

func newMemTable[T any]() *memTable[T] {
	return &memTable[T]{rows: make(map[string]T)}
}

// list returns matching rows newest first.
func (t *memTable[T]) list(keep func(T) bool) []T {
	out := make([]T, 0, len(t.rows))
	for i := len(t.order) - 1; i >= 0; i-- {
		row, ok := t.rows[t.order[i]]
		if !ok {
			continue
		}
		if keep == nil || keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func (t *memTable[T]) get(id string) (T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *memTable[T]) put(id string, row T) {
	if _, exists := t.rows[id]; !exists {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *memTable[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// MemoryStore keeps every table in-process. It backs tests and the
// "memory" storage backend used for local development.
type MemoryStore struct {
	mu           sync.RWMutex
	profiles     *memTable[domain.Profile]
	products     *memTable[domain.Product]
	content      *memTable[domain.Content]
	messages     *memTable[domain.ContactMessage]
	testimonials *memTable[domain.Testimonial]
	admins       *memTable[domain.AdminUser]
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:     newMemTable[domain.Profile](),
		products:     newMemTable[domain.Product](),
		content:      newMemTable[domain.Content](),
		messages:     newMemTable[domain.ContactMessage](),
		testimonials: newMemTable[domain.Testimonial](),
		admins:       newMemTable[domain.AdminUser](),
	}
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func now() time.Time { return time.Now().UTC() }

func emailTaken[T any](t *memTable[T], email, exceptID string, emailOf func(T) (string, string)) bool {
	for _, row := range t.rows {
		id, e := emailOf(row)
		if id != exceptID && strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

func profileEmail(p domain.Profile) (string, string) { return p.ID, p.Email }

// profiles

func (m *MemoryStore) ListProfiles(context.Context) ([]domain.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profiles.list(nil), nil
}

func (m *MemoryStore) GetProfile(_ context.Context, id string) (domain.Profile, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles.get(id)
	return p, ok, nil
}

func (m *MemoryStore) GetProfileByEmail(_ context.Context, email string) (domain.Profile, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.profiles.rows {
		if strings.EqualFold(p.Email, email) {
			return p, true, nil
		}
	}
	return domain.Profile{}, false, nil
}

func (m *MemoryStore) CreateProfile(_ context.Context, p domain.Profile) (domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if emailTaken(m.profiles, p.Email, "", profileEmail) {
		return domain.Profile{}, fmt.Errorf("%w: profile email %q exists", ErrConflict, p.Email)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	m.profiles.put(p.ID, p)
	return p, nil
}

func (m *MemoryStore) UpdateProfile(_ context.Context, id string, patch domain.ProfilePatch) (domain.Profile, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles.get(id)
	if !ok {
		return domain.Profile{}, false, nil
	}
	if patch.Email != nil && emailTaken(m.profiles, *patch.Email, id, profileEmail) {
		return domain.Profile{}, false, fmt.Errorf("%w: profile email %q exists", ErrConflict, *patch.Email)
	}
	applyProfilePatch(&p, patch)
	p.UpdatedAt = now()
	m.profiles.put(id, p)
	return p, true, nil
}

func (m *MemoryStore) DeleteProfile(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles.remove(id), nil
}

// products

func (m *MemoryStore) ListProducts(_ context.Context, filter ProductFilter) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.products.list(func(p domain.Product) bool {
		if filter.Category != "" && p.Category != filter.Category {
			return false
		}
		return filter.Status == "" || p.Status == filter.Status
	}), nil
}

func (m *MemoryStore) GetProduct(_ context.Context, id string) (domain.Product, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products.get(id)
	return p, ok, nil
}

func (m *MemoryStore) CreateProduct(_ context.Context, p domain.Product) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	m.products.put(p.ID, p)
	return p, nil
}

func (m *MemoryStore) UpdateProduct(_ context.Context, id string, patch domain.ProductPatch) (domain.Product, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products.get(id)
	if !ok {
		return domain.Product{}, false, nil
	}
	applyProductPatch(&p, patch)
	p.UpdatedAt = now()
	m.products.put(id, p)
	return p, true, nil
}

func (m *MemoryStore) DeleteProduct(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products.remove(id), nil
}

// content

func (m *MemoryStore) ListContent(_ context.Context, filter ContentFilter) ([]domain.Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.content.list(func(c domain.Content) bool {
		if filter.Type != "" && c.Type != filter.Type {
			return false
		}
		return filter.Status == "" || c.Status == filter.Status
	}), nil
}

func (m *MemoryStore) GetContent(_ context.Context, id string) (domain.Content, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.content.get(id)
	return c, ok, nil
}

func (m *MemoryStore) CreateContent(_ context.Context, c domain.Content) (domain.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	m.content.put(c.ID, c)
	return c, nil
}

func (m *MemoryStore) UpdateContent(_ context.Context, id string, patch domain.ContentPatch) (domain.Content, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.content.get(id)
	if !ok {
		return domain.Content{}, false, nil
	}
	applyContentPatch(&c, patch)
	c.UpdatedAt = now()
	m.content.put(id, c)
	return c, true, nil
}

func (m *MemoryStore) DeleteContent(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content.remove(id), nil
}

// contact messages

func (m *MemoryStore) ListContactMessages(context.Context) ([]domain.ContactMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.messages.list(nil), nil
}

func (m *MemoryStore) GetContactMessage(_ context.Context, id string) (domain.ContactMessage, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msg, ok := m.messages.get(id)
	return msg, ok, nil
}

func (m *MemoryStore) CreateContactMessage(_ context.Context, msg domain.ContactMessage) (domain.ContactMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.CreatedAt = now()
	m.messages.put(msg.ID, msg)
	return msg, nil
}

func (m *MemoryStore) UpdateContactMessage(_ context.Context, id string, patch domain.ContactMessagePatch) (domain.ContactMessage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages.get(id)
	if !ok {
		return domain.ContactMessage{}, false, nil
	}
	applyContactMessagePatch(&msg, patch)
	m.messages.put(id, msg)
	return msg, true, nil
}

func (m *MemoryStore) DeleteContactMessage(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.messages.remove(id), nil
}

// testimonials

func (m *MemoryStore) ListTestimonials(context.Context) ([]domain.Testimonial, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.testimonials.list(nil), nil
}

func (m *MemoryStore) GetTestimonial(_ context.Context, id string) (domain.Testimonial, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.testimonials.get(id)
	return t, ok, nil
}

func (m *MemoryStore) CreateTestimonial(_ context.Context, t domain.Testimonial) (domain.Testimonial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt
	m.testimonials.put(t.ID, t)
	return t, nil
}

func (m *MemoryStore) UpdateTestimonial(_ context.Context, id string, patch domain.TestimonialPatch) (domain.Testimonial, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.testimonials.get(id)
	if !ok {
		return domain.Testimonial{}, false, nil
	}
	applyTestimonialPatch(&t, patch)
	t.UpdatedAt = now()
	m.testimonials.put(id, t)
	return t, true, nil
}

func (m *MemoryStore) DeleteTestimonial(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.testimonials.remove(id), nil
}

// admin users

func (m *MemoryStore) ListAdminUsers(context.Context) ([]domain.AdminUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.admins.list(nil), nil
}

func (m *MemoryStore) GetAdminUserByEmail(_ context.Context, email string) (domain.AdminUser, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.admins.rows {
		if strings.EqualFold(u.Email, email) {
			return u, true, nil
		}
	}
	return domain.AdminUser{}, false, nil
}

func (m *MemoryStore) CreateAdminUser(_ context.Context, u domain.AdminUser) (domain.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if emailTaken(m.admins, u.Email, "", func(a domain.AdminUser) (string, string) { return a.ID, a.Email }) {
		return domain.AdminUser{}, fmt.Errorf("%w: admin email %q exists", ErrConflict, u.Email)
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	m.admins.put(u.ID, u)
	return u, nil
}
