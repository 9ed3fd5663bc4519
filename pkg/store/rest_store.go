package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"littleforest/pkg/domain"
	"littleforest/pkg/postgrest"
)

// RestStore implements Store against the hosted database's REST table API
// using the service-role key.
type RestStore struct {
	db *postgrest.Client
}

// NewRestStore wraps a configured table API client.
func NewRestStore(client *postgrest.Client) *RestStore {
	return &RestStore{db: client}
}

// Ping checks the REST endpoint with the anon key.
func (s *RestStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w: %w", ErrUnavailable, err)
	}
	return nil
}

// ProbeTable reads at most one row so callers can detect a missing table.
func (s *RestStore) ProbeTable(ctx context.Context, table string) error {
	if _, err := s.db.From(table).Select("*").Limit(1).Execute(ctx); err != nil {
		return restErr("probe "+table, err)
	}
	return nil
}

func restErr(op string, err error) error {
	if postgrest.IsConstraintViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

func restList[T any](ctx context.Context, q *postgrest.QueryBuilder, op string) ([]T, error) {
	data, err := q.Order("created_at", postgrest.OrderDesc).Execute(ctx)
	if err != nil {
		return nil, restErr(op, err)
	}
	return decodeRows[T](op, data)
}

func restGet[T any](ctx context.Context, s *RestStore, table, op, id string) (T, bool, error) {
	var zero, row T
	if !validID(id) {
		return zero, false, nil
	}
	data, err := s.db.From(table).Select("*").Eq("id", id).Single().Execute(ctx)
	if err != nil {
		if postgrest.IsNoRows(err) || postgrest.IsInvalidText(err) {
			return zero, false, nil
		}
		return zero, false, restErr(op, err)
	}
	rows, err := decodeRows[T](op, wrapObject(data))
	if err != nil {
		return zero, false, err
	}
	if len(rows) == 0 {
		return zero, false, nil
	}
	row = rows[0]
	return row, true, nil
}

// restByEmail finds a row by email ignoring case, matching the unique
// email semantics of the other backends.
func restByEmail[T any](ctx context.Context, s *RestStore, table, op, email string, emailOf func(T) string) (T, bool, error) {
	var zero T
	data, err := s.db.From(table).Select("*").ILike("email", postgrest.EscapeLike(email)).Limit(10).Execute(ctx)
	if err != nil {
		return zero, false, restErr(op, err)
	}
	rows, err := decodeRows[T](op, data)
	if err != nil {
		return zero, false, err
	}
	for _, row := range rows {
		if strings.EqualFold(emailOf(row), email) {
			return row, true, nil
		}
	}
	return zero, false, nil
}

func restInsert[T any](ctx context.Context, s *RestStore, table, op string, payload any) (T, error) {
	var zero T
	data, err := s.db.From(table).Insert(payload).Execute(ctx)
	if err != nil {
		return zero, restErr(op, err)
	}
	rows, err := decodeRows[T](op, data)
	if err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, fmt.Errorf("%s: %w: empty insert response", op, ErrUnavailable)
	}
	return rows[0], nil
}

// restUpdate merges patch into the row. An empty patch degrades to a read;
// touch adds updated_at for tables that carry it.
func restUpdate[T any](ctx context.Context, s *RestStore, table, op, id string, patch any, touch bool) (T, bool, error) {
	var zero T
	if !validID(id) {
		return zero, false, nil
	}
	fields, err := patchFields(patch)
	if err != nil {
		return zero, false, fmt.Errorf("%s: %w", op, err)
	}
	if len(fields) == 0 {
		return restGet[T](ctx, s, table, op, id)
	}
	if touch {
		fields["updated_at"] = time.Now().UTC()
	}
	data, err := s.db.From(table).Update(fields).Eq("id", id).Execute(ctx)
	if err != nil {
		return zero, false, restErr(op, err)
	}
	rows, err := decodeRows[T](op, data)
	if err != nil {
		return zero, false, err
	}
	if len(rows) == 0 {
		return zero, false, nil
	}
	return rows[0], true, nil
}

func restDelete(ctx context.Context, s *RestStore, table, op, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	var rows []json.RawMessage
	if err := s.db.From(table).Delete().Eq("id", id).ExecuteInto(ctx, &rows); err != nil {
		return false, restErr(op, err)
	}
	return len(rows) > 0, nil
}

var timestampColumns = []string{"created_at", "updated_at"}

// decodeRows reads a JSON array of rows. Columns declared as timestamp
// without time zone come back without an offset and are read as UTC.
func decodeRows[T any](op string, data []byte) ([]T, error) {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w: decode rows: %w", op, ErrUnavailable, err)
	}
	out := make([]T, 0, len(raw))
	for _, fields := range raw {
		for _, col := range timestampColumns {
			if v, ok := fields[col]; ok {
				fields[col] = utcTimestamp(v)
			}
		}
		b, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
		}
		var row T
		if err := json.Unmarshal(b, &row); err != nil {
			return nil, fmt.Errorf("%s: %w: decode row: %w", op, ErrUnavailable, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func wrapObject(data []byte) []byte {
	out := make([]byte, 0, len(data)+2)
	out = append(out, '[')
	out = append(out, data...)
	return append(out, ']')
}

var localTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func utcTimestamp(v json.RawMessage) json.RawMessage {
	var s string
	if err := json.Unmarshal(v, &s); err != nil || s == "" {
		return v
	}
	if _, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return v
	}
	for _, layout := range localTimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if out, err := json.Marshal(t.UTC()); err == nil {
				return out
			}
		}
	}
	return v
}

func patchFields(patch any) (map[string]any, error) {
	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("marshal patch: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal patch: %w", err)
	}
	return fields, nil
}

// profiles

func (s *RestStore) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	return restList[domain.Profile](ctx, s.db.From("profiles").Select("*"), "list profiles")
}

func (s *RestStore) GetProfile(ctx context.Context, id string) (domain.Profile, bool, error) {
	return restGet[domain.Profile](ctx, s, "profiles", "get profile", id)
}

func (s *RestStore) GetProfileByEmail(ctx context.Context, email string) (domain.Profile, bool, error) {
	return restByEmail(ctx, s, "profiles", "get profile by email", email, func(p domain.Profile) string { return p.Email })
}

func (s *RestStore) CreateProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	return restInsert[domain.Profile](ctx, s, "profiles", "create profile", p)
}

func (s *RestStore) UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) (domain.Profile, bool, error) {
	return restUpdate[domain.Profile](ctx, s, "profiles", "update profile", id, patch, true)
}

func (s *RestStore) DeleteProfile(ctx context.Context, id string) (bool, error) {
	return restDelete(ctx, s, "profiles", "delete profile", id)
}

// products

func (s *RestStore) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	q := s.db.From("products").Select("*")
	if filter.Category != "" {
		q = q.Eq("category", filter.Category)
	}
	if filter.Status != "" {
		q = q.Eq("status", filter.Status)
	}
	return restList[domain.Product](ctx, q, "list products")
}

func (s *RestStore) GetProduct(ctx context.Context, id string) (domain.Product, bool, error) {
	return restGet[domain.Product](ctx, s, "products", "get product", id)
}

func (s *RestStore) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	return restInsert[domain.Product](ctx, s, "products", "create product", p)
}

func (s *RestStore) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, bool, error) {
	return restUpdate[domain.Product](ctx, s, "products", "update product", id, patch, true)
}

func (s *RestStore) DeleteProduct(ctx context.Context, id string) (bool, error) {
	return restDelete(ctx, s, "products", "delete product", id)
}

// content

func (s *RestStore) ListContent(ctx context.Context, filter ContentFilter) ([]domain.Content, error) {
	q := s.db.From("content").Select("*")
	if filter.Type != "" {
		q = q.Eq("type", filter.Type)
	}
	if filter.Status != "" {
		q = q.Eq("status", filter.Status)
	}
	return restList[domain.Content](ctx, q, "list content")
}

func (s *RestStore) GetContent(ctx context.Context, id string) (domain.Content, bool, error) {
	return restGet[domain.Content](ctx, s, "content", "get content", id)
}

func (s *RestStore) CreateContent(ctx context.Context, c domain.Content) (domain.Content, error) {
	return restInsert[domain.Content](ctx, s, "content", "create content", c)
}

func (s *RestStore) UpdateContent(ctx context.Context, id string, patch domain.ContentPatch) (domain.Content, bool, error) {
	return restUpdate[domain.Content](ctx, s, "content", "update content", id, patch, true)
}

func (s *RestStore) DeleteContent(ctx context.Context, id string) (bool, error) {
	return restDelete(ctx, s, "content", "delete content", id)
}

// contact messages

func (s *RestStore) ListContactMessages(ctx context.Context) ([]domain.ContactMessage, error) {
	return restList[domain.ContactMessage](ctx, s.db.From("contact_messages").Select("*"), "list contact messages")
}

func (s *RestStore) GetContactMessage(ctx context.Context, id string) (domain.ContactMessage, bool, error) {
	return restGet[domain.ContactMessage](ctx, s, "contact_messages", "get contact message", id)
}

func (s *RestStore) CreateContactMessage(ctx context.Context, msg domain.ContactMessage) (domain.ContactMessage, error) {
	return restInsert[domain.ContactMessage](ctx, s, "contact_messages", "create contact message", msg)
}

func (s *RestStore) UpdateContactMessage(ctx context.Context, id string, patch domain.ContactMessagePatch) (domain.ContactMessage, bool, error) {
	return restUpdate[domain.ContactMessage](ctx, s, "contact_messages", "update contact message", id, patch, false)
}

func (s *RestStore) DeleteContactMessage(ctx context.Context, id string) (bool, error) {
	return restDelete(ctx, s, "contact_messages", "delete contact message", id)
}

// testimonials

func (s *RestStore) ListTestimonials(ctx context.Context) ([]domain.Testimonial, error) {
	return restList[domain.Testimonial](ctx, s.db.From("testimonials").Select("*"), "list testimonials")
}

func (s *RestStore) GetTestimonial(ctx context.Context, id string) (domain.Testimonial, bool, error) {
	return restGet[domain.Testimonial](ctx, s, "testimonials", "get testimonial", id)
}

func (s *RestStore) CreateTestimonial(ctx context.Context, t domain.Testimonial) (domain.Testimonial, error) {
	return restInsert[domain.Testimonial](ctx, s, "testimonials", "create testimonial", t)
}

func (s *RestStore) UpdateTestimonial(ctx context.Context, id string, patch domain.TestimonialPatch) (domain.Testimonial, bool, error) {
	return restUpdate[domain.Testimonial](ctx, s, "testimonials", "update testimonial", id, patch, true)
}

func (s *RestStore) DeleteTestimonial(ctx context.Context, id string) (bool, error) {
	return restDelete(ctx, s, "testimonials", "delete testimonial", id)
}

// admin users

// adminUserRow carries password_hash, which domain.AdminUser never serialises.
type adminUserRow struct {
	ID           string    `json:"id,omitzero"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
}

func (r adminUserRow) toDomain() domain.AdminUser {
	return domain.AdminUser{ID: r.ID, Email: r.Email, PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func (s *RestStore) ListAdminUsers(ctx context.Context) ([]domain.AdminUser, error) {
	rows, err := restList[adminUserRow](ctx, s.db.From("admin_users").Select("*"), "list admin users")
	if err != nil {
		return nil, err
	}
	out := make([]domain.AdminUser, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *RestStore) GetAdminUserByEmail(ctx context.Context, email string) (domain.AdminUser, bool, error) {
	row, ok, err := restByEmail(ctx, s, "admin_users", "get admin user", email, func(r adminUserRow) string { return r.Email })
	if err != nil || !ok {
		return domain.AdminUser{}, ok, err
	}
	return row.toDomain(), true, nil
}

func (s *RestStore) CreateAdminUser(ctx context.Context, u domain.AdminUser) (domain.AdminUser, error) {
	row, err := restInsert[adminUserRow](ctx, s, "admin_users", "create admin user", adminUserRow{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	})
	if err != nil {
		return domain.AdminUser{}, err
	}
	return row.toDomain(), nil
}
