package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"littleforest/pkg/auth"
	"littleforest/pkg/domain"
	"littleforest/pkg/store"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testAdmin    = "admin@littleforest.co.ke"
	testPassword = "Seedl1ngs!2025"
)

// countingStore records admin lookups and can be told to fail.
type countingStore struct {
	store.Store
	adminLookups int
	fail         error
}

func (s *countingStore) GetAdminUserByEmail(ctx context.Context, email string) (domain.AdminUser, bool, error) {
	s.adminLookups++
	return s.Store.GetAdminUserByEmail(ctx, email)
}

func (s *countingStore) ListProducts(ctx context.Context, f store.ProductFilter) ([]domain.Product, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	return s.Store.ListProducts(ctx, f)
}

func (s *countingStore) CreateProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	if s.fail != nil {
		return domain.Profile{}, s.fail
	}
	return s.Store.CreateProfile(ctx, p)
}

func newSessions(t *testing.T) *store.JWTSessionStore {
	t.Helper()
	s, err := store.NewJWTSessionStore(testSecret, time.Hour, store.NewMemoryTokenRevoker(), store.JWTOptions{})
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	return s
}

func newTestApp(t *testing.T, admins ...string) (*App, *countingStore) {
	t.Helper()
	if len(admins) == 0 {
		admins = []string{testAdmin}
	}
	st := &countingStore{Store: store.NewMemoryStore()}
	a, err := New(Config{Store: st, Sessions: newSessions(t), AdminEmails: admins})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, st
}

func seedAdmin(t *testing.T, st store.Store, email string) domain.AdminUser {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	admin, err := st.CreateAdminUser(context.Background(), domain.AdminUser{Email: email, PasswordHash: hash})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return admin
}

func TestNewRequiresAllowList(t *testing.T) {
	_, err := New(Config{Store: store.NewMemoryStore(), Sessions: newSessions(t), AdminEmails: []string{" "}})
	if err == nil {
		t.Fatalf("expected error for empty allow-list")
	}
}

func TestParseProductStatus(t *testing.T) {
	cases := map[string]domain.ProductStatus{
		"":             domain.ProductActive,
		"active":       domain.ProductActive,
		"Available":    domain.ProductActive,
		" in stock ":   domain.ProductActive,
		"limited":      domain.ProductLimited,
		"Out of Stock": domain.ProductOutOfStock,
		"out-of-stock": domain.ProductOutOfStock,
	}
	for in, want := range cases {
		got, err := ParseProductStatus(in)
		if err != nil || got != want {
			t.Fatalf("ParseProductStatus(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseProductStatus("discontinued"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateProductNormalizesAndValidates(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	p, err := a.CreateProduct(ctx, ProductInput{Name: " Mukau Seedling ", Category: "Indigenous Trees", Price: "KSh 250", Status: "Available"})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if p.Name != "Mukau Seedling" || p.Status != domain.ProductActive || p.ID == "" {
		t.Fatalf("unexpected product: %+v", p)
	}

	for name, in := range map[string]ProductInput{
		"missing name":   {Category: "Trees", Price: "KSh 1"},
		"blank price":    {Name: "Grevillea", Category: "Trees", Price: "  "},
		"bad status":     {Name: "Grevillea", Category: "Trees", Price: "KSh 1", Status: "gone"},
		"negative stock": {Name: "Grevillea", Category: "Trees", Price: "KSh 1", StockQuantity: -1},
	} {
		if _, err := a.CreateProduct(ctx, in); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", name, err)
		}
	}
	products, _ := a.ListProducts(ctx, "", "")
	if len(products) != 1 {
		t.Fatalf("invalid products must not be persisted, have %d", len(products))
	}
}

func TestUpdateProductPartialAndNotFound(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()
	p, err := a.CreateProduct(ctx, ProductInput{Name: "Croton", Category: "Ornamentals", Price: "KSh 150"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	status := domain.ProductStatus("Out of stock")
	updated, err := a.UpdateProduct(ctx, p.ID, domain.ProductPatch{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.ProductOutOfStock || updated.Price != "KSh 150" {
		t.Fatalf("unexpected update: %+v", updated)
	}
	empty := ""
	if _, err := a.UpdateProduct(ctx, p.ID, domain.ProductPatch{Name: &empty}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected blank name to be rejected, got %v", err)
	}
	if _, err := a.UpdateProduct(ctx, "missing", domain.ProductPatch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := a.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := a.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("second delete must succeed: %v", err)
	}
	if _, err := a.GetProduct(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestContactMessageRequiresMessage(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()
	if _, err := a.CreateContactMessage(ctx, ContactMessageInput{Name: "Otieno", Email: "otieno@example.com"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := a.CreateContactMessage(ctx, ContactMessageInput{Name: "Otieno", Email: "not-an-email", Message: "hi"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for bad email, got %v", err)
	}
	msgs, _ := a.ListContactMessages(ctx)
	if len(msgs) != 0 {
		t.Fatalf("no message should be stored, have %d", len(msgs))
	}
	m, err := a.CreateContactMessage(ctx, ContactMessageInput{Name: "Otieno", Email: "Otieno@Example.com", Message: "Do you deliver?"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.Status != domain.MessageNew || m.Email != "otieno@example.com" {
		t.Fatalf("unexpected message: %+v", m)
	}
}

func TestContentDefaultsAndPatchValidation(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()
	c, err := a.CreateContent(ctx, ContentInput{Title: "About", Body: "Family nursery in Limuru", Type: "Page"})
	if err != nil {
		t.Fatalf("create content: %v", err)
	}
	if c.Status != domain.ContentDraft || c.Type != domain.ContentPage {
		t.Fatalf("unexpected content: %+v", c)
	}
	if _, err := a.CreateContent(ctx, ContentInput{Title: "x", Body: "y", Type: "newsletter"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected bad type rejected, got %v", err)
	}
	bad := domain.ContentStatus("archived")
	if _, err := a.UpdateContent(ctx, c.ID, domain.ContentPatch{Status: &bad}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected bad status rejected, got %v", err)
	}
	published, err := a.ListContent(ctx, "", "published")
	if err != nil || len(published) != 0 {
		t.Fatalf("published filter = %v, %v", published, err)
	}
}

func TestUpdateAcceptsCreateSpellings(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()
	c, err := a.CreateContent(ctx, ContentInput{Title: "Planting season", Body: "Long rains", Type: "Blog"})
	if err != nil {
		t.Fatalf("create content: %v", err)
	}
	typ, status := domain.ContentType(" Announcement "), domain.ContentStatus("Published")
	updated, err := a.UpdateContent(ctx, c.ID, domain.ContentPatch{Type: &typ, Status: &status})
	if err != nil {
		t.Fatalf("update content: %v", err)
	}
	if updated.Type != domain.ContentAnnouncement || updated.Status != domain.ContentPublished {
		t.Fatalf("unexpected content: %+v", updated)
	}

	p, err := a.CreateProfile(ctx, ProfileInput{Email: "wanjiru@example.com", Role: "User"})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	role := domain.ProfileRole("ADMIN")
	gotProfile, err := a.UpdateProfile(ctx, p.ID, domain.ProfilePatch{Role: &role})
	if err != nil || gotProfile.Role != domain.RoleAdmin {
		t.Fatalf("update profile role: %+v %v", gotProfile, err)
	}

	m, err := a.CreateContactMessage(ctx, ContactMessageInput{Name: "Otieno", Email: "otieno@example.com", Message: "Do you deliver?"})
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	read := domain.MessageStatus("Read")
	gotMsg, err := a.UpdateContactMessage(ctx, m.ID, domain.ContactMessagePatch{Status: &read})
	if err != nil || gotMsg.Status != domain.MessageRead {
		t.Fatalf("update message status: %+v %v", gotMsg, err)
	}
}

func TestListProductsUnknownStatusMatchesNothing(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()
	if _, err := a.CreateProduct(ctx, ProductInput{Name: "Mukau Seedling", Category: "Indigenous Trees", Price: "KSh 250"}); err != nil {
		t.Fatalf("create product: %v", err)
	}
	got, err := a.ListProducts(ctx, "", "bogus")
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("unknown status filter = %v, %v", got, err)
	}
	got, err = a.ListProducts(ctx, "", "Available")
	if err != nil || len(got) != 1 {
		t.Fatalf("alias status filter = %v, %v", got, err)
	}
}

func TestTestimonialRatingRange(t *testing.T) {
	a, _ := newTestApp(t)
	rating := 6
	_, err := a.CreateTestimonial(context.Background(), TestimonialInput{Name: "Akinyi", Location: "Nakuru", Text: "Great", Rating: &rating})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected rating 6 rejected, got %v", err)
	}
}

func TestStoreErrorsAreClassified(t *testing.T) {
	a, st := newTestApp(t)
	ctx := context.Background()

	st.fail = fmt.Errorf("insert: %w", store.ErrConflict)
	_, err := a.CreateProfile(ctx, ProfileInput{Email: "wanjiru@example.com"})
	if !errors.Is(err, ErrValidation) || !errors.Is(err, store.ErrConflict) {
		t.Fatalf("conflict should be a validation error, got %v", err)
	}

	st.fail = fmt.Errorf("dial: %w", store.ErrUnavailable)
	_, err = a.ListProducts(ctx, "", "")
	if errors.Is(err, ErrValidation) || !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("outage should stay a storage fault, got %v", err)
	}
}

func TestAdminLoginRejectsUnlistedEmailWithoutLookup(t *testing.T) {
	a, st := newTestApp(t)
	seedAdmin(t, st, "intruder@example.com")
	_, err := a.AdminLogin(context.Background(), "intruder@example.com", testPassword)
	if !errors.Is(err, ErrUnauthorizedEmail) {
		t.Fatalf("expected ErrUnauthorizedEmail, got %v", err)
	}
	if st.adminLookups != 0 {
		t.Fatalf("allow-list rejection must not query the store, got %d lookups", st.adminLookups)
	}
}

func TestAdminLoginVerifyLogout(t *testing.T) {
	a, st := newTestApp(t)
	admin := seedAdmin(t, st, testAdmin)
	ctx := context.Background()

	if _, err := a.AdminLogin(ctx, testAdmin, "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	session, err := a.AdminLogin(ctx, " ADMIN@littleforest.co.ke ", testPassword)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token == "" || session.User.ID != admin.ID || session.User.Email != testAdmin {
		t.Fatalf("unexpected session: %+v", session)
	}

	who, err := a.VerifyAdmin(ctx, session.Token)
	if err != nil || who.ID != admin.ID || who.Email != testAdmin {
		t.Fatalf("verify: %+v, %v", who, err)
	}

	if err := a.AdminLogout(ctx, session.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := a.VerifyAdmin(ctx, session.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected revoked token rejected, got %v", err)
	}
	if err := a.AdminLogout(ctx, ""); err != nil {
		t.Fatalf("empty logout: %v", err)
	}
}

func TestAdminLoginUnknownAdminRow(t *testing.T) {
	a, _ := newTestApp(t)
	if _, err := a.AdminLogin(context.Background(), testAdmin, testPassword); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerifyAdminRejections(t *testing.T) {
	ctx := context.Background()
	a, st := newTestApp(t)
	seedAdmin(t, st, testAdmin)

	if _, err := a.VerifyAdmin(ctx, "  "); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if _, err := a.VerifyAdmin(ctx, "YWRtaW46YWRtaW5AbGl0dGxlZm9yZXN0LmNvLmtl"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected unsigned token rejected, got %v", err)
	}

	// Same secret, so these tokens are validly signed.
	sessions := newSessions(t)
	token, _, err := sessions.NewSession(domain.AdminUser{ID: "x", Email: "former@littleforest.co.ke"})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, err := a.VerifyAdmin(ctx, token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected delisted email rejected, got %v", err)
	}

	mismatch, _, _ := sessions.NewSession(domain.AdminUser{ID: "someone-else", Email: testAdmin})
	if _, err := a.VerifyAdmin(ctx, mismatch); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected id mismatch rejected, got %v", err)
	}
}

func TestSeedAdmin(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()
	if _, err := a.SeedAdmin(ctx, "someone@example.com", testPassword); !errors.Is(err, ErrUnauthorizedEmail) {
		t.Fatalf("expected unlisted email rejected, got %v", err)
	}
	if _, err := a.SeedAdmin(ctx, testAdmin, "weak"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected weak password rejected, got %v", err)
	}
	created, err := a.SeedAdmin(ctx, testAdmin, testPassword)
	if err != nil || !created {
		t.Fatalf("first seed: created=%v err=%v", created, err)
	}
	created, err = a.SeedAdmin(ctx, testAdmin, testPassword)
	if err != nil || created {
		t.Fatalf("second seed must be a no-op: created=%v err=%v", created, err)
	}
	if _, err := a.AdminLogin(ctx, testAdmin, testPassword); err != nil {
		t.Fatalf("login with seeded admin: %v", err)
	}
}
