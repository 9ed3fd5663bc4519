package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"littleforest/pkg/domain"
)

const migrateLockID int64 = 51120731

// GormStore implements Store using GORM. Production runs on Postgres;
// tests run the same code on SQLite.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the Postgres DSN and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	return NewGormStoreWithDialector(postgres.Open(dsn))
}

// NewGormStoreWithDialector opens any GORM dialector and runs auto-migrations.
func NewGormStoreWithDialector(dialector gorm.Dialector) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	migrate := func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&ProfileModel{},
			&ProductModel{},
			&ContentModel{},
			&ContactMessageModel{},
			&TestimonialModel{},
			&AdminUserModel{},
		); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}
	if db.Dialector.Name() == "postgres" {
		err = withMigrationLock(db, migrate)
	} else {
		err = migrate(db)
	}
	if err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// withMigrationLock serialises AutoMigrate across replicas starting together.
func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// Ping checks the underlying connection pool.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("ping: %w: %w", ErrUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w: %w", ErrUnavailable, err)
	}
	return nil
}

func gormErr(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
}

// validID filters ids that cannot exist in a uuid column, so lookups on
// garbage ids are a plain miss rather than a cast error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func gormList[M any, T any](db *gorm.DB, op string, conv func(M) T) ([]T, error) {
	var models []M
	if err := db.Order("created_at desc").Find(&models).Error; err != nil {
		return nil, gormErr(op, err)
	}
	out := make([]T, 0, len(models))
	for _, m := range models {
		out = append(out, conv(m))
	}
	return out, nil
}

func gormFirst[M any, T any](db *gorm.DB, op string, conv func(M) T, query string, args ...any) (T, bool, error) {
	var model M
	var zero T
	if err := db.Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, false, nil
		}
		return zero, false, gormErr(op, err)
	}
	return conv(model), true, nil
}

func gormGet[M any, T any](ctx context.Context, db *gorm.DB, op, id string, conv func(M) T) (T, bool, error) {
	if !validID(id) {
		var zero T
		return zero, false, nil
	}
	return gormFirst(db.WithContext(ctx), op, conv, "id = ?", id)
}

// gormUpdate loads the row, merges the patch in the domain type and saves it
// inside one transaction.
func gormUpdate[M any, T any](ctx context.Context, db *gorm.DB, op, id string, from func(M) T, to func(T) M, apply func(*T)) (T, bool, error) {
	var out T
	if !validID(id) {
		return out, false, nil
	}
	found := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model M
		if err := tx.Where("id = ?", id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		row := from(model)
		apply(&row)
		model = to(row)
		if err := tx.Save(&model).Error; err != nil {
			return err
		}
		out = from(model)
		found = true
		return nil
	})
	if err != nil {
		var zero T
		return zero, false, gormErr(op, err)
	}
	return out, found, nil
}

func gormDelete[M any](ctx context.Context, db *gorm.DB, op, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	var model M
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&model)
	if res.Error != nil {
		return false, gormErr(op, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func gormCreate[M any](ctx context.Context, db *gorm.DB, op string, model *M) error {
	if err := db.WithContext(ctx).Create(model).Error; err != nil {
		return gormErr(op, err)
	}
	return nil
}

func newIDIfEmpty(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// profiles

func (s *GormStore) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	return gormList(s.db.WithContext(ctx), "list profiles", profileFromModel)
}

func (s *GormStore) GetProfile(ctx context.Context, id string) (domain.Profile, bool, error) {
	return gormGet(ctx, s.db, "get profile", id, profileFromModel)
}

func (s *GormStore) GetProfileByEmail(ctx context.Context, email string) (domain.Profile, bool, error) {
	return gormFirst(s.db.WithContext(ctx), "get profile by email", profileFromModel, "lower(email) = lower(?)", email)
}

func (s *GormStore) CreateProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	p.ID = newIDIfEmpty(p.ID)
	model := profileToModel(p)
	if err := gormCreate(ctx, s.db, "create profile", &model); err != nil {
		return domain.Profile{}, err
	}
	return profileFromModel(model), nil
}

func (s *GormStore) UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) (domain.Profile, bool, error) {
	return gormUpdate(ctx, s.db, "update profile", id, profileFromModel, profileToModel, func(p *domain.Profile) {
		applyProfilePatch(p, patch)
	})
}

func (s *GormStore) DeleteProfile(ctx context.Context, id string) (bool, error) {
	return gormDelete[ProfileModel](ctx, s.db, "delete profile", id)
}

// products

func (s *GormStore) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	db := s.db.WithContext(ctx)
	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", string(filter.Status))
	}
	return gormList(db, "list products", productFromModel)
}

func (s *GormStore) GetProduct(ctx context.Context, id string) (domain.Product, bool, error) {
	return gormGet(ctx, s.db, "get product", id, productFromModel)
}

func (s *GormStore) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.ID = newIDIfEmpty(p.ID)
	model := productToModel(p)
	if err := gormCreate(ctx, s.db, "create product", &model); err != nil {
		return domain.Product{}, err
	}
	return productFromModel(model), nil
}

func (s *GormStore) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, bool, error) {
	return gormUpdate(ctx, s.db, "update product", id, productFromModel, productToModel, func(p *domain.Product) {
		applyProductPatch(p, patch)
	})
}

func (s *GormStore) DeleteProduct(ctx context.Context, id string) (bool, error) {
	return gormDelete[ProductModel](ctx, s.db, "delete product", id)
}

// content

func (s *GormStore) ListContent(ctx context.Context, filter ContentFilter) ([]domain.Content, error) {
	db := s.db.WithContext(ctx)
	if filter.Type != "" {
		db = db.Where("type = ?", string(filter.Type))
	}
	if filter.Status != "" {
		db = db.Where("status = ?", string(filter.Status))
	}
	return gormList(db, "list content", contentFromModel)
}

func (s *GormStore) GetContent(ctx context.Context, id string) (domain.Content, bool, error) {
	return gormGet(ctx, s.db, "get content", id, contentFromModel)
}

func (s *GormStore) CreateContent(ctx context.Context, c domain.Content) (domain.Content, error) {
	c.ID = newIDIfEmpty(c.ID)
	model := contentToModel(c)
	if err := gormCreate(ctx, s.db, "create content", &model); err != nil {
		return domain.Content{}, err
	}
	return contentFromModel(model), nil
}

func (s *GormStore) UpdateContent(ctx context.Context, id string, patch domain.ContentPatch) (domain.Content, bool, error) {
	return gormUpdate(ctx, s.db, "update content", id, contentFromModel, contentToModel, func(c *domain.Content) {
		applyContentPatch(c, patch)
	})
}

func (s *GormStore) DeleteContent(ctx context.Context, id string) (bool, error) {
	return gormDelete[ContentModel](ctx, s.db, "delete content", id)
}

// contact messages

func (s *GormStore) ListContactMessages(ctx context.Context) ([]domain.ContactMessage, error) {
	return gormList(s.db.WithContext(ctx), "list contact messages", contactMessageFromModel)
}

func (s *GormStore) GetContactMessage(ctx context.Context, id string) (domain.ContactMessage, bool, error) {
	return gormGet(ctx, s.db, "get contact message", id, contactMessageFromModel)
}

func (s *GormStore) CreateContactMessage(ctx context.Context, msg domain.ContactMessage) (domain.ContactMessage, error) {
	msg.ID = newIDIfEmpty(msg.ID)
	model := contactMessageToModel(msg)
	if err := gormCreate(ctx, s.db, "create contact message", &model); err != nil {
		return domain.ContactMessage{}, err
	}
	return contactMessageFromModel(model), nil
}

func (s *GormStore) UpdateContactMessage(ctx context.Context, id string, patch domain.ContactMessagePatch) (domain.ContactMessage, bool, error) {
	return gormUpdate(ctx, s.db, "update contact message", id, contactMessageFromModel, contactMessageToModel, func(msg *domain.ContactMessage) {
		applyContactMessagePatch(msg, patch)
	})
}

func (s *GormStore) DeleteContactMessage(ctx context.Context, id string) (bool, error) {
	return gormDelete[ContactMessageModel](ctx, s.db, "delete contact message", id)
}

// testimonials

func (s *GormStore) ListTestimonials(ctx context.Context) ([]domain.Testimonial, error) {
	return gormList(s.db.WithContext(ctx), "list testimonials", testimonialFromModel)
}

func (s *GormStore) GetTestimonial(ctx context.Context, id string) (domain.Testimonial, bool, error) {
	return gormGet(ctx, s.db, "get testimonial", id, testimonialFromModel)
}

func (s *GormStore) CreateTestimonial(ctx context.Context, t domain.Testimonial) (domain.Testimonial, error) {
	t.ID = newIDIfEmpty(t.ID)
	model := testimonialToModel(t)
	if err := gormCreate(ctx, s.db, "create testimonial", &model); err != nil {
		return domain.Testimonial{}, err
	}
	return testimonialFromModel(model), nil
}

func (s *GormStore) UpdateTestimonial(ctx context.Context, id string, patch domain.TestimonialPatch) (domain.Testimonial, bool, error) {
	return gormUpdate(ctx, s.db, "update testimonial", id, testimonialFromModel, testimonialToModel, func(t *domain.Testimonial) {
		applyTestimonialPatch(t, patch)
	})
}

func (s *GormStore) DeleteTestimonial(ctx context.Context, id string) (bool, error) {
	return gormDelete[TestimonialModel](ctx, s.db, "delete testimonial", id)
}

// admin users

func (s *GormStore) ListAdminUsers(ctx context.Context) ([]domain.AdminUser, error) {
	return gormList(s.db.WithContext(ctx), "list admin users", adminUserFromModel)
}

func (s *GormStore) GetAdminUserByEmail(ctx context.Context, email string) (domain.AdminUser, bool, error) {
	return gormFirst(s.db.WithContext(ctx), "get admin user", adminUserFromModel, "lower(email) = lower(?)", email)
}

func (s *GormStore) CreateAdminUser(ctx context.Context, u domain.AdminUser) (domain.AdminUser, error) {
	u.ID = newIDIfEmpty(u.ID)
	model := adminUserToModel(u)
	if err := gormCreate(ctx, s.db, "create admin user", &model); err != nil {
		return domain.AdminUser{}, err
	}
	return adminUserFromModel(model), nil
}
