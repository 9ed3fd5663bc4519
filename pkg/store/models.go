package store

import (
	"time"

	"littleforest/pkg/domain"
)

// GORM models used for persistence. Table and column names match the
// hosted schema so either backend can serve the same database.
type ProfileModel struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	Email     string `gorm:"uniqueIndex;not null"`
	FullName  string
	Role      string    `gorm:"not null;default:user"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (ProfileModel) TableName() string { return "profiles" }

type ProductModel struct {
	ID            string `gorm:"primaryKey;type:uuid"`
	Name          string `gorm:"not null"`
	Category      string `gorm:"not null;index"`
	Price         string `gorm:"not null"`
	Description   string
	ImageURL      string    `gorm:"column:image_url"`
	Status        string    `gorm:"not null;default:active"`
	Featured      bool      `gorm:"not null;default:false"`
	StockQuantity int       `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"not null;index"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (ProductModel) TableName() string { return "products" }

type ContentModel struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	Title     string    `gorm:"not null"`
	Body      string    `gorm:"column:content;type:text;not null"`
	Type      string    `gorm:"not null;index"`
	Status    string    `gorm:"not null;default:draft"`
	CreatedBy *string   `gorm:"type:uuid"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (ContentModel) TableName() string { return "content" }

type ContactMessageModel struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"not null"`
	Phone     string
	Message   string    `gorm:"type:text;not null"`
	Status    string    `gorm:"not null;default:new"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (ContactMessageModel) TableName() string { return "contact_messages" }

type TestimonialModel struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	Name      string `gorm:"not null"`
	Location  string `gorm:"not null"`
	Text      string `gorm:"type:text;not null"`
	Project   string
	Rating    *int
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (TestimonialModel) TableName() string { return "testimonials" }

type AdminUserModel struct {
	ID           string    `gorm:"primaryKey;type:uuid"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (AdminUserModel) TableName() string { return "admin_users" }

func profileToModel(p domain.Profile) ProfileModel {
	return ProfileModel{ID: p.ID, Email: p.Email, FullName: p.FullName, Role: string(p.Role), CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
}

func profileFromModel(m ProfileModel) domain.Profile {
	return domain.Profile{ID: m.ID, Email: m.Email, FullName: m.FullName, Role: domain.ProfileRole(m.Role), CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func productToModel(p domain.Product) ProductModel {
	return ProductModel{
		ID:            p.ID,
		Name:          p.Name,
		Category:      p.Category,
		Price:         p.Price,
		Description:   p.Description,
		ImageURL:      p.ImageURL,
		Status:        string(p.Status),
		Featured:      p.Featured,
		StockQuantity: p.StockQuantity,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func productFromModel(m ProductModel) domain.Product {
	return domain.Product{
		ID:            m.ID,
		Name:          m.Name,
		Category:      m.Category,
		Price:         m.Price,
		Description:   m.Description,
		ImageURL:      m.ImageURL,
		Status:        domain.ProductStatus(m.Status),
		Featured:      m.Featured,
		StockQuantity: m.StockQuantity,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func contentToModel(c domain.Content) ContentModel {
	return ContentModel{
		ID:        c.ID,
		Title:     c.Title,
		Body:      c.Body,
		Type:      string(c.Type),
		Status:    string(c.Status),
		CreatedBy: c.CreatedBy,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func contentFromModel(m ContentModel) domain.Content {
	return domain.Content{
		ID:        m.ID,
		Title:     m.Title,
		Body:      m.Body,
		Type:      domain.ContentType(m.Type),
		Status:    domain.ContentStatus(m.Status),
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func contactMessageToModel(msg domain.ContactMessage) ContactMessageModel {
	return ContactMessageModel{
		ID:        msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Phone:     msg.Phone,
		Message:   msg.Message,
		Status:    string(msg.Status),
		CreatedAt: msg.CreatedAt,
	}
}

func contactMessageFromModel(m ContactMessageModel) domain.ContactMessage {
	return domain.ContactMessage{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Message:   m.Message,
		Status:    domain.MessageStatus(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

func testimonialToModel(t domain.Testimonial) TestimonialModel {
	return TestimonialModel{
		ID:        t.ID,
		Name:      t.Name,
		Location:  t.Location,
		Text:      t.Text,
		Project:   t.Project,
		Rating:    t.Rating,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func testimonialFromModel(m TestimonialModel) domain.Testimonial {
	return domain.Testimonial{
		ID:        m.ID,
		Name:      m.Name,
		Location:  m.Location,
		Text:      m.Text,
		Project:   m.Project,
		Rating:    m.Rating,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func adminUserToModel(u domain.AdminUser) AdminUserModel {
	return AdminUserModel{ID: u.ID, Email: u.Email, PasswordHash: u.PasswordHash, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

func adminUserFromModel(m AdminUserModel) domain.AdminUser {
	return domain.AdminUser{ID: m.ID, Email: m.Email, PasswordHash: m.PasswordHash, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}
