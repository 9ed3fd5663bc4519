package domain

import "time"

type ProfileRole string

const (
	RoleUser  ProfileRole = "user"
	RoleAdmin ProfileRole = "admin"
)

type ProductStatus string

const (
	ProductActive     ProductStatus = "active"
	ProductLimited    ProductStatus = "limited"
	ProductOutOfStock ProductStatus = "out_of_stock"
)

type ContentType string

const (
	ContentPage         ContentType = "page"
	ContentBlog         ContentType = "blog"
	ContentAnnouncement ContentType = "announcement"
)

type ContentStatus string

const (
	ContentDraft     ContentStatus = "draft"
	ContentPublished ContentStatus = "published"
)

type MessageStatus string

const (
	MessageNew     MessageStatus = "new"
	MessageRead    MessageStatus = "read"
	MessageReplied MessageStatus = "replied"
)

// Server-assigned fields use omitzero so inserts leave them to the database.

type Profile struct {
	ID        string      `json:"id,omitzero"`
	Email     string      `json:"email"`
	FullName  string      `json:"full_name"`
	Role      ProfileRole `json:"role"`
	CreatedAt time.Time   `json:"created_at,omitzero"`
	UpdatedAt time.Time   `json:"updated_at,omitzero"`
}

type Product struct {
	ID            string        `json:"id,omitzero"`
	Name          string        `json:"name"`
	Category      string        `json:"category"`
	Price         string        `json:"price"`
	Description   string        `json:"description"`
	ImageURL      string        `json:"image_url"`
	Status        ProductStatus `json:"status"`
	Featured      bool          `json:"featured"`
	StockQuantity int           `json:"stock_quantity"`
	CreatedAt     time.Time     `json:"created_at,omitzero"`
	UpdatedAt     time.Time     `json:"updated_at,omitzero"`
}

type Content struct {
	ID        string        `json:"id,omitzero"`
	Title     string        `json:"title"`
	Body      string        `json:"content"`
	Type      ContentType   `json:"type"`
	Status    ContentStatus `json:"status"`
	CreatedBy *string       `json:"created_by,omitempty"`
	CreatedAt time.Time     `json:"created_at,omitzero"`
	UpdatedAt time.Time     `json:"updated_at,omitzero"`
}

type ContactMessage struct {
	ID        string        `json:"id,omitzero"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Message   string        `json:"message"`
	Status    MessageStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at,omitzero"`
}

type Testimonial struct {
	ID        string    `json:"id,omitzero"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Text      string    `json:"text"`
	Project   string    `json:"project"`
	Rating    *int      `json:"rating,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

type AdminUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Patch types carry only the fields a partial update touches; nil means
// "leave unchanged".

type ProfilePatch struct {
	Email    *string      `json:"email,omitempty"`
	FullName *string      `json:"full_name,omitempty"`
	Role     *ProfileRole `json:"role,omitempty"`
}

type ProductPatch struct {
	Name          *string        `json:"name,omitempty"`
	Category      *string        `json:"category,omitempty"`
	Price         *string        `json:"price,omitempty"`
	Description   *string        `json:"description,omitempty"`
	ImageURL      *string        `json:"image_url,omitempty"`
	Status        *ProductStatus `json:"status,omitempty"`
	Featured      *bool          `json:"featured,omitempty"`
	StockQuantity *int           `json:"stock_quantity,omitempty"`
}

type ContentPatch struct {
	Title     *string        `json:"title,omitempty"`
	Body      *string        `json:"content,omitempty"`
	Type      *ContentType   `json:"type,omitempty"`
	Status    *ContentStatus `json:"status,omitempty"`
	CreatedBy *string        `json:"created_by,omitempty"`
}

type ContactMessagePatch struct {
	Name    *string        `json:"name,omitempty"`
	Email   *string        `json:"email,omitempty"`
	Phone   *string        `json:"phone,omitempty"`
	Message *string        `json:"message,omitempty"`
	Status  *MessageStatus `json:"status,omitempty"`
}

type TestimonialPatch struct {
	Name     *string `json:"name,omitempty"`
	Location *string `json:"location,omitempty"`
	Text     *string `json:"text,omitempty"`
	Project  *string `json:"project,omitempty"`
	Rating   *int    `json:"rating,omitempty"`
}
