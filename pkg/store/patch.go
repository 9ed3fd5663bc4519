package store

import "littleforest/pkg/domain"

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func applyProfilePatch(p *domain.Profile, patch domain.ProfilePatch) {
	set(&p.Email, patch.Email)
	set(&p.FullName, patch.FullName)
	set(&p.Role, patch.Role)
}

func applyProductPatch(p *domain.Product, patch domain.ProductPatch) {
	set(&p.Name, patch.Name)
	set(&p.Category, patch.Category)
	set(&p.Price, patch.Price)
	set(&p.Description, patch.Description)
	set(&p.ImageURL, patch.ImageURL)
	set(&p.Status, patch.Status)
	set(&p.Featured, patch.Featured)
	set(&p.StockQuantity, patch.StockQuantity)
}

func applyContentPatch(c *domain.Content, patch domain.ContentPatch) {
	set(&c.Title, patch.Title)
	set(&c.Body, patch.Body)
	set(&c.Type, patch.Type)
	set(&c.Status, patch.Status)
	if patch.CreatedBy != nil {
		createdBy := *patch.CreatedBy
		c.CreatedBy = &createdBy
	}
}

func applyContactMessagePatch(m *domain.ContactMessage, patch domain.ContactMessagePatch) {
	set(&m.Name, patch.Name)
	set(&m.Email, patch.Email)
	set(&m.Phone, patch.Phone)
	set(&m.Message, patch.Message)
	set(&m.Status, patch.Status)
}

func applyTestimonialPatch(t *domain.Testimonial, patch domain.TestimonialPatch) {
	set(&t.Name, patch.Name)
	set(&t.Location, patch.Location)
	set(&t.Text, patch.Text)
	set(&t.Project, patch.Project)
	if patch.Rating != nil {
		rating := *patch.Rating
		t.Rating = &rating
	}
}
