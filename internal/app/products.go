package app

import (
	"context"
	"strings"

	"littleforest/pkg/domain"
	"littleforest/pkg/store"
)

// ProductInput is the create payload for a product.
type ProductInput struct {
	Name          string `json:"name" validate:"required,max=200"`
	Category      string `json:"category" validate:"required,max=100"`
	Price         string `json:"price" validate:"required,max=50"`
	Description   string `json:"description" validate:"max=5000"`
	ImageURL      string `json:"image_url" validate:"max=2048"`
	Status        string `json:"status"`
	Featured      bool   `json:"featured"`
	StockQuantity int    `json:"stock_quantity" validate:"gte=0"`
}

var productStatusAliases = map[string]domain.ProductStatus{
	"active":        domain.ProductActive,
	"available":     domain.ProductActive,
	"in_stock":      domain.ProductActive,
	"limited":       domain.ProductLimited,
	"limited_stock": domain.ProductLimited,
	"out_of_stock":  domain.ProductOutOfStock,
	"sold_out":      domain.ProductOutOfStock,
}

var statusSeparators = strings.NewReplacer("-", "_", " ", "_")

// ParseProductStatus maps the spellings seen in the wild ("Available",
// "out of stock", ...) onto the canonical enumeration. Empty means active.
func ParseProductStatus(raw string) (domain.ProductStatus, error) {
	key := statusSeparators.Replace(strings.ToLower(strings.TrimSpace(raw)))
	if key == "" {
		return domain.ProductActive, nil
	}
	if status, ok := productStatusAliases[key]; ok {
		return status, nil
	}
	return "", invalid("unknown product status %q", raw)
}

// ListProducts filters by category and status. A status no product can
// carry matches nothing rather than failing the listing.
func (a *App) ListProducts(ctx context.Context, category, status string) ([]domain.Product, error) {
	filter := store.ProductFilter{Category: strings.TrimSpace(category)}
	if strings.TrimSpace(status) != "" {
		s, err := ParseProductStatus(status)
		if err != nil {
			return []domain.Product{}, nil
		}
		filter.Status = s
	}
	products, err := a.store.ListProducts(ctx, filter)
	if err != nil {
		return nil, storeError("list products", err)
	}
	return products, nil
}

func (a *App) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	p, ok, err := a.store.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, storeError("get product", err)
	}
	if !ok {
		return domain.Product{}, ErrNotFound
	}
	return p, nil
}

func (a *App) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Price = strings.TrimSpace(in.Price)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := a.check(in); err != nil {
		return domain.Product{}, err
	}
	status, err := ParseProductStatus(in.Status)
	if err != nil {
		return domain.Product{}, err
	}
	p, err := a.store.CreateProduct(ctx, domain.Product{
		Name:          in.Name,
		Category:      in.Category,
		Price:         in.Price,
		Description:   in.Description,
		ImageURL:      in.ImageURL,
		Status:        status,
		Featured:      in.Featured,
		StockQuantity: in.StockQuantity,
	})
	if err != nil {
		return domain.Product{}, storeError("create product", err)
	}
	return p, nil
}

func (a *App) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	patch.Name = trimPtr(patch.Name)
	patch.Category = trimPtr(patch.Category)
	patch.Price = trimPtr(patch.Price)
	patch.ImageURL = trimPtr(patch.ImageURL)
	for _, err := range []error{
		checkVar(a, patch.Name, "required,max=200"),
		checkVar(a, patch.Category, "required,max=100"),
		checkVar(a, patch.Price, "required,max=50"),
		checkVar(a, patch.Description, "max=5000"),
		checkVar(a, patch.ImageURL, "max=2048"),
		checkVar(a, patch.StockQuantity, "gte=0"),
	} {
		if err != nil {
			return domain.Product{}, err
		}
	}
	if patch.Status != nil {
		status, err := ParseProductStatus(string(*patch.Status))
		if err != nil {
			return domain.Product{}, err
		}
		patch.Status = &status
	}
	p, ok, err := a.store.UpdateProduct(ctx, id, patch)
	if err != nil {
		return domain.Product{}, storeError("update product", err)
	}
	if !ok {
		return domain.Product{}, ErrNotFound
	}
	return p, nil
}

// DeleteProduct is idempotent: removing a missing product succeeds.
func (a *App) DeleteProduct(ctx context.Context, id string) error {
	if _, err := a.store.DeleteProduct(ctx, id); err != nil {
		return storeError("delete product", err)
	}
	return nil
}
