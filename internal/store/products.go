package store

import (
	"context"

	"github.com/adityatechndevoops/OliveStore/internal/models"

	"github.com/google/uuid"
)

// CreateProduct inserts a product; ID is generated when unset.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	query := `
		INSERT INTO products (id, store_id, name, description, price, stock, image_url, active, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		p.ID, p.StoreID, p.Name, p.Description, p.Price, p.Stock, p.ImageURL, p.Active, p.Category,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return translate("create product", err)
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id); err != nil {
		return nil, notFound("product", "get product", err)
	}
	return &product, nil
}

// ListProducts retrieves a page of products, newest first
func (s *Store) ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, int, error) {
	products := []models.Product{}
	if f.StoreIDs != nil && len(f.StoreIDs) == 0 {
		return products, 0, nil
	}

	var c conditions
	if f.Query != "" {
		c.add("name ILIKE $%d", likePattern(f.Query))
	}
	if f.StoreID != nil {
		c.add("store_id = $%d", *f.StoreID)
	}
	if f.StoreIDs != nil {
		c.add("store_id = ANY($%d::uuid[])", uuidArray(f.StoreIDs))
	}

	total, err := s.list(ctx, &products, "products", &c, "created_at DESC", f.Limit, f.Offset())
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// UpdateProduct writes every mutable column. store_id is left alone.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products SET
			name = $2, description = $3, price = $4, stock = $5, image_url = $6,
			active = $7, category = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.ImageURL, p.Active, p.Category,
	).Scan(&p.UpdatedAt)
	return notFound("product", "update product", err)
}

// DeleteProduct removes a product
func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return translate("delete product", err)
	}
	return requireAffected(res, "product")
}
