package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product in a store's catalog
type Product struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	StoreID     uuid.UUID       `db:"store_id" json:"store"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Stock       int             `db:"stock" json:"stock"`
	ImageURL    string          `db:"image_url" json:"imageUrl"`
	Active      bool            `db:"active" json:"active"`
	Category    string          `db:"category" json:"category"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// ProductFilter narrows product listings. A non-nil StoreIDs restricts the
// result to those stores, an empty slice matches nothing.
type ProductFilter struct {
	Query    string
	StoreID  *uuid.UUID
	StoreIDs []uuid.UUID
	Pagination
}
