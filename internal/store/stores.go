package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adityatechndevoops/OliveStore/internal/models"

	"github.com/google/uuid"
)

// CreateStore inserts a store; ID is generated when unset.
func (s *Store) CreateStore(ctx context.Context, st *models.Store) error {
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}

	query := `
		INSERT INTO stores (
			id, store_name, owner_id, contact_number, email, address, geolocation,
			gstin, fssai_license, document_uploads, onboarding_status, bank_details,
			operating_hours, is_accepting_orders, onboarded_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		st.ID, st.StoreName, st.OwnerID, st.ContactNumber, st.Email, st.Address, st.Geolocation,
		st.GSTIN, st.FSSAILicense, st.DocumentUploads, st.OnboardingStatus, st.BankDetails,
		st.OperatingHours, st.IsAcceptingOrders, st.OnboardedBy,
	).Scan(&st.CreatedAt, &st.UpdatedAt)
	return translate("create store", err)
}

// GetStoreByID retrieves a store by ID
func (s *Store) GetStoreByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var st models.Store
	if err := s.db.GetContext(ctx, &st, "SELECT * FROM stores WHERE id = $1", id); err != nil {
		return nil, notFound("store", "get store", err)
	}
	return &st, nil
}

// ListStores retrieves a page of stores, newest first
func (s *Store) ListStores(ctx context.Context, f models.StoreFilter) ([]models.Store, int, error) {
	var c conditions
	if f.OwnerID != nil {
		c.add("owner_id = $%d", *f.OwnerID)
	}
	if f.Status != "" {
		c.add("onboarding_status = $%d", f.Status)
	}

	stores := []models.Store{}
	total, err := s.list(ctx, &stores, "stores", &c, "created_at DESC", f.Limit, f.Offset())
	if err != nil {
		return nil, 0, err
	}
	return stores, total, nil
}

// StoreIDsByOwner returns the IDs of every store owned by ownerID.
func (s *Store) StoreIDsByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := s.db.SelectContext(ctx, &ids,
		"SELECT id FROM stores WHERE owner_id = $1 ORDER BY created_at", ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned stores: %w", err)
	}
	return ids, nil
}

// UpdateStore writes every mutable column. owner_id, onboarded_by and
// document_uploads are left alone.
func (s *Store) UpdateStore(ctx context.Context, st *models.Store) error {
	query := `
		UPDATE stores SET
			store_name = $2, contact_number = $3, email = $4, address = $5, geolocation = $6,
			gstin = $7, fssai_license = $8, onboarding_status = $9, bank_details = $10,
			operating_hours = $11, is_accepting_orders = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		st.ID, st.StoreName, st.ContactNumber, st.Email, st.Address, st.Geolocation,
		st.GSTIN, st.FSSAILicense, st.OnboardingStatus, st.BankDetails,
		st.OperatingHours, st.IsAcceptingOrders,
	).Scan(&st.UpdatedAt)
	return notFound("store", "update store", err)
}

// AppendStoreDocument atomically appends an uploaded document and moves the
// store to Submitted.
func (s *Store) AppendStoreDocument(ctx context.Context, id uuid.UUID, doc models.DocumentUpload) (*models.Store, error) {
	entry, err := json.Marshal(models.DocumentUploads{doc})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	query := `
		UPDATE stores SET
			document_uploads = document_uploads || $2::jsonb,
			onboarding_status = $3,
			is_accepting_orders = $4,
			updated_at = NOW()
		WHERE id = $1
		RETURNING *`

	var st models.Store
	err = s.db.GetContext(ctx, &st, query,
		id, string(entry), models.OnboardingSubmitted, models.OnboardingSubmitted.AcceptsOrders())
	if err != nil {
		return nil, notFound("store", "append store document", err)
	}
	return &st, nil
}

// DeleteStore removes a store. Stores with orders are rejected by the
// foreign key.
func (s *Store) DeleteStore(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM stores WHERE id = $1", id)
	if err != nil {
		return translate("delete store", err)
	}
	return requireAffected(res, "store")
}
