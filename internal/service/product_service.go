package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/adityatechndevoops/OliveStore/internal/apperror"
	"github.com/adityatechndevoops/OliveStore/internal/models"
	"github.com/adityatechndevoops/OliveStore/internal/policy"
	"github.com/adityatechndevoops/OliveStore/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService manages store catalogs
type ProductService struct {
	products ProductRepository
	stores   StoreRepository
	storage  ObjectStorage
	logger   *zap.Logger
}

func NewProductService(products ProductRepository, stores StoreRepository, storage ObjectStorage) *ProductService {
	return &ProductService{
		products: products,
		stores:   stores,
		storage:  storage,
		logger:   util.GetLogger(),
	}
}

// ProductRequest is used for both create and partial update; nil fields are
// left unchanged on update.
type ProductRequest struct {
	StoreID     *uuid.UUID       `json:"storeId"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	ImageURL    *string          `json:"imageUrl"`
	Active      *bool            `json:"active"`
	Category    *string          `json:"category"`
}

func (s *ProductService) storeOwner(ctx context.Context, storeID uuid.UUID) (uuid.UUID, error) {
	st, err := s.stores.GetStoreByID(ctx, storeID)
	if err != nil {
		return uuid.Nil, err
	}
	return st.OwnerID, nil
}

func (s *ProductService) uploadImage(ctx context.Context, storeID uuid.UUID, image *FileUpload) (string, error) {
	if err := validateUpload(image, imageContentTypes); err != nil {
		return "", err
	}
	url, err := s.storage.Upload(ctx, image.Data, fmt.Sprintf("products/%s", storeID), image.Filename, image.ContentType)
	if err != nil {
		return "", apperror.Internal(fmt.Errorf("failed to upload product image: %w", err))
	}
	return url, nil
}

// apply copies the set fields of req onto p.
func (req *ProductRequest) apply(p *models.Product) error {
	if req.Name != nil {
		if p.Name = strings.TrimSpace(*req.Name); p.Name == "" {
			return apperror.Validation("name is required")
		}
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return apperror.Validation("price must not be negative")
		}
		p.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return apperror.Validation("stock must not be negative")
		}
		p.Stock = *req.Stock
	}
	if req.ImageURL != nil {
		p.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
	}
	return nil
}

// CreateProduct adds a product to a store the caller may manage. image is
// optional.
func (s *ProductService) CreateProduct(ctx context.Context, p policy.Principal, req *ProductRequest, image *FileUpload) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.CreateProduct")
	defer span.End()

	if req.StoreID == nil || *req.StoreID == uuid.Nil {
		return nil, apperror.Validation("storeId is required")
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, apperror.Validation("name is required")
	}
	if req.Price == nil {
		return nil, apperror.Validation("price is required")
	}

	product := &models.Product{StoreID: *req.StoreID, Active: true}
	if err := req.apply(product); err != nil {
		return nil, err
	}

	owner, err := s.storeOwner(ctx, product.StoreID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.ProductCreate, owner); err != nil {
		return nil, err
	}

	if image != nil {
		url, err := s.uploadImage(ctx, product.StoreID, image)
		if err != nil {
			return nil, err
		}
		product.ImageURL = url
	}

	if err := s.products.CreateProduct(ctx, product); err != nil {
		s.warnOrphanedImage(product.ImageURL, err)
		return nil, err
	}

	util.LoggerFromContext(ctx).Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("store_id", product.StoreID.String()))
	return product, nil
}

// loadAuthorized fetches a product and authorizes perm against its store owner.
func (s *ProductService) loadAuthorized(ctx context.Context, p policy.Principal, perm policy.Permission, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := s.storeOwner(ctx, product.StoreID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, perm, owner); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, p policy.Principal, id uuid.UUID) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.GetProduct")
	defer span.End()

	return s.loadAuthorized(ctx, p, policy.ProductRead, id)
}

type ListProductsQuery struct {
	Query   string
	StoreID *uuid.UUID
	ListQuery
}

// ListProducts searches products by name; merchants only see their stores.
func (s *ProductService) ListProducts(ctx context.Context, p policy.Principal, q ListProductsQuery) (*models.Page[models.Product], error) {
	ctx, span := util.StartSpan(ctx, "ProductService.ListProducts")
	defer span.End()

	filter := models.ProductFilter{
		Query:      strings.TrimSpace(q.Query),
		StoreID:    q.StoreID,
		Pagination: q.pagination(),
	}

	switch policy.ScopeOf(p, policy.ProductList) {
	case policy.ScopeAll:
	case policy.ScopeOwn:
		owned, err := s.stores.StoreIDsByOwner(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		if q.StoreID != nil && !containsID(owned, *q.StoreID) {
			return nil, apperror.Forbidden("you do not own this store")
		}
		filter.StoreIDs = owned
	default:
		return nil, policy.Require(p, policy.ProductList)
	}

	products, total, err := s.products.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	return newPage(products, filter.Pagination, total), nil
}

// UpdateProduct applies a partial update. A new image replaces imageUrl.
func (s *ProductService) UpdateProduct(ctx context.Context, p policy.Principal, id uuid.UUID, req *ProductRequest, image *FileUpload) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.UpdateProduct")
	defer span.End()

	product, err := s.loadAuthorized(ctx, p, policy.ProductUpdate, id)
	if err != nil {
		return nil, err
	}
	if req.StoreID != nil && *req.StoreID != product.StoreID {
		return nil, apperror.Validation("store cannot be changed")
	}
	if err := req.apply(product); err != nil {
		return nil, err
	}

	if image != nil {
		url, err := s.uploadImage(ctx, product.StoreID, image)
		if err != nil {
			return nil, err
		}
		product.ImageURL = url
	}

	if err := s.products.UpdateProduct(ctx, product); err != nil {
		if image != nil {
			s.warnOrphanedImage(product.ImageURL, err)
		}
		return nil, err
	}
	return product, nil
}

// warnOrphanedImage records an uploaded image whose product write failed.
// The object stays in the bucket; the URL is logged for cleanup.
func (s *ProductService) warnOrphanedImage(url string, cause error) {
	if url == "" {
		return
	}
	s.logger.Warn("Product write failed after image upload, object orphaned",
		zap.String("url", url),
		zap.Error(cause))
}

func (s *ProductService) DeleteProduct(ctx context.Context, p policy.Principal, id uuid.UUID) error {
	ctx, span := util.StartSpan(ctx, "ProductService.DeleteProduct")
	defer span.End()

	if _, err := s.loadAuthorized(ctx, p, policy.ProductDelete, id); err != nil {
		return err
	}
	return s.products.DeleteProduct(ctx, id)
}
