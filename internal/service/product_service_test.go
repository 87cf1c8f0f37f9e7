package service

import (
	"context"
	"testing"

	"github.com/adityatechndevoops/OliveStore/internal/apperror"
	"github.com/adityatechndevoops/OliveStore/internal/models"
	"github.com/adityatechndevoops/OliveStore/internal/service/servicetest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestProductLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := &ProductRequest{StoreID: &f.store.ID, Name: strPtr(" Basmati Rice "), Price: decPtr(120), Stock: intPtr(10)}
	image := &FileUpload{Filename: "rice.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}
	product, err := f.products.CreateProduct(ctx, f.merchant, req, image)
	require.NoError(t, err)

	assert.Equal(t, "Basmati Rice", product.Name)
	assert.True(t, product.Active)
	assert.Equal(t, "https://bucket.test/products/"+f.store.ID.String()+"/rice.png", product.ImageURL)

	updated, err := f.products.UpdateProduct(ctx, f.staff, product.ID, &ProductRequest{Stock: intPtr(0), Active: boolPtr(false)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)
	assert.False(t, updated.Active)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(120)))

	got, err := f.products.GetProduct(ctx, f.merchant, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Basmati Rice", got.Name)

	require.NoError(t, f.products.DeleteProduct(ctx, f.merchant, product.ID))
	_, err = f.products.GetProduct(ctx, f.admin, product.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.products.CreateProduct(ctx, f.merchant, &ProductRequest{Name: strPtr("x"), Price: decPtr(1)}, nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.products.CreateProduct(ctx, f.merchant, &ProductRequest{StoreID: &f.store.ID, Price: decPtr(1)}, nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.products.CreateProduct(ctx, f.merchant, &ProductRequest{StoreID: &f.store.ID, Name: strPtr("x")}, nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.products.CreateProduct(ctx, f.merchant, &ProductRequest{StoreID: &f.store.ID, Name: strPtr("x"), Price: decPtr(-1)}, nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	pdfImage := &FileUpload{Filename: "x.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}
	_, err = f.products.CreateProduct(ctx, f.merchant, &ProductRequest{StoreID: &f.store.ID, Name: strPtr("x"), Price: decPtr(1)}, pdfImage)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestProductOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	otherStore := f.addStore(t, f.other.UserID, "9666666666")

	_, err := f.products.CreateProduct(ctx, f.merchant, &ProductRequest{StoreID: &otherStore.ID, Name: strPtr("x"), Price: decPtr(1)}, nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	theirs, err := f.products.CreateProduct(ctx, f.other, &ProductRequest{StoreID: &otherStore.ID, Name: strPtr("Ghee"), Price: decPtr(300)}, nil)
	require.NoError(t, err)
	_, err = f.products.CreateProduct(ctx, f.merchant, &ProductRequest{StoreID: &f.store.ID, Name: strPtr("Dal"), Price: decPtr(90)}, nil)
	require.NoError(t, err)

	_, err = f.products.GetProduct(ctx, f.merchant, theirs.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = f.products.UpdateProduct(ctx, f.merchant, theirs.ID, &ProductRequest{Name: strPtr("mine")}, nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.ErrorIs(t, f.products.DeleteProduct(ctx, f.merchant, theirs.ID), apperror.ErrForbidden)

	_, err = f.products.UpdateProduct(ctx, f.other, theirs.ID, &ProductRequest{StoreID: &f.store.ID}, nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	mine, err := f.products.ListProducts(ctx, f.merchant, ListProductsQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, mine.Total)
	assert.Equal(t, "Dal", mine.Items[0].Name)

	_, err = f.products.ListProducts(ctx, f.merchant, ListProductsQuery{StoreID: &otherStore.ID})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	search, err := f.products.ListProducts(ctx, f.admin, ListProductsQuery{Query: "GHE"})
	require.NoError(t, err)
	assert.Equal(t, 1, search.Total)
	assert.Equal(t, 10, search.Limit)

	_, err = f.products.ListProducts(ctx, f.viewer, ListProductsQuery{})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.products.GetProduct(ctx, f.admin, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func boolPtr(b bool) *bool { return &b }

type failingProducts struct {
	*servicetest.Memory
}

func (failingProducts) CreateProduct(context.Context, *models.Product) error {
	return apperror.Conflict("name already exists")
}

func TestCreateProductLogsOrphanedImage(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewProductService(failingProducts{f.repo}, f.repo, f.storage)
	svc.logger = zap.New(core)

	req := &ProductRequest{StoreID: &f.store.ID, Name: strPtr("Basmati"), Price: decPtr(120)}
	image := &FileUpload{Filename: "rice.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}
	_, err := svc.CreateProduct(context.Background(), f.merchant, req, image)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	require.Len(t, f.storage.Uploads, 1)
	entries := logs.FilterField(zap.String("url", "https://bucket.test/products/"+f.store.ID.String()+"/rice.png")).All()
	assert.Len(t, entries, 1)
}

func TestCreateProductWithoutImageLogsNothing(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewProductService(failingProducts{f.repo}, f.repo, f.storage)
	svc.logger = zap.New(core)

	req := &ProductRequest{StoreID: &f.store.ID, Name: strPtr("Basmati"), Price: decPtr(120)}
	_, err := svc.CreateProduct(context.Background(), f.merchant, req, nil)
	assert.Error(t, err)
	assert.Zero(t, logs.Len())
}
