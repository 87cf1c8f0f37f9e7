package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/adityatechndevoops/OliveStore/internal/apperror"
	"github.com/adityatechndevoops/OliveStore/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// productForm reads a product from a multipart form; absent fields stay nil.
func productForm(c *gin.Context) (*service.ProductRequest, error) {
	req := &service.ProductRequest{}

	text := func(name string) *string {
		v, ok := c.GetPostForm(name)
		if !ok {
			return nil
		}
		return &v
	}
	req.Name = text("name")
	req.Description = text("description")
	req.ImageURL = text("imageUrl")
	req.Category = text("category")

	if v := text("storeId"); v != nil {
		id, err := uuid.Parse(*v)
		if err != nil {
			return nil, apperror.Validation("invalid storeId")
		}
		req.StoreID = &id
	}
	if v := text("price"); v != nil {
		price, err := decimal.NewFromString(*v)
		if err != nil {
			return nil, apperror.Validation("price must be a number")
		}
		req.Price = &price
	}
	if v := text("stock"); v != nil {
		stock, err := strconv.Atoi(*v)
		if err != nil {
			return nil, apperror.Validation("stock must be an integer")
		}
		req.Stock = &stock
	}
	if v := text("active"); v != nil {
		active, err := strconv.ParseBool(*v)
		if err != nil {
			return nil, apperror.Validation(fmt.Sprintf("active must be a boolean, got %q", *v))
		}
		req.Active = &active
	}
	return req, nil
}

// productInput accepts JSON, or a multipart form with an optional image part.
func productInput(c *gin.Context) (*service.ProductRequest, *service.FileUpload, bool) {
	if !isMultipart(c) {
		var req service.ProductRequest
		if !bindJSON(c, &req) {
			return nil, nil, false
		}
		return &req, nil, true
	}

	req, err := productForm(c)
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	image, err := readFormFile(c, "image", true)
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	return req, image, true
}

func (h *Handler) listProducts(c *gin.Context) {
	page, ok := listQuery(c)
	if !ok {
		return
	}
	storeID, ok := optionalUUIDQuery(c, "storeId")
	if !ok {
		return
	}
	q := service.ListProductsQuery{Query: c.Query("q"), StoreID: storeID, ListQuery: page}

	products, err := h.svc.Products.ListProducts(c.Request.Context(), principal(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) createProduct(c *gin.Context) {
	req, image, ok := productInput(c)
	if !ok {
		return
	}
	product, err := h.svc.Products.CreateProduct(c.Request.Context(), principal(c), req, image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	product, err := h.svc.Products.GetProduct(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, image, ok := productInput(c)
	if !ok {
		return
	}
	product, err := h.svc.Products.UpdateProduct(c.Request.Context(), principal(c), id, req, image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Products.DeleteProduct(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
