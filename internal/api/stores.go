package api

import (
	"net/http"

	"github.com/adityatechndevoops/OliveStore/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listStores(c *gin.Context) {
	page, ok := listQuery(c)
	if !ok {
		return
	}
	q := service.ListStoresQuery{Status: c.Query("status"), ListQuery: page}

	stores, err := h.svc.Stores.ListStores(c.Request.Context(), principal(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stores)
}

func (h *Handler) createStore(c *gin.Context) {
	var req service.StoreRequest
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.svc.Stores.CreateStore(c.Request.Context(), principal(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (h *Handler) getStore(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	st, err := h.svc.Stores.GetStore(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) updateStore(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateStoreRequest
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.svc.Stores.UpdateStore(c.Request.Context(), principal(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) deleteStore(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Stores.DeleteStore(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// uploadStoreDocument expects multipart fields docType and document.
func (h *Handler) uploadStoreDocument(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	file, err := readFormFile(c, "document", false)
	if err != nil {
		respondError(c, err)
		return
	}

	st, err := h.svc.Stores.UploadDocument(c.Request.Context(), principal(c), id, c.PostForm("docType"), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
