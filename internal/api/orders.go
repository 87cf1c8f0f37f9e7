package api

import (
	"net/http"

	"github.com/adityatechndevoops/OliveStore/internal/models"
	"github.com/adityatechndevoops/OliveStore/internal/service"

	"github.com/gin-gonic/gin"
)

func ordersQuery(c *gin.Context) (service.ListOrdersQuery, bool) {
	page, ok := listQuery(c)
	if !ok {
		return service.ListOrdersQuery{}, false
	}
	storeID, ok := optionalUUIDQuery(c, "storeId")
	if !ok {
		return service.ListOrdersQuery{}, false
	}
	return service.ListOrdersQuery{Status: c.Query("status"), StoreID: storeID, ListQuery: page}, true
}

func (h *Handler) listOrders(c *gin.Context) {
	q, ok := ordersQuery(c)
	if !ok {
		return
	}
	page, err := h.svc.Orders.ListOrders(c.Request.Context(), principal(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) listMyStoreOrders(c *gin.Context) {
	q, ok := ordersQuery(c)
	if !ok {
		return
	}
	page, err := h.svc.Orders.ListMyStoreOrders(c.Request.Context(), principal(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// createOrder handles order creation
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	order, err := h.svc.Orders.CreateOrder(c.Request.Context(), principal(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.svc.Orders.GetOrder(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.svc.Orders.UpdateStatus(c.Request.Context(), principal(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) addOrderComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.svc.Orders.AddComment(c.Request.Context(), principal(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) updateRefundSummary(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var patch models.RefundSummaryPatch
	if !bindJSON(c, &patch) {
		return
	}

	order, err := h.svc.Orders.UpdateRefundSummary(c.Request.Context(), principal(c), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) updateOrderIssues(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateIssuesRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.svc.Orders.UpdateIssues(c.Request.Context(), principal(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
