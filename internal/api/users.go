package api

import (
	"net/http"

	"github.com/adityatechndevoops/OliveStore/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listUsers(c *gin.Context) {
	page, ok := listQuery(c)
	if !ok {
		return
	}
	users, err := h.svc.Users.ListUsers(c.Request.Context(), principal(c), service.ListUsersQuery{Query: c.Query("q"), ListQuery: page})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) updateUserRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.svc.Users.UpdateUserRole(c.Request.Context(), principal(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Users.DeleteUser(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) dashboardStats(c *gin.Context) {
	stats, err := h.svc.Dashboard.Stats(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
