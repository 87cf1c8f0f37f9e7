package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/adityatechndevoops/OliveStore/internal/apperror"
	"github.com/adityatechndevoops/OliveStore/internal/models"
	"github.com/adityatechndevoops/OliveStore/internal/service"
	"github.com/adityatechndevoops/OliveStore/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error *apperror.AppError `json:"error"`
}

// respondError renders err as an AppError. Internal causes are logged, never
// returned.
func respondError(c *gin.Context, err error) {
	appErr := apperror.From(err)
	if appErr.Status >= http.StatusInternalServerError {
		util.LoggerFromContext(c.Request.Context()).Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(errors.Unwrap(appErr)))
	}
	c.AbortWithStatusJSON(appErr.Status, errorResponse{Error: appErr})
}

// bindJSON decodes the body into dst, reporting malformed input as a
// validation error.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperror.Validation(fmt.Sprintf("invalid request body: %v", err)))
		return false
	}
	return true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperror.Validation("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

// listQuery reads page and limit. Absent values stay zero.
func listQuery(c *gin.Context) (service.ListQuery, bool) {
	var q service.ListQuery
	for name, dst := range map[string]*int{"page": &q.Page, "limit": &q.Limit} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(c, apperror.Validation(fmt.Sprintf("%s must be a positive integer", name)))
			return q, false
		}
		if name == "page" && n > models.MaxPage {
			respondError(c, apperror.Validation(fmt.Sprintf("page must not exceed %d", models.MaxPage)))
			return q, false
		}
		*dst = n
	}
	return q, true
}

// optionalUUIDQuery parses an optional UUID query parameter.
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, apperror.Validation(fmt.Sprintf("invalid %s", name)))
		return nil, false
	}
	return &id, true
}
