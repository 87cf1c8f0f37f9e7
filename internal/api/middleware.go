package api

import (
	"strings"

	"github.com/adityatechndevoops/OliveStore/internal/apperror"
	"github.com/adityatechndevoops/OliveStore/internal/models"
	"github.com/adityatechndevoops/OliveStore/internal/policy"

	"github.com/gin-gonic/gin"
)

const userKey = "user"

// authMiddleware resolves the bearer token to a user loaded from the database.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || token == "" || token == header {
			respondError(c, apperror.Unauthorized("missing bearer token"))
			return
		}

		user, err := h.svc.Auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet(userKey).(*models.User)
}

func principal(c *gin.Context) policy.Principal {
	return policy.NewPrincipal(currentUser(c))
}
