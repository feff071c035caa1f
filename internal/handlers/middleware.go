package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const operatorIDKey = "operatorId"

var (
	errMissingAuthHeader = errors.New("missing Authorization header")
	errBadAuthHeader     = errors.New("invalid Authorization header format")
)

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingAuthHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || token == "" {
		return "", errBadAuthHeader
	}
	return token, nil
}

func (h *Handler) operatorIdMiddleware(c *gin.Context) {
	token, err := bearerToken(c.GetHeader("Authorization"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	operatorId, err := h.services.ParseToken(token)
	if err != nil {
		h.log.Debugw("auth_rejected", "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	c.Set(operatorIDKey, operatorId)
	c.Next()
}
