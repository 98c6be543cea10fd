package handler

import (
	"errors"
	"net/http"
	"strings"

	"drinkbuddies/backend/internal/models"
	"drinkbuddies/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// currentUserKey is the gin context key holding the authenticated user.
const currentUserKey = "currentUser"

// RequireAuth resolves the Bearer token to a user and aborts with 401
// otherwise. As a side effect the user's online flag is refreshed, matching
// the presence behavior of the rest of the application.
func (h *Handler) RequireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
		return
	}

	username, err := h.Tokens.ParseAccessToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}

	user, err := h.Store.GetUserByUsername(username)
	if errors.Is(err, storage.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	if !user.IsActive {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Inactive user"})
		return
	}

	if err := h.Store.SetUserOnline(user.ID); err != nil {
		h.Log.Warn().Err(err).Str("user", user.ID).Msg("failed to refresh online flag")
	}

	c.Set(currentUserKey, user)
	c.Next()
}

// currentUser fetches the user stored by RequireAuth.
func currentUser(c *gin.Context) *models.User {
	u, _ := c.Get(currentUserKey)
	user, _ := u.(*models.User)
	return user
}
