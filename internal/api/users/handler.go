package users

import (
	"errors"
	"net/http"

	"footprint-app/config"
	"footprint-app/internal/app/http/middleware"
	"footprint-app/internal/domain/site"
	"footprint-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// GET /me
func (h *Handler) GetCurrentUser(c *gin.Context) {
	caller := middleware.CurrentIdentity(c)
	if caller == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var user users.User
	if err := db.Where("id = ?", caller.UserID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var page site.Footprint
	err := db.Where("user_id = ? AND is_primary = ?", user.ID, true).First(&page).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load page"})
		return
	}

	c.JSON(http.StatusOK, MeResponse{
		User: BuildUserDTO(user),
		Page: BuildPageDTO(config.APP_URL, &page),
	})
}
