package admin

import (
	"net/http"
	"strconv"
	"time"

	"footprint-app/internal/api/respond"
	"footprint-app/internal/apperr"
	"footprint-app/internal/domain/site"
	"footprint-app/internal/domain/tiles"
	"footprint-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminIdentity struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Serial       int64     `json:"serial"`
	Role         string    `json:"role"`
	AuthProvider string    `json:"auth_provider"`
	Slug         *string   `json:"slug,omitempty"`
	IsPublic     *bool     `json:"is_public,omitempty"`
	Views        int64     `json:"views"`
	CreatedAt    time.Time `json:"created_at"`
}

type AdminStats struct {
	TotalIdentities       int64            `json:"total_identities"`
	CounterValue          int64            `json:"counter_value"`
	HighestSerial         int64            `json:"highest_serial"`
	IdentitiesPerProvider map[string]int64 `json:"identities_per_provider"`
	PublicPages           int64            `json:"public_pages"`
	HiddenPages           int64            `json:"hidden_pages"`
	TotalViews            int64            `json:"total_views"`
	ContentTiles          int64            `json:"content_tiles"`
	LinkTiles             int64            `json:"link_tiles"`
	LibraryItems          int64            `json:"library_items"`
	Rooms                 int64            `json:"rooms"`
}

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) AdminDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the admin dashboard 👑",
	})
}

// GET /admin/identities?limit=&after=
// Pages through identities in serial order, starting after the given serial.
func (h *Handler) ListIdentities(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 500 {
		respond.BadRequest(c, "limit must be between 1 and 500")
		return
	}
	after, err := strconv.ParseInt(c.DefaultQuery("after", "0"), 10, 64)
	if err != nil {
		respond.BadRequest(c, "after must be a serial number")
		return
	}

	var rows []AdminIdentity
	err = h.db.WithContext(c.Request.Context()).
		Table("users").
		Select(`users.id, users.email, users.serial, users.role, users.auth_provider, users.created_at,
			footprints.slug, footprints.is_public, COALESCE(footprints.views, 0) AS views`).
		Joins("LEFT JOIN footprints ON footprints.user_id = users.id AND footprints.is_primary = ?", true).
		Where("users.serial > ?", after).
		Order("users.serial ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		respond.Error(c, apperr.FromDB(err, "Failed to load identities"))
		return
	}
	if rows == nil {
		rows = []AdminIdentity{}
	}
	c.JSON(http.StatusOK, rows)
}

// GET /admin/identities/:serial
func (h *Handler) GetIdentity(c *gin.Context) {
	serial, err := strconv.ParseInt(c.Param("serial"), 10, 64)
	if err != nil {
		respond.BadRequest(c, "serial must be a number")
		return
	}
	db := h.db.WithContext(c.Request.Context())

	var user users.User
	if err := db.Where("serial = ?", serial).First(&user).Error; err != nil {
		respond.Error(c, apperr.FromDB(err, "Identity not found"))
		return
	}

	var pages []site.Footprint
	if err := db.Where("user_id = ?", user.ID).Order("is_primary DESC, created_at ASC").Find(&pages).Error; err != nil {
		respond.Error(c, apperr.FromDB(err, "Failed to load pages"))
		return
	}

	var links, library int64
	db.Model(&tiles.LinkTile{}).Where("owner_serial = ?", serial).Count(&links)
	db.Model(&tiles.LibraryItem{}).Where("owner_serial = ?", serial).Count(&library)

	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"pages":         pages,
		"link_tiles":    links,
		"library_items": library,
	})
}

func (h *Handler) GetAdminStats(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())
	stats := AdminStats{IdentitiesPerProvider: map[string]int64{}}

	if err := db.Model(&users.User{}).Count(&stats.TotalIdentities).Error; err != nil {
		respond.Error(c, apperr.FromDB(err, "Failed to load stats"))
		return
	}
	db.Model(&users.User{}).Select("COALESCE(MAX(serial), 0)").Scan(&stats.HighestSerial)
	db.Model(&users.SerialCounter{}).
		Where("name = ?", users.UserSerialCounter).
		Select("value").
		Scan(&stats.CounterValue)

	db.Model(&site.Footprint{}).Where("is_public = ?", true).Count(&stats.PublicPages)
	db.Model(&site.Footprint{}).Where("is_public = ?", false).Count(&stats.HiddenPages)
	db.Model(&site.Footprint{}).Select("COALESCE(SUM(views), 0)").Scan(&stats.TotalViews)

	db.Model(&tiles.ContentTile{}).Count(&stats.ContentTiles)
	db.Model(&tiles.LinkTile{}).Count(&stats.LinkTiles)
	db.Model(&tiles.LibraryItem{}).Count(&stats.LibraryItems)
	db.Model(&tiles.Room{}).Count(&stats.Rooms)

	type providerCount struct {
		AuthProvider string
		Count        int64
	}
	var counts []providerCount
	db.Table("users").
		Select("auth_provider, COUNT(id) AS count").
		Group("auth_provider").
		Scan(&counts)
	for _, pc := range counts {
		stats.IdentitiesPerProvider[pc.AuthProvider] = pc.Count
	}

	c.JSON(http.StatusOK, stats)
}
