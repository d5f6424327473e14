package auth

import (
	"errors"
	"net/http"
	"time"

	"footprint-app/config"
	"footprint-app/internal/api/respond"
	"footprint-app/internal/domain/site"
	"footprint-app/internal/domain/users"
	"footprint-app/internal/identity"
	"footprint-app/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 24 * time.Hour

type Handler struct {
	db    *gorm.DB
	alloc *identity.Allocator
	log   *zap.Logger
}

func NewHandler(db *gorm.DB, alloc *identity.Allocator, log *zap.Logger) *Handler {
	return &Handler{db: db, alloc: alloc, log: logger.OrNop(log)}
}

func isPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, c := range password {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			hasLetter = true
		case '0' <= c && c <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// POST /register
// A new email gets a serial, a default page and a token. A known email only
// gets its serial back: proving ownership of it is what /login is for.
func (h *Handler) Register(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BadRequest(c, "Email is required")
		return
	}

	var opts []identity.Option
	if input.Password != "" {
		if !isPasswordStrong(input.Password) {
			respond.BadRequest(c, "Password must be at least 8 characters long and contain both letters and numbers")
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		opts = append(opts, identity.WithPasswordHash(string(hashed)))
	}

	res, err := h.alloc.Allocate(c.Request.Context(), input.Email, opts...)
	if err != nil {
		respond.Error(c, err)
		return
	}

	resp := gin.H{
		"serial":  res.Serial,
		"existed": res.Existed,
	}
	if res.Existed {
		c.JSON(http.StatusOK, resp)
		return
	}

	token, err := issueAppJWT(res.User)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}
	resp["slug"] = res.Page.Slug
	resp["public_url"] = site.BuildPublicURL(config.APP_URL, res.Page.Slug)
	resp["token"] = token
	c.JSON(http.StatusCreated, resp)
}

// POST /login
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BadRequest(c, "Email and password are required")
		return
	}

	var user users.User
	err := h.db.WithContext(c.Request.Context()).
		Where("email = ?", identity.NormalizeEmail(input.Email)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		h.log.Error("login lookup failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Login unavailable"})
		return
	}

	if user.Password == nil || *user.Password == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "This account has no password. Use Google sign-in."})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := issueAppJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tokenString, "serial": user.Serial})
}

// issueAppJWT signs the verified identity the auth middleware reads back.
func issueAppJWT(user users.User) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"serial":  user.Serial,
		"role":    user.Role,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	})
	return t.SignedString([]byte(config.JWT_SECRET))
}
