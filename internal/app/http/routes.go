package routes

import (
	adminapi "footprint-app/internal/api/admin"
	authapi "footprint-app/internal/api/auth"
	"footprint-app/internal/api/billing"
	siteapi "footprint-app/internal/api/site"
	stripewebhooks "footprint-app/internal/api/stripewebhook"
	tilesapi "footprint-app/internal/api/tiles"
	usersapi "footprint-app/internal/api/users"
	"footprint-app/internal/app/http/middleware"
	"footprint-app/internal/domain/access"
	"footprint-app/internal/domain/users"
	"footprint-app/internal/identity"
	"footprint-app/internal/infra/events"
	"footprint-app/internal/pages"
	"footprint-app/internal/tilestore"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services is everything the handlers need, built once in main.
type Services struct {
	DB        *gorm.DB
	Allocator *identity.Allocator
	Resolver  *pages.Resolver
	Gate      *pages.Gate
	Pages     *pages.Service
	Tiles     *tilestore.Store
	Policy    access.Policy
	Events    events.Publisher
	Log       *zap.Logger
}

// URL-bearing fields and passwords are left for the handlers; the store sanitizes text.
var rawFields = []string{"url", "image_url", "avatar_url", "room_id", "draft_slug", "password"}

func RegisterRoutes(r *gin.Engine, s Services) {
	auth := authapi.NewHandler(s.DB, s.Allocator, s.Log)
	me := usersapi.NewHandler(s.DB)
	admin := adminapi.NewHandler(s.DB)
	site := siteapi.NewHandler(s.Resolver, s.Gate, s.Pages, s.Tiles)
	tiles := tilesapi.NewHandler(s.Tiles)
	claims := billing.NewHandler(s.Log)
	webhook := stripewebhooks.NewHandler(s.Allocator, s.Events, s.Log)

	// raw body: the signature covers it
	r.POST("/webhook", webhook.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware(rawFields...))

	public.POST("/register", auth.Register)
	public.POST("/login", auth.Login)
	public.GET("/auth/google", auth.GoogleStart)
	public.GET("/auth/google/callback", auth.GoogleCallback)
	public.POST("/claim/checkout", claims.CreateClaimCheckout)
	public.GET("/claim/price", claims.GetClaimPrice)

	public.GET("/resolve/:slug", site.Resolve)
	public.GET("/p/:slug", site.PublicView)

	// Page-scoped: anonymous callers get {owned:false}, mutations need the owner.
	pagesGroup := public.Group("/pages")
	pagesGroup.Use(middleware.OptionalAuth())
	pagesGroup.GET("/:slug/ownership", site.Ownership)

	owner := public.Group("/pages")
	owner.Use(middleware.AuthMiddleware())
	owner.PUT("/:slug", site.UpdatePage)
	owner.POST("/:slug/content", site.AddContent)
	owner.PUT("/:slug/content/reorder", site.ReorderContent)
	owner.DELETE("/:slug/content/:id", site.DeleteContent)

	// Serial-scoped: trusted by slug unless the policy is strict.
	slugs := public.Group("/slugs/:slug")
	slugs.Use(middleware.OptionalAuth(), middleware.RequireSlugScope(s.Gate, s.Policy))
	slugs.POST("/links", tiles.AddLink)
	slugs.POST("/library", tiles.AddLibrary)
	slugs.GET("/rooms", tiles.ListRooms)
	slugs.POST("/rooms", tiles.CreateRoom)
	slugs.POST("/rooms/seed", tiles.SeedRooms)
	slugs.GET("/:collection", tiles.List)
	slugs.PUT("/:collection/reorder", tiles.Reorder)
	slugs.DELETE("/:collection/:id", tiles.Delete)
	slugs.PUT("/:collection/:id/room", tiles.AssignRoom)

	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware())
	authed.GET("/me", me.GetCurrentUser)

	// role is granted in the database, never through the API
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.AuthMiddleware(), middleware.RequireRole(users.RoleAdmin))
	adminGroup.GET("/dashboard", admin.AdminDashboard)
	adminGroup.GET("/stats", admin.GetAdminStats)
	adminGroup.GET("/identities", admin.ListIdentities)
	adminGroup.GET("/identities/:serial", admin.GetIdentity)
}
