package main

import (
	"log"
	"time"

	"footprint-app/config"
	"footprint-app/database"
	routes "footprint-app/internal/app/http"
	"footprint-app/internal/app/http/middleware"
	"footprint-app/internal/domain/access"
	"footprint-app/internal/identity"
	"footprint-app/internal/infra/cache"
	"footprint-app/internal/infra/events"
	"footprint-app/internal/logger"
	"footprint-app/internal/pages"
	"footprint-app/internal/tilestore"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()

	zl, err := logger.New(config.LOG_LEVEL)
	if err != nil {
		log.Fatal("❌ Failed to build logger:", err)
	}
	defer zl.Sync()

	database.InitDB(config.DB_URL, config.SERIAL_FLOOR)

	// a slug never changes owner, so cached entries never go stale
	var slugs cache.SlugCache = cache.NewMemorySlugCache()
	if config.REDIS_ADDR != "" {
		rc, err := cache.NewRedisSlugCache(config.REDIS_ADDR, config.REDIS_PASSWORD, config.SLUG_CACHE_TTL)
		if err != nil {
			zl.Warn("redis unavailable, caching slugs in process", zap.Error(err))
		} else {
			defer rc.Close()
			slugs = rc
			zl.Info("✅ Slug cache connected", zap.String("addr", config.REDIS_ADDR))
		}
	}

	var publisher events.Publisher = events.Nop{}
	if config.AMQP_URL != "" {
		p, err := events.DialAMQP(config.AMQP_URL, config.AMQP_EXCHANGE)
		if err != nil {
			zl.Warn("amqp unavailable, events are dropped", zap.Error(err))
		} else {
			defer p.Close()
			publisher = p
			zl.Info("✅ Event publisher connected", zap.String("exchange", config.AMQP_EXCHANGE))
		}
	}

	store := tilestore.New(database.DB, config.REORDER_CONCURRENCY, zl)
	resolver := pages.NewResolver(database.DB, slugs, zl)
	gate := pages.NewGate(resolver, store, zl)

	services := routes.Services{
		DB:        database.DB,
		Allocator: identity.NewAllocator(database.DB, identity.NewTableCounter(database.DB), config.SERIAL_FLOOR, publisher, zl),
		Resolver:  resolver,
		Gate:      gate,
		Pages:     pages.NewService(database.DB, resolver, gate, store, zl),
		Tiles:     store,
		Policy:    access.Policy{StrictSlugScope: config.STRICT_SLUG_SCOPE},
		Events:    publisher,
		Log:       zl,
	}
	if !services.Policy.StrictSlugScope {
		zl.Warn("serial-scoped tile mutations trust the slug; set STRICT_SLUG_SCOPE=true to require the owner")
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(zl))

	// CORS before routes
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, services)

	zl.Info("listening", zap.String("port", config.PORT))
	if err := r.Run(":" + config.PORT); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
