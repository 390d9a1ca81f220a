package api

import (
	"fmt"
	"net/http"
	"time"

	"catsync/internal/api/handlers"
	"catsync/internal/api/middleware"
	"catsync/internal/config"
	"catsync/internal/database"
	"catsync/internal/logger"
	"catsync/internal/sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database, orchestrator *sync.Orchestrator) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))

	// Initialize handlers
	productHandler := handlers.NewProductHandler(db.DB, logger)
	syncHandler := handlers.NewSyncHandler(orchestrator, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Products
		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/:code", productHandler.Get)
		}

		// Sync passes
		syncGroup := v1.Group("/sync")
		{
			syncGroup.POST("/fetch", syncHandler.Fetch)
			syncGroup.POST("/products", syncHandler.Push)
			syncGroup.POST("/reference-data", syncHandler.RefData)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      cors.Default().Handler(s.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}
