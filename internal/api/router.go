package api

import (
	"fmt"
	"time"

	"recipe-finder/internal/api/handlers"
	"recipe-finder/internal/api/handlers/health"
	"recipe-finder/internal/api/middleware"
	"recipe-finder/internal/core/cache"
	"recipe-finder/internal/core/detection"
	"recipe-finder/internal/core/favorites"
	"recipe-finder/internal/core/history"
	"recipe-finder/internal/core/nutrition"
	"recipe-finder/internal/core/pantry"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services 路由需要的服務
type Services struct {
	Store     storage.Store
	Workspace *recipe.Workspace
	Favorites *favorites.Service
	Pantry    *pantry.Service
	History   *history.Service
	Nutrition *nutrition.Service
	Detection *detection.Service
	Caches    []*cache.Manager
}

func (s *Services) validate() error {
	switch {
	case s == nil:
		return fmt.Errorf("services are required")
	case s.Store == nil:
		return fmt.Errorf("storage is required")
	case s.Workspace == nil:
		return fmt.Errorf("recipe workspace is required")
	case s.Favorites == nil, s.Pantry == nil, s.History == nil:
		return fmt.Errorf("collection services are required")
	case s.Nutrition == nil, s.Detection == nil:
		return fmt.Errorf("nutrition and detection services are required")
	}
	return nil
}

// SetupRouter 設置路由；回傳的 cleanup 用於停止中間件的背景協程
func SetupRouter(cfg *config.Config, svcs *Services) (*gin.Engine, func(), error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if err := svcs.validate(); err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		return nil, nil, fmt.Errorf("failed to setup router: %w", err)
	}

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	dedup := middleware.NewDeduplicator(cfg.DedupWindow)
	router.Use(dedup.Middleware())
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg, svcs.Store, svcs.Caches...)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	recipeHandler := handlers.NewRecipeHandler(svcs.Workspace, svcs.History)
	favoritesHandler := handlers.NewFavoritesHandler(svcs.Favorites, svcs.Workspace)
	pantryHandler := handlers.NewPantryHandler(svcs.Pantry)
	historyHandler := handlers.NewHistoryHandler(svcs.History)
	nutritionHandler := handlers.NewNutritionHandler(svcs.Nutrition)
	detectHandler := handlers.NewDetectHandler(svcs.Detection, svcs.Workspace)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/tags", handlers.HandleTags)

		recipes := v1.Group("/recipes")
		{
			recipes.GET("", recipeHandler.List)
			recipes.GET("/search", recipeHandler.Search)
			recipes.GET("/category/:name", recipeHandler.SearchByCategory)
			recipes.GET("/area/:name", recipeHandler.SearchByArea)
			recipes.GET("/:id", recipeHandler.Details)
			recipes.PATCH("/:id/override", recipeHandler.Override)
		}

		meta := v1.Group("/meta")
		{
			meta.GET("/categories", recipeHandler.Categories)
			meta.GET("/areas", recipeHandler.Areas)
		}

		favs := v1.Group("/favorites")
		{
			favs.GET("", favoritesHandler.List)
			favs.POST("", favoritesHandler.Toggle)
			favs.POST("/enrich", favoritesHandler.Enrich)
			favs.DELETE("/:id", favoritesHandler.Remove)
		}

		pantryGroup := v1.Group("/pantry")
		{
			pantryGroup.GET("", pantryHandler.List)
			pantryGroup.POST("", pantryHandler.Add)
			pantryGroup.DELETE("", pantryHandler.Clear)
			pantryGroup.DELETE("/:item", pantryHandler.Remove)
			pantryGroup.POST("/match", handlers.HandleMatch)
			pantryGroup.POST("/search", recipeHandler.SearchByPantry)
		}

		hist := v1.Group("/history")
		{
			hist.GET("/recent", historyHandler.Recent)
			hist.GET("/recommendations", historyHandler.Recommendations)
			hist.DELETE("", historyHandler.Clear)
		}

		nutri := v1.Group("/nutrition")
		{
			nutri.GET("/search", nutritionHandler.Search)
			nutri.POST("/estimate", nutritionHandler.Estimate)
		}

		detect := v1.Group("/detect")
		{
			detect.POST("", detectHandler.Detect)
			detect.POST("/labels", detectHandler.Labels)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Bool("detector_enabled", svcs.Detection.Enabled()),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, dedup.Close, nil
}
