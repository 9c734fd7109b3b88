package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-finder/internal/api"
	"recipe-finder/internal/core/cache"
	"recipe-finder/internal/core/detection"
	"recipe-finder/internal/core/favorites"
	"recipe-finder/internal/core/history"
	"recipe-finder/internal/core/mealdb"
	"recipe-finder/internal/core/nutrition"
	"recipe-finder/internal/core/pantry"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/storage"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（.env 由 LoadConfig 讀取）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("mealdb_base_url", cfg.MealDB.BaseURL),
		zap.String("usda_api_key", config.MaskSecret(cfg.Nutrition.APIKey)),
		zap.String("detection_endpoint", cfg.Detection.Endpoint),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	// 初始化儲存
	store, err := storage.New(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize storage", zap.Error(err))
	}
	defer store.Close()

	// 初始化快取
	mealCache := cache.NewManager("mealdb", cfg.Cache)
	defer mealCache.Close()
	nutritionCache := cache.NewManager("nutrition", cfg.Cache)
	defer nutritionCache.Close()

	// 初始化服務
	mealClient := mealdb.NewClient(cfg.MealDB, mealCache)
	enricher := recipe.NewEnricher(mealClient, cfg.MealDB.EnrichLimit, cfg.MealDB.EnrichWorkers, cfg.MealDB.EnrichTimeout)
	historySvc := history.NewService(store)
	pantrySvc := pantry.NewService(store)
	favoritesSvc := favorites.NewService(store, enricher, historySvc)

	services := &api.Services{
		Store:     store,
		Workspace: recipe.NewWorkspace(mealClient, enricher, pantrySvc, historySvc, favoritesSvc),
		Favorites: favoritesSvc,
		Pantry:    pantrySvc,
		History:   historySvc,
		Nutrition: nutrition.NewService(cfg.Nutrition, nutritionCache),
		Detection: detection.NewService(cfg.Detection),
		Caches:    []*cache.Manager{mealCache, nutritionCache},
	}

	// 設置路由
	router, cleanup, err := api.SetupRouter(cfg, services)
	if err != nil {
		common.LogFatal("Failed to setup router", zap.Error(err))
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("name", cfg.App.Name),
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}
