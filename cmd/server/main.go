// @title           Nyumba Listings API
// @version         1.0.0
// @description     Backend API for the Nyumba property-rental marketplace: listing CRUD, favorites, geocoding, and the image upload pipeline (validate, compress, remote compression with direct-storage fallback).

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a Supabase JWT.

package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nyumba-backend/internal/config"
	"nyumba-backend/internal/database"
	"nyumba-backend/internal/geocode"
	"nyumba-backend/internal/handlers"
	"nyumba-backend/internal/logger"
	"nyumba-backend/internal/middleware"
	"nyumba-backend/internal/services"
	"nyumba-backend/internal/supabase"
	"nyumba-backend/internal/upload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.DatabaseURL == "" {
		zlog.Fatal("DATABASE_URL is required (Supabase PostgreSQL connection string)")
	}

	dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("failed to initialize database client", zap.Error(err))
	}
	defer dbClient.Close()

	migrator, err := database.NewMigrator(cfg.DatabaseURL, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize migrator", zap.Error(err))
	}
	if err := migrator.Run(); err != nil {
		migrator.Close()
		zlog.Fatal("migration failed", zap.Error(err))
	}
	migrator.Close()

	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		zlog.Fatal("failed to initialize Supabase client", zap.Error(err))
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseStorageBucket)
	if err != nil {
		zlog.Fatal("failed to initialize storage client", zap.Error(err))
	}

	realtimeClient := supabase.NewRealtimeClient(supabaseClient.Supabase)

	geocoder := geocode.NewGeocoder(cfg.GeocodingBaseURL, cfg.GeocodingToken, zlog)

	// Upload pipeline
	validator := upload.NewValidator(int64(cfg.MaxUploadSizeMB) << 20)
	compressor := upload.NewCompressor(upload.CompressOptions{}, zlog)
	remote := upload.NewRemoteCompressor(cfg.CompressFunctionURL, zlog)
	orchestrator := upload.NewOrchestrator(validator, compressor, remote, storageClient, upload.Options{
		MaxImages:            cfg.MaxImagesPerListing,
		Concurrency:          cfg.UploadConcurrency,
		RejectBatchOnInvalid: cfg.RejectBatchOnInvalid,
	}, zlog)

	imageService := services.NewImageService(orchestrator, dbClient, storageClient, realtimeClient, zlog)

	listingsHandler := handlers.NewListingsHandler(dbClient, imageService, geocoder, zlog)
	imagesHandler := handlers.NewImagesHandler(imageService, zlog)
	favoritesHandler := handlers.NewFavoritesHandler(dbClient, zlog)
	geocodeHandler := handlers.NewGeocodeHandler(geocoder)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.CORSOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(cfg.CORSOrigins, ",")
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/health", handlers.HealthHandler)

	api := router.Group("/api/v1")
	api.Use(rateLimiter.Middleware())
	api.Use(middleware.AuthMiddleware(cfg))

	api.POST("/listings", listingsHandler.CreateListing)
	api.GET("/listings", listingsHandler.ListListings)
	api.GET("/listings/:listing_id", listingsHandler.GetListing)
	api.PUT("/listings/:listing_id", listingsHandler.UpdateListing)
	api.DELETE("/listings/:listing_id", listingsHandler.DeleteListing)

	api.POST("/listings/:listing_id/images", imagesHandler.UploadImages)
	api.DELETE("/listings/:listing_id/images", imagesHandler.RemoveImage)

	api.GET("/favorites", favoritesHandler.ListFavorites)
	api.GET("/favorites/:listing_id", favoritesHandler.CheckFavorite)
	api.POST("/favorites/:listing_id", favoritesHandler.AddFavorite)
	api.DELETE("/favorites/:listing_id", favoritesHandler.RemoveFavorite)

	api.GET("/geocode", geocodeHandler.Geocode)

	zlog.Info("server starting", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}
