package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/saccohub/backend/docs"
	"github.com/saccohub/backend/internal/config"
	"github.com/saccohub/backend/internal/database"
	"github.com/saccohub/backend/internal/handlers"
	mW "github.com/saccohub/backend/internal/middleware"
	"github.com/saccohub/backend/internal/services"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title SACCO Core Banking API
// @version 1.0
// @description Transaction processing and double-entry ledger for SACCO member accounts
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")

	viper.BindEnv("limits.minimum_deposit_amount", "LIMITS_MINIMUM_DEPOSIT_AMOUNT")
	viper.BindEnv("limits.daily_deposit_limit", "LIMITS_DAILY_DEPOSIT_LIMIT")
	viper.BindEnv("limits.minimum_withdrawal_amount", "LIMITS_MINIMUM_WITHDRAWAL_AMOUNT")
	viper.BindEnv("limits.daily_withdrawal_limit", "LIMITS_DAILY_WITHDRAWAL_LIMIT")
	viper.BindEnv("limits.withdrawal_fee", "LIMITS_WITHDRAWAL_FEE")
	viper.BindEnv("limits.share_value", "LIMITS_SHARE_VALUE")
	viper.BindEnv("limits.max_shares_per_purchase", "LIMITS_MAX_SHARES_PER_PURCHASE")
	viper.BindEnv("limits.minimum_repayment_amount", "LIMITS_MINIMUM_REPAYMENT_AMOUNT")
	viper.BindEnv("limits.maximum_transaction_amount", "LIMITS_MAXIMUM_TRANSACTION_AMOUNT")
	viper.BindEnv("limits.wallet_minimum_transaction", "LIMITS_WALLET_MINIMUM_TRANSACTION")
	viper.BindEnv("limits.wallet_daily_limit", "LIMITS_WALLET_DAILY_LIMIT")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "SACCO Core Banking API"
	docs.SwaggerInfo.Description = "Transaction processing and double-entry ledger for SACCO member accounts"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	// Initialize services
	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	limits := config.LoadLimits()

	transactionService := services.NewTransactionService(db, redisClient, limits)
	transactionHandler := handlers.NewTransactionHandler(transactionService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Post("/transactions", transactionHandler.Submit)
			r.Get("/transactions/{txNumber}", transactionHandler.GetTransaction)
			r.Get("/accounts/{accountID}/balance", transactionHandler.AccountBalance)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
