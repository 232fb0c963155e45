package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"footballshop/internal/handlers"
	"footballshop/internal/middleware"
	"footballshop/internal/repositories"
	"footballshop/internal/services"
	"footballshop/pkg/rabbitmq"
	"footballshop/pkg/shopapi"
)

func main() {
	// --- Configuration ---
	// Set up Viper to read configuration from environment variables
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("SHOP_API_URL", "http://localhost:8000")
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("CART_DB", "cart.db")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("CART_STORE_KEY", "cart-store")
	viper.SetDefault("PRODUCTS_FILE", "data/products.json")
	viper.SetDefault("WHATSAPP_PHONE", "573136833122")
	viper.SetDefault("DELIVERY_CITY", "Bogota")
	viper.SetDefault("DELIVERY_METHOD", "standard")
	viper.SetDefault("RETURN_COUNTDOWN_SECONDS", 8)
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("JWT_SECRET", "change_me")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")

	// --- Initialize Database ---
	// The cart snapshot store defaults to a local SQLite file; a shared
	// Postgres can be selected with DB_DRIVER=postgres.
	var dialector gorm.Dialector
	switch viper.GetString("DB_DRIVER") {
	case "postgres":
		dialector = postgres.Open(viper.GetString("DATABASE_URL"))
	default:
		dialector = sqlite.Open(viper.GetString("CART_DB"))
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to open cart database: %v", err)
	}
	if err := db.AutoMigrate(&repositories.CartSnapshot{}); err != nil {
		log.Fatalf("Failed to migrate cart database: %v", err)
	}

	// --- Initialize RabbitMQ Client (optional) ---
	// The broker only carries payment confirmation events; the store
	// works without it.
	var mqClient *rabbitmq.Client
	if rabbitMQURL := viper.GetString("RABBITMQ_URL"); rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, payment events disabled: %v", err)
			mqClient = nil
		} else {
			defer mqClient.Close()
		}
	}

	// --- Initialize Shop API Client ---
	apiClient := shopapi.NewClient(shopapi.Config{
		BaseURL: viper.GetString("SHOP_API_URL"),
		Timeout: 15 * time.Second,
	})

	// --- Initialize Repositories ---
	cartRepo := repositories.NewGORMCartRepository(db)

	// --- Initialize Services ---
	cartService := services.NewCartService(cartRepo, viper.GetString("CART_STORE_KEY"))
	catalogService := services.NewCatalogService(apiClient, viper.GetString("PRODUCTS_FILE"))
	checkoutService := services.NewCheckoutService(
		cartService,
		apiClient,
		viper.GetString("WHATSAPP_PHONE"),
		viper.GetString("DELIVERY_CITY"),
		viper.GetString("DELIVERY_METHOD"),
	)

	// --- Initialize Handlers ---
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	cartHandler := handlers.NewCartHandler(cartService)

	var events services.PaymentEventPublisher
	if mqClient != nil {
		events = mqClient
	}
	checkoutHandler := handlers.NewCheckoutHandler(
		checkoutService,
		cartService,
		apiClient,
		events,
		viper.GetInt("RETURN_COUNTDOWN_SECONDS"),
	)

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New()) // Request logger

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")

	// Catalog browsing is public
	catalogHandler.RegisterRoutes(apiV1)

	// Cart and checkout are only reachable with a session; tokens come
	// from the external auth provider and are verified here only.
	sessionRoutes := apiV1.Group("", middleware.SessionRequired([]byte(viper.GetString("JWT_SECRET"))))
	cartHandler.RegisterRoutes(sessionRoutes)
	checkoutHandler.RegisterRoutes(sessionRoutes)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
