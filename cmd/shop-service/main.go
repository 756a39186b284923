package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"shop-platform/internal/api"
	"shop-platform/internal/config"
	"shop-platform/internal/entity"
	"shop-platform/internal/gateway"
	"shop-platform/internal/repository"
	"shop-platform/internal/service"
	"shop-platform/migrations"
)

func connectDBEnv(host, port, user, pass, dbname string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)

	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Printf("Connected to DB %s", dbname)
				return db, nil
			}
		}
		log.Printf("Retry %d: Failed to connect to DB %s (%s:%s): %v", i+1, dbname, host, port, err)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB %s at %s:%s after retries: %v", dbname, host, port, err)
}

// seedProducts is the launch catalog.
var seedProducts = []*entity.Product{
	{ID: 1, Name: "Relogio Smart", Price: 2.01, Category: "Eletronicos", ImageURL: "img/relogio.png"},
	{ID: 2, Name: "Fone Bluetooth", Price: 39.90, Category: "Eletronicos", ImageURL: "img/fone.png"},
	{ID: 3, Name: "Mini Drone", Price: 129.90, Category: "Brinquedos", ImageURL: "img/drone.png"},
	{ID: 4, Name: "Cabo USB-C", Price: 9.90, Category: "Acessorios", ImageURL: "img/cabo.png"},
	{ID: 5, Name: "Suporte Celular", Price: 14.90, Category: "Acessorios", ImageURL: "img/suporte.png"},
}

func main() {
	config.Load()

	db, err := connectDBEnv(
		config.Getenv("DB_HOST", "localhost"),
		config.Getenv("DB_PORT", "3306"),
		config.Getenv("DB_USER", "root"),
		config.Getenv("DB_PASS", ""),
		config.Getenv("DB_NAME", "shop"),
	)
	if err != nil {
		panic(err)
	}

	if err := migrations.AutoMigrateProducts(3, db); err != nil {
		log.Fatalf("Failed to migrate products table: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: config.RedisAddr(),
	})

	orderLog, err := repository.NewOrderLog(config.OrdersDir())
	if err != nil {
		log.Fatalf("Failed to open order log: %v", err)
	}

	kafkaWriter := config.NewKafkaWriter("order-topic")

	productRepo := repository.NewProductRepository(db)
	catalogService := service.NewCatalogService(productRepo, rdb)
	cartService := service.NewCartService(rdb)
	paymentGateway := gateway.NewMercadoPago(config.GatewayBaseURL(), config.AccessToken())
	paymentService := service.NewPaymentService(
		paymentGateway,
		orderLog,
		service.NewKafkaOrderEvents(kafkaWriter),
		cartService,
		config.PublicURL(),
	)

	if err := catalogService.Seed(context.Background(), seedProducts); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	catalogHandler := api.NewCatalogHandler(catalogService)
	cartHandler := api.NewCartHandler(cartService, catalogService)
	paymentHandler := api.NewPaymentHandler(paymentService, cartService)

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(5),
				Burst:     10,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.Request().RemoteAddr, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	e.GET("/products", catalogHandler.GetProducts)
	e.GET("/products/:id", catalogHandler.GetProduct)
	e.GET("/categories", catalogHandler.GetCategories)

	e.POST("/cart", cartHandler.CreateSession)
	e.GET("/cart/:sid", cartHandler.GetCart)
	e.POST("/cart/:sid/items", cartHandler.AddItem)
	e.DELETE("/cart/:sid/items/:index", cartHandler.RemoveItem)

	e.POST("/create_preference", paymentHandler.CreatePreference)
	e.POST("/process_pix", paymentHandler.ProcessPix)
	e.POST("/process_card", paymentHandler.ProcessCard)
	e.GET("/payment_status/:id", paymentHandler.GetPaymentStatus)
	e.DELETE("/payment_watch/:id", paymentHandler.CancelWatch)

	orders := e.Group("/orders")
	orders.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(config.JWTSecret()),
	}))
	orders.GET("", paymentHandler.GetOrders)

	e.GET("/shop/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "shop-service",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	e.Logger.Fatal(e.Start(":" + config.Getenv("SHOP_PORT", "8082")))
}
