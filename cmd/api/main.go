package main

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/robfig/cron"
	"go.uber.org/zap"

	"furniture-shop-backend/internal/config"
	"furniture-shop-backend/internal/order"
	"furniture-shop-backend/internal/product"
	"furniture-shop-backend/internal/user"
	"furniture-shop-backend/internal/wishlist"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()
	mustBootstrapSchema(db)

	app := fiber.New()
	setupCORS(app)
	app.Use(requestLogger(logger))

	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	productRepo := product.NewPostgresRepository(db)
	productService := product.NewService(productRepo)
	productHandler := product.NewHandler(productService, userService)

	wishlistHandler := wishlist.NewHandler(wishlist.NewService(wishlist.NewPostgresRepository(db)), productService)

	orderService := order.NewService(order.NewPostgresRepository(db), productService, logger)
	orderHandler := order.NewHandler(orderService, userService)

	// public surface first: catalog reads and auth never require a token
	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)

	// dev endpoint: reseed the catalog and ensure an admin account exists
	if cfg.AllowSeed {
		registerSeedRoute(app, productService, userService, logger)
	}

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
	}))

	requireAdmin := user.RequireAdmin(userService)
	userHandler.RegisterProtectedRoutes(app, requireAdmin)
	productHandler.RegisterProtectedRoutes(app, requireAdmin)
	wishlistHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app, requireAdmin)

	// periodically cancel unpaid pending orders and return their stock
	c := cron.New()
	if err := c.AddFunc("@every 1h", func() {
		orderService.CancelStalePending(cfg.StaleOrderMaxAge)
	}); err != nil {
		logger.Fatal("could not schedule order cleanup", zap.Error(err))
	}
	c.Start()
	defer c.Stop()

	logger.Info("starting server", zap.String("addr", cfg.Addr))
	if err := app.Listen(cfg.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("took", time.Since(start)))
		return err
	}
}

func mustOpenDB(dbURL string) *sql.DB {
	if dbURL == "" {
		panic("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		panic(err)
	}

	if err := db.Ping(); err != nil {
		panic(err)
	}

	return db
}

func mustBootstrapSchema(db *sql.DB) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'customer',
			phone TEXT,
			address TEXT,
			wishlist INTEGER[] NOT NULL DEFAULT '{}',
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS product (
			product_id SERIAL PRIMARY KEY,
			product_name TEXT NOT NULL,
			description TEXT NOT NULL,
			price NUMERIC NOT NULL DEFAULT 0,
			original_price NUMERIC,
			category TEXT NOT NULL,
			brand TEXT,
			material TEXT,
			color TEXT,
			count_in_stock INT NOT NULL DEFAULT 0,
			is_available BOOLEAN NOT NULL DEFAULT TRUE,
			featured BOOLEAN NOT NULL DEFAULT FALSE,
			images TEXT[] NOT NULL DEFAULT '{}',
			reviews JSONB NOT NULL DEFAULT '[]',
			rating NUMERIC NOT NULL DEFAULT 0,
			num_reviews INT NOT NULL DEFAULT 0,
			total_sold INT NOT NULL DEFAULT 0,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			order_id SERIAL PRIMARY KEY,
			user_id INT NOT NULL,
			order_items JSONB NOT NULL DEFAULT '[]',
			shipping_address JSONB NOT NULL DEFAULT '{}',
			payment_method TEXT,
			payment_result JSONB,
			items_price NUMERIC NOT NULL DEFAULT 0,
			tax_price NUMERIC NOT NULL DEFAULT 0,
			shipping_price NUMERIC NOT NULL DEFAULT 0,
			total_price NUMERIC NOT NULL DEFAULT 0,
			is_paid BOOLEAN NOT NULL DEFAULT FALSE,
			paid_at TEXT,
			is_delivered BOOLEAN NOT NULL DEFAULT FALSE,
			delivered_at TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TEXT,
			updated_at TEXT
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			panic(err)
		}
	}
}

func registerSeedRoute(app *fiber.App, products *product.Service, users *user.Service, logger *zap.Logger) {
	app.Post("/dev/seed", func(c *fiber.Ctx) error {
		if err := products.ResetProducts(product.SeedProducts()); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}

		now := time.Now().UTC().Format(time.RFC3339)
		if _, err := users.Register(user.User{
			Name:      "Admin",
			Email:     "admin@example.com",
			Password:  "admin123",
			Role:      user.RoleAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil && err != user.ErrEmailExists {
			logger.Warn("could not seed admin user", zap.Error(err))
		}

		return c.JSON(fiber.Map{"message": "seeded"})
	})
}
