package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/anjiri1684/timetable/catalog"
	config "github.com/anjiri1684/timetable/configs"
	"github.com/anjiri1684/timetable/database"
	"github.com/anjiri1684/timetable/handlers"
	"github.com/anjiri1684/timetable/jobs"
	"github.com/anjiri1684/timetable/routes"
	"github.com/anjiri1684/timetable/timetable"
	"github.com/anjiri1684/timetable/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database.ConnectDB()
	if err := database.Migrate(database.DB); err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	log.Println("✅ Database migration successful")
	if config.ConfigDefault("SEED_CATALOG", "false") == "true" {
		if err := database.SeedCatalog(database.DB); err != nil {
			log.Fatalf("🔥 Failed to seed catalog: %v", err)
		}
	}

	var rdb *redis.Client
	if addr := config.Config("REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("⚠️ Redis at %s unreachable, catalog lookups will skip the cache until it is back: %v", addr, err)
		} else {
			log.Println("✅ Redis connected successfully")
		}
		defer rdb.Close()
	}
	cat := catalog.NewCached(catalog.NewGorm(database.DB), rdb, config.Duration("CATALOG_CACHE_TTL", catalog.DefaultCacheTTL))

	hub := websocket.NewHub()
	go hub.Run(ctx)

	store := timetable.NewStore(database.NewEntryRepository(database.DB), cat, timetable.WithNotifier(hub))

	c := cron.New()
	schedule := config.ConfigDefault("AUDIT_SCHEDULE", jobs.DefaultAuditSchedule)
	if _, err := jobs.ScheduleTimetableAudit(c, schedule, store); err != nil {
		log.Fatalf("🔥 Invalid AUDIT_SCHEDULE %q: %v", schedule, err)
	}
	c.Start()
	defer c.Stop()
	log.Println("✅ Cron job for timetable audit scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:       "Timetable",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Disposition",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to the Timetable API",
		})
	})

	secret := config.Config("JWT_SECRET")
	if secret == "" {
		log.Fatal("🔥 JWT_SECRET is not set")
	}
	routes.TimetableRoutes(app, handlers.NewTimetableHandler(store, cat, database.DB), secret)
	routes.CatalogRoutes(app, handlers.NewCatalogHandler(database.DB, cat), secret)
	routes.WebsocketRoutes(app, hub)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("🔥 Server shutdown failed: %v", err)
		}
	}()

	port := config.ConfigDefault("PORT", "8080")
	log.Printf("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
