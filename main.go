package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"aurora/config"
	"aurora/database"
	"aurora/handlers"
	"aurora/middleware"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg := config.GetConfig()

	// Connect to database
	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	app := newApp()

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Error shutting down: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting Aurora on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newApp builds the Fiber app with all middleware and routes. Split from
// main so tests can drive it with app.Test.
func newApp() *fiber.App {
	cfg := config.GetConfig()

	app := fiber.New(fiber.Config{
		AppName:      "Aurora",
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:5173,http://localhost:3000,http://localhost:8080",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// API routes
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"version": version,
		})
	})

	// Rate limiter for auth endpoints (5 requests per minute per IP)
	authLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many attempts. Please try again later.",
			})
		},
	})

	// Public routes (with rate limiting on auth)
	api.Post("/register", authLimiter, handlers.Register)
	api.Post("/login", authLimiter, handlers.Login)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired())
	protected.Get("/user", handlers.GetCurrentUser)

	// Settings routes
	protected.Get("/settings", handlers.GetSettings)
	protected.Put("/settings", handlers.UpdateSettings)

	// Event routes
	events := protected.Group("/events")
	events.Get("/", handlers.ListEvents)
	events.Get("/month", handlers.MonthEvents)
	events.Post("/", handlers.CreateEvent)
	events.Get("/:id", handlers.GetEvent)
	events.Put("/:id", handlers.UpdateEvent)
	events.Delete("/:id", handlers.DeleteEvent)
	events.Put("/:id/mood", handlers.SetEventMood)

	// Category routes
	categories := protected.Group("/categories")
	categories.Get("/", handlers.ListCategories)
	categories.Post("/", handlers.CreateCategory)
	categories.Put("/:id", handlers.UpdateCategory)
	categories.Delete("/:id", handlers.DeleteCategory)

	// Mood check-in routes
	moods := protected.Group("/moods")
	moods.Get("/", handlers.ListMoodEntries)
	moods.Post("/", handlers.CreateMoodEntry)
	moods.Delete("/:id", handlers.DeleteMoodEntry)

	// Suggestion routes
	suggestions := protected.Group("/suggestions")
	suggestions.Get("/", handlers.ListSuggestions)
	suggestions.Post("/generate", handlers.GenerateSuggestions)
	suggestions.Post("/:id/respond", handlers.RespondToSuggestion)

	// Assistant routes
	assistant := protected.Group("/assistant")
	assistant.Post("/parse", handlers.ParseEventText)
	assistant.Post("/validate", handlers.ValidateEventDraft)

	// Stats + export
	protected.Get("/stats/wellbeing", handlers.WellbeingStats)
	protected.Get("/export/calendar.ics", handlers.ExportCalendar)

	// Serve static files (frontend) in production
	if cfg.Production {
		app.Static("/", "./static")
		app.Get("/*", func(c *fiber.Ctx) error {
			return c.SendFile("./static/index.html")
		})
	}

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
