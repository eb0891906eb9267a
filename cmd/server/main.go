// Package main is the entry point for the task backend server.
// It initializes the database pool, runs migrations, and mounts the HTTP routes.
package main

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/database"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/handlers"
	"github.com/zi-kai-lin/stark-todo-backend-sub000/internal/middleware"
)

func main() {
	// Maintenance subcommands operate on the schema directly and exit
	// without starting the server.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate-status":
			version, dirty, err := database.GetMigrationVersion()
			if err != nil {
				log.Fatalf("Failed to read migration version: %v", err)
			}
			log.Printf("Migration version: %d (dirty: %v)", version, dirty)
			return
		case "migrate-rollback":
			if err := database.RollbackMigration(); err != nil {
				log.Fatalf("Failed to rollback migration: %v", err)
			}
			return
		default:
			log.Fatalf("Unknown command: %s", os.Args[1])
		}
	}

	// Initialize database connection pool.
	// The handle is threaded explicitly into every handler/service below;
	// nothing holds global connection state.
	db := database.MustConnect(nil)
	defer db.Close()

	// Apply pending schema migrations. The FK cascade rules they create are
	// load-bearing for group and root-task deletion.
	if err := database.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	app := fiber.New()

	// Panic recovery (should be first)
	app.Use(recover.New())

	// Cookie-session store for the supplemental auth layer. The task core
	// itself only ever sees the verified numeric user id.
	store := session.New(session.Config{
		Expiration:     8 * time.Hour,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieName:     "session_id",
		CookiePath:     "/",
	})

	authHandler := handlers.NewAuthHandler(store, db)
	taskHandler := handlers.NewTaskHandler(db)
	groupHandler := handlers.NewGroupHandler(db)

	// Public routes
	app.Post("/register", authHandler.Register)
	app.Post("/login", authHandler.Login)
	app.Post("/logout", authHandler.Logout)

	// Protected routes - every handler reads the verified caller identity
	// from the session middleware.
	api := app.Group("", middleware.AuthRequired(store))
	taskHandler.RegisterRoutes(api)
	groupHandler.RegisterRoutes(api)

	// Port is configurable via PORT environment variable (default: 8080)
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Task backend listening on :%s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
