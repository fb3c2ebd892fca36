package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/tanmay0711/leaveflow/internal/gateway"
	"github.com/tanmay0711/leaveflow/internal/gateway/middleware"
	calendarmodule "github.com/tanmay0711/leaveflow/internal/modules/calendar"
	calendarapp "github.com/tanmay0711/leaveflow/internal/modules/calendar/application"
	leavemodule "github.com/tanmay0711/leaveflow/internal/modules/leave"
	notificationmodule "github.com/tanmay0711/leaveflow/internal/modules/notification"
	"github.com/tanmay0711/leaveflow/internal/shared/infrastructure/cache"
	"github.com/tanmay0711/leaveflow/internal/shared/infrastructure/config"
	"github.com/tanmay0711/leaveflow/internal/shared/infrastructure/database"
	"github.com/tanmay0711/leaveflow/pkg/migration"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.Load()

	log.Println("Connecting to DB...")
	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()
	log.Println("Database connected successfully")

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if err := migration.AutoMigrate(cfg.Database.URL(), migrationsPath, slogger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Session cache is optional: a failed connect degrades to skipping the
	// cache rather than refusing to start.
	sessionCache := cache.NewManager(cache.Options{
		Addr:       fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		MaxRetries: cfg.Redis.MaxRetries,
		BaseDelay:  cfg.Redis.BaseDelay,
		MaxDelay:   cfg.Redis.MaxDelay,
	})
	if err := sessionCache.Connect(context.Background()); err != nil {
		log.Printf("Session cache connect: %v", err)
	}
	defer sessionCache.Disconnect()

	notificationMod := notificationmodule.NewModule(db)
	defer notificationMod.Shutdown()

	calendarMod := calendarmodule.NewModule(db, calendarapp.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
		CalendarID:   cfg.Google.CalendarID,
	}, sessionCache)

	leaveMod := leavemodule.NewModule(db, notificationMod.Service(), calendarMod.Service())

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	mux := gateway.SetupRoutes(gateway.RouterConfig{
		AuthMiddleware:      authMiddleware,
		NotificationHandler: notificationMod.HTTPHandler(),
		CalendarHandler:     calendarMod.HTTPHandler(),
		LeaveHandler:        leaveMod.HTTPHandler(),
	})

	var handler http.Handler = mux
	handler = middleware.PrometheusMiddleware(handler)
	handler = middleware.CORSMiddleware(handler, cfg.Server.AllowedOrigins)

	server := gateway.NewServer(cfg.Server, handler)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
