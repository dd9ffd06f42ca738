package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Tomlord1122/taskflow/internal/auth"
	"github.com/Tomlord1122/taskflow/internal/config"
	"github.com/Tomlord1122/taskflow/internal/database"
	"github.com/Tomlord1122/taskflow/internal/repository"
	"github.com/Tomlord1122/taskflow/internal/server"
	"github.com/Tomlord1122/taskflow/internal/service"
)

func gracefulShutdown(apiServer *http.Server, dbService database.Service, rdb *redis.Client, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Println("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	// in-flight requests get 5 seconds to finish
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Printf("Error closing redis client: %v", err)
		}
	}

	log.Println("Closing database connection pool...")
	if err := dbService.Close(); err != nil {
		log.Printf("Error closing database connection pool: %v", err)
	} else {
		log.Println("Database connection pool closed.")
	}

	log.Println("Server exiting")
	done <- true
}

// newSessionStore picks Redis when REDIS_ADDR is set and falls back to an
// in-process store otherwise.
func newSessionStore(cfg config.Config) (auth.SessionStore, *redis.Client, error) {
	if cfg.Redis.Addr == "" {
		log.Println("REDIS_ADDR not set, keeping sessions in memory")
		return auth.NewMemoryStore(cfg.Session.TTL), nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	log.Printf("Using redis session store at %s", cfg.Redis.Addr)
	return auth.NewRedisStore(rdb, cfg.Session.TTL), rdb, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	dbService, err := database.New(cfg.DB, cfg.App.IsDev())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Running database auto-migration...")
	if err := database.Migrate(dbService.GetDB()); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}
	log.Println("Database auto-migration complete.")

	sessions, rdb, err := newSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	taskRepo := repository.NewGormTaskRepository(dbService.GetDB())
	userRepo := repository.NewGormUserRepository(dbService.GetDB())

	taskService := service.NewTaskService(taskRepo)
	userService, err := service.NewUserService(userRepo, auth.NewPasswordHasher(cfg.App.BcryptCost))
	if err != nil {
		log.Fatalf("Failed to initialise user service: %v", err)
	}

	srv, err := server.New(cfg, taskService, userService, sessions, dbService)
	if err != nil {
		log.Fatalf("Failed to build server: %v", err)
	}
	httpServer := server.NewHTTPServer(srv)

	done := make(chan bool, 1)
	go gracefulShutdown(httpServer, dbService, rdb, done)

	log.Printf("Starting server on %s", httpServer.Addr)
	err = httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("HTTP server ListenAndServe error: %v", err)
	}

	<-done
	log.Println("Graceful shutdown complete.")
}
