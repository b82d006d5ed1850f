package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipebook/auth"
	"recipebook/config"
	"recipebook/db"
	"recipebook/feed"
	"recipebook/logging"
	"recipebook/middleware"
	"recipebook/profile"
	"recipebook/ratelim"
	"recipebook/rdx"
	"recipebook/recipes"
	"recipebook/routes"
	"recipebook/uploads"
	"recipebook/users"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// Set up all routes and middleware layers
func setupRouter(cfg config.Config, d routes.Deps, log logging.Logger) http.Handler {
	router := routes.NewRouter(d)

	c := cors.New(cors.Options{
		AllowedOrigins:     cfg.AllowedOrigins,
		AllowedMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:     []string{"Content-Type", "Authorization"},
		ExposedHeaders:     []string{"X-Request-ID", "Retry-After"},
		OptionsPassthrough: true,
	})

	return middleware.WithRequestID(
		middleware.RecoverMiddleware(log)(
			middleware.LoggingMiddleware(log)(
				middleware.SecurityHeaders(c.Handler(router)))))
}

type stores struct {
	users   users.Store
	recipes recipes.Store
	close   func(context.Context) error
}

func openStores(ctx context.Context, cfg config.Config, log logging.Logger) (stores, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn(ctx, "using in-memory storage; data is lost on restart")
		return stores{
			users:   users.NewMemoryStore(),
			recipes: recipes.NewMemoryStore(),
			close:   func(context.Context) error { return nil },
		}, nil
	case config.StorageMongo:
		conn, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return stores{}, err
		}
		if err := conn.EnsureIndexes(ctx); err != nil {
			conn.Close(ctx)
			return stores{}, err
		}
		log.Info(ctx, "connected to MongoDB", "database", cfg.MongoDatabase)
		return stores{
			users:   users.NewMongoStore(conn.Users),
			recipes: recipes.NewMongoStore(conn.Recipes),
			close:   conn.Close,
		}, nil
	default:
		return stores{}, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}
}

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	log := logging.NewJSON(os.Stdout, cfg.LogLevel)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if envErr != nil {
		log.Info(ctx, "no .env file loaded", "error", envErr)
	}
	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log logging.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Warn(ctx, "JWT_SECRET not set; tokens are signed with the development secret")
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}

	up, err := uploads.NewStore(cfg.UploadDir, log)
	if err != nil {
		return err
	}

	var cache recipes.ListCache
	if cfg.RedisAddr != "" {
		rdb, err := rdx.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn(ctx, "redis unavailable, falling back to in-process listing cache", "error", err)
		} else {
			defer rdb.Close()
			cache = recipes.NewRedisListCache(rdb, cfg.CacheTTL, log)
			log.Info(ctx, "redis listing cache enabled", "addr", cfg.RedisAddr)
		}
	}
	if cache == nil {
		if lc, err := recipes.NewLRUListCache(cfg.ListCacheSize); err == nil {
			cache = lc
		} else {
			cache = recipes.NopCache{}
		}
	}

	hub := feed.NewHub(log)
	go hub.Run(ctx)

	limiter := ratelim.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	if err := limiter.TrustProxies(cfg.TrustedProxies); err != nil {
		return err
	}
	go limiter.Run(ctx, time.Minute, 10*time.Minute)

	authSvc := auth.NewService(st.users, auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL), up, log)
	recipeSvc := recipes.NewService(st.recipes, st.users, up, cache, hub, log)

	handler := setupRouter(cfg, routes.Deps{
		Auth:      auth.NewHandler(authSvc, log, cfg.MaxUploadBytes),
		Recipes:   recipes.NewHandler(recipeSvc, log, cfg.MaxUploadBytes),
		Profile:   profile.NewHandler(st.users, recipeSvc, log),
		Gate:      middleware.NewAuthenticator(authSvc, log),
		Limiter:   limiter,
		Feed:      hub,
		UploadDir: up.Dir(),
	}, log)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Info(ctx, "cleaning up resources before shutdown")
		cancel()
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server started", "addr", cfg.Addr, "storage", cfg.Storage)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-shutdownChan:
		log.Info(ctx, "shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		st.close(context.Background())
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", "error", err)
	}
	if err := st.close(shutdownCtx); err != nil {
		log.Error(ctx, "storage close failed", "error", err)
	}

	log.Info(ctx, "server stopped cleanly")
	return nil
}
