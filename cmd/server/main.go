package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"Agora/internal/api/middleware"
	"Agora/internal/api/routes"
	"Agora/internal/auth"
	"Agora/internal/config"
	"Agora/internal/core/feed"
	"Agora/internal/core/graph"
	"Agora/internal/core/posts"
	"Agora/internal/core/profiles"
	"Agora/internal/db/memory"
	"Agora/internal/db/migrations"
	postgresRepo "Agora/internal/db/postgres"
	"Agora/internal/demo"
)

const shutdownTimeout = 15 * time.Second

type repositories struct {
	profiles profiles.Repository
	posts    posts.Repository
	follows  graph.Repository
	feed     feed.Repository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	// The final snapshot waits for the HTTP server to drain, so it gets its own context
	snapshotCtx, stopSnapshots := context.WithCancel(context.Background())
	defer stopSnapshots()

	// Storage backend: postgres when DATABASE_URL is set, otherwise the in-memory store
	var repos repositories
	if cfg.UsePostgres() {
		db, err := openPostgres(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				logger.Warn("failed to close database", "error", closeErr)
			}
		}()

		repos = repositories{
			profiles: postgresRepo.NewProfileRepository(db),
			posts:    postgresRepo.NewPostRepository(db),
			follows:  postgresRepo.NewFollowRepository(db),
			feed:     postgresRepo.NewFeedRepository(db),
		}
	} else {
		store := memory.NewStore(memory.WithLogger(logger))
		if cfg.SnapshotPath != "" {
			restored, err := store.LoadSnapshotFile(cfg.SnapshotPath)
			if err != nil {
				return fmt.Errorf("failed to restore snapshot: %w", err)
			}
			stats := store.Stats()
			logger.Info("memory store ready",
				"restored", restored,
				"profiles", stats.Profiles,
				"posts", stats.Posts,
				"follows", stats.Follows)

			snapshotter := memory.NewSnapshotter(store, cfg.SnapshotPath, cfg.SnapshotInterval, logger)
			g.Go(func() error {
				return snapshotter.Run(snapshotCtx)
			})
		} else {
			logger.Warn("SNAPSHOT_PATH not set, state will be lost on shutdown")
		}

		repos = repositories{
			profiles: memory.NewProfileRepository(store),
			posts:    memory.NewPostRepository(store),
			follows:  memory.NewFollowRepository(store),
			feed:     memory.NewFeedRepository(store),
		}
	}

	// Registration checks hit the profile repository on every mutation
	profileRepo := repos.profiles
	if cfg.ProfileCacheSize > 0 {
		cached, err := profiles.NewCachingRepository(profileRepo, cfg.ProfileCacheSize)
		if err != nil {
			return err
		}
		profileRepo = cached
	}

	profileService := profiles.NewProfileService(profileRepo, logger)
	postService := posts.NewPostService(repos.posts, profileService, logger)
	graphService := graph.NewGraphService(repos.follows, profileService, graph.Options{
		RequireRegisteredSubject: cfg.RequireRegisteredFollowTarget,
	}, logger)
	feedService := feed.NewFeedService(repos.feed)

	if cfg.SeedDemo {
		if _, err := demo.NewSeeder(profileService, postService, graphService, logger).Seed(ctx); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	// Verifier: HS256 shared secret, plus JWKS for tokens carrying a kid
	var keys auth.KeyFetcher
	if cfg.JWKSURL != "" {
		fetcher, err := auth.NewJWKSFetcher(ctx, cfg.JWKSURL, 15*time.Minute)
		if err != nil {
			return fmt.Errorf("failed to initialize JWKS fetcher: %w", err)
		}
		keys = fetcher
		logger.Info("JWKS verification enabled", "url", cfg.JWKSURL)
	}
	verifier := auth.NewVerifier([]byte(cfg.JWTSecret), keys)

	var sessionStore sessions.Store
	if cfg.IsDevEnv {
		cookieStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
		cookieStore.Options = &sessions.Options{
			Path:     "/",
			MaxAge:   86400,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}
		sessionStore = cookieStore
	}
	authMiddleware := middleware.NewAuthMiddleware(verifier, sessionStore)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(routes.CORSMiddleware(cfg.CORSAllowedOrigins))
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, 1*time.Minute)
	defer rateLimiter.Close()
	r.Use(rateLimiter.Middleware)

	routes.RegisterActorRoutes(r, profileService, authMiddleware)
	routes.RegisterPostRoutes(r, postService, authMiddleware)
	routes.RegisterGraphRoutes(r, graphService, authMiddleware)
	routes.RegisterFeedRoutes(r, feedService, authMiddleware)

	if cfg.IsDevEnv {
		// Stricter limit on login: 10 per minute per IP
		loginLimiter := middleware.NewRateLimiter(10, 1*time.Minute)
		defer loginLimiter.Close()
		routes.RegisterDevRoutes(r, sessionStore, []byte(cfg.JWTSecret), loginLimiter)
		logger.Warn("dev login enabled at POST /dev/login; never set IS_DEV_ENV in production")
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Printf("Failed to write health response: %v", err)
		}
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info("Agora AppView starting", "port", cfg.Port, "postgres", cfg.UsePostgres())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		err := server.Shutdown(shutdownCtx)
		stopSnapshots()
		return err
	})

	return g.Wait()
}

func openPostgres(dbURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrations.Up(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}
