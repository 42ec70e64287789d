// Command foodgram-server serves the Foodgram REST API and a gRPC health listener.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/foodgram/internal/config"
	"github.com/and161185/foodgram/internal/limiter"
	"github.com/and161185/foodgram/internal/migrate"
	"github.com/and161185/foodgram/internal/repository/postgres"
	grpcserver "github.com/and161185/foodgram/internal/server/grpc"
	httpserver "github.com/and161185/foodgram/internal/server/http"
	"github.com/and161185/foodgram/internal/service"
	"github.com/and161185/foodgram/internal/storage"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations and serves until SIGINT/SIGTERM.
func main() {
	cfgPath := flag.String("config", "", "config file (default: $FOODGRAM_CONFIG or ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := cfg.Log.Logger()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.HTTP.Addr),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if err := migrate.Up(ctx, cfg.DB.DSN, logger); err != nil {
		return err
	}

	db, err := postgres.New(ctx, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	// Repositories
	users := postgres.NewUserRepo(db)
	follows := postgres.NewFollowRepo(db)
	recipes := postgres.NewRecipeRepo(db)
	marks := postgres.NewMarkRepo(db)
	catalog := postgres.NewCatalogRepo(db)
	tokens := postgres.NewTokenRepo(db)

	lim := limiter.NewPG(db.Pool, limiter.Settings{
		Window:   cfg.Auth.LimiterWindow,
		MaxFails: cfg.Auth.LimiterMaxFails,
		BlockFor: cfg.Auth.LimiterBlock,
	})

	images, mediaDir, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	// Services
	svc := httpserver.Services{
		Auth:     service.NewAuthService(users, tokens, []byte(cfg.Auth.JWTKey), cfg.Auth.AccessTTL, lim),
		Users:    service.NewUserService(users, follows, recipes),
		Catalog:  service.NewCatalogService(catalog),
		Recipes:  service.NewRecipeService(recipes, images, logger),
		Marks:    service.NewMarkService(marks, recipes),
		Shopping: service.NewShoppingService(marks, users),
	}
	api := httpserver.New(svc, httpserver.Options{
		CORSOrigins: cfg.HTTP.CORSOrigins,
		RateLimit:   cfg.HTTP.RateLimit,
		PageSize:    cfg.HTTP.PageSize,
		MaxPageSize: cfg.HTTP.MaxPageSize,
		ImageURL:    images.URL,
		MediaDir:    mediaDir,
		MediaPath:   cfg.Storage.PublicURL,
	}, logger)

	hs := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      api,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	return serve(ctx, hs, cfg.GRPC, cfg.HTTP.ShutdownTimeout, logger)
}

// serve runs the HTTP server and the optional health listener until ctx is
// done or either fails, then shuts both down.
func serve(ctx context.Context, hs *http.Server, gc config.GRPCConfig, shutdownTimeout time.Duration, logger *zap.Logger) error {
	// bind the health listener first so a failure leaves nothing running
	var healthLis net.Listener
	if gc.HealthAddr != "" {
		lis, err := net.Listen("tcp", gc.HealthAddr)
		if err != nil {
			return err
		}
		healthLis = lis
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("http listening", zap.String("addr", hs.Addr))
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var health *grpcserver.Health
	if healthLis != nil {
		health = grpcserver.NewHealth(logger, gc.Reflection)
		go func() {
			if err := health.Serve(healthLis); err != nil {
				errCh <- err
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	// graceful shutdown
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if health != nil {
		health.Drain()
	}
	if err := hs.Shutdown(sctx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if health != nil {
		health.Stop(sctx)
	}
	return serveErr
}

// openStorage returns the image store and, for the local driver, the directory to serve.
func openStorage(ctx context.Context, c config.StorageConfig) (storage.ImageStore, string, error) {
	if c.Driver == config.StorageS3 {
		// a path-only public URL only makes sense for locally served files
		public := c.PublicURL
		if strings.HasPrefix(public, "/") {
			public = ""
		}
		s3, err := storage.NewS3(ctx, storage.S3Options{
			Bucket:       c.S3.Bucket,
			Region:       c.S3.Region,
			Endpoint:     c.S3.Endpoint,
			AccessKey:    c.S3.AccessKey,
			SecretKey:    c.S3.SecretKey,
			UsePathStyle: c.S3.UsePathStyle,
			PublicURL:    public,
		})
		if err != nil {
			return nil, "", err
		}
		return s3, "", nil
	}
	local, err := storage.NewLocal(c.LocalDir, c.PublicURL)
	if err != nil {
		return nil, "", err
	}
	return local, local.Root(), nil
}
