package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"tryon-web/internal/application/usecases"
	"tryon-web/internal/config"
	domainrepositories "tryon-web/internal/domain/repositories"
	domainservices "tryon-web/internal/domain/services"
	"tryon-web/internal/infrastructure/api"
	"tryon-web/internal/infrastructure/external"
	"tryon-web/internal/infrastructure/repositories"
	"tryon-web/internal/infrastructure/storage"
	"tryon-web/internal/logging"
)

func main() {
	configPath := pflag.String("config", "", "path to a YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider, err := newProvider(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to create try-on provider", zap.Error(err))
	}
	defer provider.Close()

	referencer, err := newReferencer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to create image referencer", zap.Error(err))
	}

	sessions := repositories.NewMemorySessionRepository()
	tryOnDomainService := domainservices.NewTryOnDomainService(provider, referencer)
	tryOnUseCase := usecases.NewTryOnUseCase(sessions, tryOnDomainService, logger)

	handler := api.NewTryOnHandler(tryOnUseCase, logger)
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", server.Addr), zap.Error(err))
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	logger.Info("try-on server listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("provider", cfg.Provider.Name),
		zap.String("upload_mode", cfg.Upload.Mode),
		zap.Duration("provider_timeout", cfg.Provider.Timeout),
	)
	sweeper := func(ctx context.Context) {
		sweepSessions(ctx, tryOnUseCase, cfg.Session.TTL, logger)
	}
	if err := runServer(server, listener, signals, cfg.Server.ShutdownTimeout, logger, sweeper); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func newProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domainrepositories.TryOnProvider, error) {
	switch cfg.Provider.Name {
	case config.ProviderVertex:
		logger.Info("using Vertex AI try-on",
			zap.String("project", cfg.Vertex.ProjectID),
			zap.String("location", cfg.Vertex.Location),
			zap.String("model", cfg.Vertex.Model),
			zap.Bool("use_sdk", cfg.Vertex.UseSDK),
		)
		return external.NewVertexAIService(ctx, cfg.Vertex.ProjectID, cfg.Vertex.Location, cfg.Vertex.Model, cfg.Vertex.UseSDK, cfg.Provider.Timeout, logger)
	default:
		logger.Info("using Pixelcut try-on", zap.String("endpoint", cfg.Pixelcut.Endpoint))
		return external.NewPixelcutService(cfg.Pixelcut.Endpoint, cfg.Pixelcut.APIKey, cfg.Provider.Timeout, logger), nil
	}
}

func newReferencer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domainrepositories.ImageReferencer, error) {
	if cfg.Upload.Mode != config.UploadObject {
		return storage.NewInlineReferencer(), nil
	}

	client, err := storage.NewMinioClient(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Secure)
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.Minio.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Minio.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", cfg.Minio.Bucket)
	}

	logger.Info("staging uploads in object storage",
		zap.String("endpoint", cfg.Minio.Endpoint),
		zap.String("bucket", cfg.Minio.Bucket),
	)
	return storage.NewObjectReferencer(client, cfg.Minio.Bucket, cfg.Minio.URLExpiry, logger), nil
}

// sweepSessions expires idle sessions every ttl/2 until ctx is done.
func sweepSessions(ctx context.Context, uc *usecases.TryOnUseCase, ttl time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := uc.ExpireSessions(ctx, ttl); err != nil {
				logger.Warn("session sweep failed", zap.Error(err))
			}
		}
	}
}
