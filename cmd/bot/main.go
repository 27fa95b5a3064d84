package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidgate/internal/core/services"
	"vidgate/internal/handlers/bot"
	httphandlers "vidgate/internal/handlers/http"
	"vidgate/internal/infrastructure/middleware"
	"vidgate/internal/infrastructure/monitoring"
	repositories "vidgate/internal/infrastructure/repositories"
	"vidgate/internal/infrastructure/shortlink"
	"vidgate/internal/infrastructure/telegram"
	"vidgate/pkg/backup"
	"vidgate/pkg/config"
	"vidgate/pkg/logger"
	"vidgate/pkg/retry"
	"vidgate/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const appVersion = "1.0.0"

func main() {
	startTime := time.Now()

	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/vidgate/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}

	if err != nil {
		// Fallback to defaults if config cannot be loaded
		cfg = config.DefaultConfig()
	}

	// Initialize logger
	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	// Initialize tracing
	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	// Initialize repository factory
	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	userRepo := repoFactory.CreateUserRepository()
	videoRepo := repoFactory.CreateVideoRepository()
	channelRepo := repoFactory.CreateChannelRepository()
	sessionRepo := repoFactory.CreateSessionRepository()

	// Telegram client and bot identity
	tg := telegram.NewClient(cfg.Bot.Token, cfg.Bot.APIBaseURL, cfg.Bot.MessagesPerSecond, cfg.Bot.SendBurst, log)

	meCtx, meCancel := context.WithTimeout(context.Background(), 30*time.Second)
	me, err := retry.DoWithResult(meCtx, retry.DefaultConfig(), func() (*telegram.User, error) {
		return tg.GetMe(meCtx)
	})
	meCancel()
	if err != nil {
		log.Fatalw("failed to identify bot", "error", err)
	}
	log.Infow("bot identified", "username", me.Username, "id", me.ID)

	// Initialize monitoring
	collector := monitoring.NewPrometheusCollector()

	// Link provider and services
	links := shortlink.NewClient(cfg.Shortlink.APIURL, cfg.Shortlink.APIToken, me.Username, 10*time.Second, logger.NewContextLogger(zapLogger), collector)

	entitlementService := services.NewEntitlementService(userRepo, log)
	gateService := services.NewGateService(userRepo, videoRepo, entitlementService, log)
	videoService := services.NewVideoService(videoRepo, channelRepo, links, log)
	channelService := services.NewChannelService(channelRepo)

	router := bot.NewRouter(tg, cfg, gateService, entitlementService, videoService, channelService, links, sessionRepo, collector, log)

	// Periodic snapshots of the JSON documents
	var backupStop, backupDone chan struct{}
	if cfg.Backup.Enabled {
		backupStorage, err := backup.NewFileStorage(cfg.Backup.Dir)
		if err != nil {
			log.Fatalw("failed to initialize backup storage", "error", err)
		}
		backupService := backup.NewService(backupStorage, []string{
			cfg.Storage.UsersFile,
			cfg.Storage.VideosFile,
			cfg.Storage.ChannelsFile,
		}, appVersion)

		backupStop = make(chan struct{})
		backupDone = make(chan struct{})
		go func() {
			defer close(backupDone)
			ticker := time.NewTicker(cfg.Backup.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-backupStop:
					return
				case <-ticker.C:
					ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
					name, err := backupService.CreateBackup(ctx)
					if err != nil {
						log.Errorw("backup failed", "error", err)
					} else {
						log.Infow("backup created", "name", name)
						if err := backupService.Prune(ctx, cfg.Backup.Keep); err != nil {
							log.Errorw("backup prune failed", "error", err)
						}
					}
					cancel()
				}
			}
		}()
	}

	// Operational HTTP server
	var opsServer *http.Server
	if cfg.Ops.Enabled {
		if cfg.Logging.Level != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		engine := gin.New()
		engine.Use(middleware.RecoveryMiddleware(log))
		engine.Use(middleware.ErrorHandlerMiddleware(log))
		engine.Use(middleware.TracingMiddleware())
		engine.Use(middleware.NewHTTPRateLimitMiddleware(cfg))

		opsHandler := httphandlers.NewOpsHandler(videoService, channelService, entitlementService)
		opsHandler.SetupRoutes(engine)

		health := monitoring.NewHealthChecker()
		health.Register("repositories", repoFactory.HealthCheck)

		engine.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":    "healthy",
				"timestamp": time.Now(),
				"uptime":    time.Since(startTime).String(),
			})
		})

		engine.GET("/ready", func(c *gin.Context) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			healthy, results := health.Run(ctx)
			if !healthy {
				c.JSON(503, gin.H{
					"status": "not_ready",
					"checks": results,
				})
				return
			}
			c.JSON(200, gin.H{
				"status": "ready",
				"checks": results,
			})
		})

		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

		opsServer = &http.Server{
			Addr:         cfg.Ops.Address,
			Handler:      engine,
			ReadTimeout:  cfg.Ops.ReadTimeout,
			WriteTimeout: cfg.Ops.WriteTimeout,
		}

		go func() {
			log.Infof("Starting ops server on %s", cfg.Ops.Address)
			if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorw("ops server failed", "error", err)
			}
		}()
	}

	// Start the poll loop
	pollCtx, pollCancel := context.WithCancel(context.Background())
	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		log.Info("Starting update poll loop")
		if err := router.Run(pollCtx); err != nil && err != context.Canceled {
			log.Errorw("poll loop stopped", "error", err)
		}
	}()

	// Wait for shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Infow("Received shutdown signal", "signal", sig)

	pollCancel()
	<-pollDone

	if backupStop != nil {
		close(backupStop)
		<-backupDone
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Ops.ShutdownTimeout)
	defer shutdownCancel()

	if opsServer != nil {
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			log.Errorw("Error during ops server shutdown", "error", err)
		}
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error shutting down tracer", "error", err)
	}

	if err := repoFactory.Close(); err != nil {
		log.Errorw("Error closing repository factory", "error", err)
	}

	log.Info("Bot stopped")
}
