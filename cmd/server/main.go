// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hiring-pipeline/internal/common/auth"
	"hiring-pipeline/internal/common/aws"
	"hiring-pipeline/internal/common/config"
	"hiring-pipeline/internal/common/database"
	"hiring-pipeline/internal/common/logger"
	"hiring-pipeline/internal/common/observability"
	"hiring-pipeline/internal/forms"
	"hiring-pipeline/internal/notify"
	"hiring-pipeline/internal/pipeline"
	"hiring-pipeline/internal/search"
	"hiring-pipeline/internal/server"
	"hiring-pipeline/internal/store"
	"hiring-pipeline/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting hiring pipeline service", map[string]interface{}{
		"name":        cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		log.WithError(err).Error("failed to open postgres", nil)
		os.Exit(1)
	}
	defer pg.Close()
	if err := pingWithBackoff(ctx, pg.Ping, 5, log, "postgres"); err != nil {
		log.WithError(err).Error("postgres unreachable", nil)
		os.Exit(1)
	}

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		log.WithError(err).Error("failed to open redis", nil)
		os.Exit(1)
	}
	defer rdb.Close()
	if err := pingWithBackoff(ctx, rdb.Ping, 5, log, "redis"); err != nil {
		// Rate limiting and sessions degrade without Redis, but webhooks
		// must keep flowing.
		log.WithError(err).Warn("redis unreachable at startup", nil)
	}

	var indexer pipeline.Indexer
	if cfg.Database.Elasticsearch.Enabled && cfg.Search.IndexOnTransition {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			log.WithError(err).Warn("failed to create elasticsearch client, indexing disabled", nil)
		} else {
			indexer = search.NewIndexer(es.Client, log)
		}
	}

	var notifier pipeline.Notifier
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		var emailSender notify.EmailSender
		var smsSender notify.SMSSender
		if cfg.Notifications.Email.Enabled {
			sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				log.WithError(err).Warn("failed to create SES client, email disabled", nil)
			} else {
				emailSender = sesClient
			}
		}
		if cfg.Notifications.SMS.Enabled {
			snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				log.WithError(err).Warn("failed to create SNS client, sms disabled", nil)
			} else {
				smsSender = snsClient
			}
		}
		notifier = notify.NewDispatcher(emailSender, smsSender, cfg.Notifications, log)
	}

	verifier, err := webhook.NewVerifier(cfg.Webhook)
	if err != nil {
		log.WithError(err).Error("invalid webhook configuration", nil)
		os.Exit(1)
	}

	var limiter *webhook.Limiter
	if cfg.Webhook.RateLimit.Enabled {
		limiter = webhook.NewLimiter(
			rdb.Client,
			cfg.Webhook.RateLimit.Requests,
			time.Duration(cfg.Webhook.RateLimit.WindowMS)*time.Millisecond,
			log,
		)
	}

	engine := pipeline.NewEngine(
		store.New(pg.DB),
		forms.NewExtractor(forms.DefaultTable()),
		notifier,
		indexer,
		pipeline.Config{
			GeneralThreshold:     cfg.Pipeline.GeneralThreshold,
			SpecializedThreshold: cfg.Pipeline.SpecializedThreshold,
		},
		log,
	)

	srv := server.New(server.Options{
		Pipeline:          engine,
		Verifier:          verifier,
		Limiter:           limiter,
		Sessions:          auth.NewRedisSessionVerifier(rdb.Client),
		Logger:            log,
		Observability:     obs,
		TrustProxyHeaders: cfg.Webhook.TrustProxyHeaders,
		MaxBodyBytes:      cfg.Server.MaxBodyBytes,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", map[string]interface{}{"address": cfg.Server.Address})
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received", nil)
	case err := <-errCh:
		log.WithError(err).Error("http server failed", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed", nil)
	}
	log.Info("service stopped", nil)
}

// pingWithBackoff retries a dependency ping with doubling delays.
func pingWithBackoff(ctx context.Context, ping func(context.Context) error, attempts int, log logger.Logger, name string) error {
	delay := 500 * time.Millisecond
	var err error
	for i := 0; i < attempts; i++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		log.WithError(err).Warn("dependency not ready, retrying", map[string]interface{}{
			"dependency": name,
			"attempt":    i + 1,
		})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
