package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boutique-be/internal/cart"
	"boutique-be/internal/config"
	"boutique-be/internal/db"
	"boutique-be/internal/lock"
	"boutique-be/internal/logger"
	"boutique-be/internal/messaging"
	"boutique-be/internal/metrics"
	"boutique-be/internal/middleware"
	"boutique-be/internal/order"
	"boutique-be/internal/payment"
	"boutique-be/internal/payment/webhook"
	"boutique-be/internal/product"
	"boutique-be/internal/rest"
	"boutique-be/internal/stats"
	"boutique-be/internal/user"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	initDBFunc      = db.NewDatabase
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server exited", zap.Error(err))
	}
}

// infra holds the optional backing services. Redis and Kafka are used only
// when configured; otherwise the in-process fallbacks take over.
type infra struct {
	locker    lock.Locker
	publisher messaging.Publisher
	closers   []func() error
}

func (i *infra) Close() {
	for _, c := range i.closers {
		if err := c(); err != nil {
			logger.L().Warn("close failed", zap.Error(err))
		}
	}
}

func newInfra(ctx context.Context, cfg *config.Config) (*infra, error) {
	i := &infra{
		locker:    lock.NewMemoryLocker(),
		publisher: messaging.NewNopPublisher(),
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		i.locker = lock.NewRedisLocker(client, 0)
		i.closers = append(i.closers, client.Close)
		logger.L().Info("cart locks backed by redis", zap.String("addr", cfg.RedisAddr))
	}

	if len(cfg.KafkaBrokers) > 0 {
		i.publisher = messaging.NewKafkaPublisher(cfg.KafkaBrokers)
		i.closers = append(i.closers, i.publisher.Close)
		logger.L().Info("order events published to kafka", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	return i, nil
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	database, err := initDBFunc(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := newInfra(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey)
	go limiter.Run(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      setupRouter(newServer(cfg, database, deps), cfg, limiter),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newServer wires repositories, services and handlers into the route table.
func newServer(cfg *config.Config, database *sql.DB, deps *infra) *http.ServeMux {
	counters := &metrics.Payments{}

	productRepo := product.NewRepository(database)
	userRepo := user.NewRepository(database)
	orderRepo := order.NewRepository(database)

	productSvc := product.NewService(productRepo)
	userSvc := user.NewService(userRepo)
	cartSvc := cart.NewService(cart.NewRepository(database), productRepo, deps.locker)
	orderSvc := order.NewService(orderRepo, deps.publisher)
	statsSvc := stats.NewService(stats.NewRepository(database))

	gateway := payment.NewPaymeeGateway(payment.PaymeeConfig{
		APIKey:     cfg.PaymeeAPIKey,
		BaseURL:    cfg.PaymeeBaseURL,
		ReturnURL:  cfg.PaymeeReturnURL,
		CancelURL:  cfg.PaymeeCancelURL,
		WebhookURL: cfg.PaymeeWebhookURL,
		Timeout:    cfg.PaymeeTimeout,
	})
	paymentSvc := payment.NewService(orderSvc, userRepo, gateway, payment.NewRepository(database), counters)

	h := rest.NewHandler(rest.Deps{
		Products:   productSvc,
		Users:      userSvc,
		Carts:      cartSvc,
		Orders:     orderSvc,
		Payments:   paymentSvc,
		Stats:      statsSvc,
		Counters:   counters,
		Production: cfg.IsProduction(),
	})

	return rest.NewRouter(h, webhook.NewWebhookHandler(paymentSvc).PaymeeWebhookHandler)
}

// setupRouter wraps the routes in the middleware chain, outermost first:
// recover, request id, CORS, auth, access log, rate limit.
func setupRouter(routes http.Handler, cfg *config.Config, limiter *middleware.RateLimiter) http.Handler {
	var h http.Handler = routes
	h = limiter.Middleware(h)
	h = logger.LoggingMiddleware(h)
	h = middleware.AuthMiddleware(h)
	h = middleware.CORS(cfg.CORSOrigin)(h)
	h = logger.RequestIDMiddleware(h)
	return middleware.Recoverer(h)
}
