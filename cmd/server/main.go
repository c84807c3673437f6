package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/advice"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/auth"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/clock"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/command"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/config"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/events"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/idgen"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/metrics"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/middleware"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/receipts"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/rpc"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/seed"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/service"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage/memory"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage/sqlite"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/pkg/logging"
)

const tokenDuration = 24 * time.Hour

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, err := cfg.Group()
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg, group)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.SeedPath != "" {
		res, err := seed.LoadFile(ctx, store, cfg.SeedPath)
		if err != nil {
			return err
		}
		slog.Info("Seed applied", "path", cfg.SeedPath, "members", res.Members, "announcements", res.Announcements)
	}

	receiptStore, err := receipts.New(ctx, receipts.Config{
		Backend:  receipts.Backend(cfg.ReceiptBackend),
		LocalDir: cfg.ReceiptDir,
		Bucket:   cfg.S3Bucket,
		Region:   cfg.S3Region,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize receipt store: %w", err)
	}
	slog.Info("Receipt store initialized", "backend", cfg.ReceiptBackend)

	publisher, err := openPublisher(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	adviser, closeAdvice, err := openAdvice(ctx, cfg, group.Name)
	if err != nil {
		return err
	}
	defer closeAdvice()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	clk := clock.System{}
	ids := idgen.UUID{}

	dispatcher := command.New(command.Services{
		Config:        service.NewConfigService(store, clk, publisher),
		Members:       service.NewMemberService(store, clk, publisher, m),
		Collections:   service.NewCollectionService(store, receiptStore, clk, ids, publisher, m),
		Ledger:        service.NewLedgerService(store),
		Plans:         service.NewPlanService(store, ids),
		Announcements: service.NewAnnouncementService(store, clk, ids, publisher),
		Alerts:        service.NewAlertService(store, clk),
		Advice:        service.NewAdviceService(store, adviser),
	})

	interceptors := []connect.Interceptor{}
	switch {
	case cfg.RequireAuth:
		interceptors = append(interceptors, middleware.RequireAuth(auth.NewJWTManager(cfg.JWTSecret, tokenDuration)))
	case cfg.JWTSecret != "":
		interceptors = append(interceptors, middleware.OptionalAuth(auth.NewJWTManager(cfg.JWTSecret, tokenDuration)))
	default:
		slog.Warn("JWT_SECRET not set, requests carry no identity")
	}
	interceptors = append(interceptors, middleware.LoggingInterceptor(m))

	mux := http.NewServeMux()
	path, handler := rpc.NewHandler(dispatcher, connect.WithInterceptors(interceptors...))
	mux.Handle(path, handler)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		// h2c serves HTTP/2 without TLS for Connect clients
		Handler:        h2c.NewHandler(corsMiddleware(mux), &http2.Server{}),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Connect server starting", "address", srv.Addr, "procedure", path, "commands", len(dispatcher.Names()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config, group models.GroupConfig) (storage.Store, error) {
	if cfg.StoreBackend == "memory" {
		slog.Info("Storage initialized", "backend", "memory")
		return memory.New(group), nil
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	_, err = store.GetConfig(ctx)
	if errors.Is(err, models.ErrNotFound) {
		err = store.SaveConfig(ctx, &group)
	}
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize group config: %w", err)
	}

	slog.Info("Storage initialized", "backend", "sqlite", "database", cfg.DBPath)
	return store, nil
}

func openPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		return events.Nop{}, nil
	}
	pub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, fmt.Errorf("failed to connect event publisher: %w", err)
	}
	slog.Info("Event publisher connected", "exchange", cfg.AMQPExchange)
	return pub, nil
}

// openAdvice builds the advice service. Without a Gemini key it serves the
// localized fallback texts.
func openAdvice(ctx context.Context, cfg *config.Config, groupName string) (*advice.Service, func(), error) {
	closeFn := func() {}
	opts := []advice.Option{advice.WithTimeout(cfg.AdviceTimeout)}

	if cfg.RedisURL != "" {
		cache, err := advice.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect advice cache: %w", err)
		}
		closeFn = func() { cache.Close() }
		opts = append(opts, advice.WithCache(cache, cfg.AdviceCacheTTL))
		slog.Info("Advice cache connected")
	}

	var gen advice.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := advice.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		gen = g
		slog.Info("Advice generator enabled", "model", cfg.GeminiModel)
	}

	return advice.NewService(groupName, gen, opts...), closeFn, nil
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, "+rpc.ErrorKindHeader)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
