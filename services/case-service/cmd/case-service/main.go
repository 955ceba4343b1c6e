package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jmarbas/lupon-cms/libs/config"
	"github.com/jmarbas/lupon-cms/libs/db"
	"github.com/jmarbas/lupon-cms/libs/httpx"
	"github.com/jmarbas/lupon-cms/libs/kafkax"
	otelx "github.com/jmarbas/lupon-cms/libs/otel"
	"github.com/jmarbas/lupon-cms/libs/runtime"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/handlers"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/outbox"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/schedule"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	service := config.String("SERVICE_NAME", "case-service")
	port, err := config.Port("PORT", "5000")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	caseRepo := storage.NewCaseRepository(pool)
	hearingRepo := storage.NewHearingRepository(pool)
	luponRepo := storage.NewLuponRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	availabilityCache := schedule.NewCache()
	complaintHandler := handlers.NewComplaintHandler(caseRepo, outboxRepo, logger, nil)
	referralHandler := handlers.NewReferralHandler(caseRepo, outboxRepo, logger, nil)
	settlementHandler := handlers.NewSettlementHandler(caseRepo, outboxRepo, logger, nil)
	luponHandler := handlers.NewLuponHandler(luponRepo, logger, nil)
	scheduleHandler := handlers.NewScheduleHandler(caseRepo, hearingRepo, outboxRepo, availabilityCache, logger, nil)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("POST /api/complaints", complaintHandler.Create)
	mux.HandleFunc("GET /api/complaints", complaintHandler.List)
	mux.HandleFunc("POST /api/complaints/status", complaintHandler.UpdateStatus)
	mux.HandleFunc("GET /api/referrals", referralHandler.List)
	mux.HandleFunc("POST /api/referrals", referralHandler.Create)
	mux.HandleFunc("GET /api/settlements", settlementHandler.List)
	mux.HandleFunc("POST /api/settlements", settlementHandler.Create)
	mux.HandleFunc("GET /api/lupon/members", luponHandler.List)
	mux.HandleFunc("POST /api/lupon/members", luponHandler.Create)
	mux.HandleFunc("POST /api/lupon/members/update", luponHandler.Update)
	mux.HandleFunc("GET /api/mediation/available-slots/{date}", scheduleHandler.AvailableSlots)
	mux.HandleFunc("POST /api/mediation/schedule", scheduleHandler.Schedule)
	mux.HandleFunc("POST /api/mediation/cancel", scheduleHandler.Cancel)

	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 60)
	var rateLimitMW httpx.Middleware
	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		defer func() { _ = rdb.Close() }()

		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl"))
		rateLimitMW = rl.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
	} else {
		rl := httpx.NewRateLimiter(limitPerMinute, time.Minute)
		rateLimitMW = rl.Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	}

	handler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   parseList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "X-Request-Id"},
			AllowCredentials: config.Bool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           10 * time.Minute,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20))),
		httpx.WithTimeout(time.Duration(config.Int("REQUEST_TIMEOUT_SECONDS", 10))*time.Second),
		rateLimitMW,
	)
	handler = otelhttp.NewHandler(handler, "case")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
