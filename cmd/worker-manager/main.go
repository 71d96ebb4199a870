// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"content-policy-workers/internal/common/aws"
	"content-policy-workers/internal/common/camunda"
	"content-policy-workers/internal/common/config"
	"content-policy-workers/internal/common/database"
	"content-policy-workers/internal/common/logger"
	"content-policy-workers/internal/common/observability"
	"content-policy-workers/internal/policy/engine"
	"content-policy-workers/internal/policy/scoring"
	"content-policy-workers/internal/policy/store"

	ec "content-policy-workers/internal/workers/content-review/evaluate-content"
	ipd "content-policy-workers/internal/workers/content-review/index-policy-decision"
	nro "content-policy-workers/internal/workers/content-review/notify-review-outcome"
	ppd "content-policy-workers/internal/workers/content-review/persist-policy-decision"
	rat "content-policy-workers/internal/workers/content-review/resolve-age-tier"
)

// storageRetry governs the initial connection to Postgres, Redis and
// Elasticsearch, which usually start alongside the workers.
var storageRetry = &camunda.RetryConfig{
	MaxRetries: 15,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	log.Info("starting worker manager", map[string]interface{}{
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.Plaintext,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	log.Info("zeebe client connected", map[string]interface{}{"gateway": cfg.Camunda.BrokerAddress})

	// --- PostgreSQL ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres client failed", zap.Error(err))
	}
	defer pg.Close()
	if err := camunda.RetryWithBackoff(ctx, storageRetry, log, "postgres connection", pg.Ping); err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("postgres schema failed", zap.Error(err))
	}
	log.Info("postgres connected", nil)

	// --- Redis ---
	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()
	if err := camunda.RetryWithBackoff(ctx, storageRetry, log, "redis connection", rdb.Ping); err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	log.Info("redis connected", nil)

	// --- Elasticsearch ---
	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
	if err != nil {
		zapLog.Fatal("elasticsearch client failed", zap.Error(err))
	}
	if err := camunda.RetryWithBackoff(ctx, storageRetry, log, "elasticsearch connection", es.Ping); err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	if err := es.EnsureDecisionIndex(ctx, cfg.Database.Elasticsearch.DecisionIdx); err != nil {
		zapLog.Fatal("elasticsearch index setup failed", zap.Error(err))
	}
	log.Info("elasticsearch connected", map[string]interface{}{"index": cfg.Database.Elasticsearch.DecisionIdx})

	// --- Policy ---
	policies, err := store.New(store.Options{
		LexiconPath: cfg.Policy.LexiconPath,
		TiersPath:   cfg.Policy.TiersPath,
		Thresholds: scoring.Thresholds{
			ApprovedCutoff: cfg.Policy.ApprovedCutoff,
			RevisionCutoff: cfg.Policy.RevisionCutoff,
		},
		PositiveFloor: *cfg.Policy.PositiveFloor,
	}, log)
	if err != nil {
		zapLog.Fatal("policy load failed", zap.Error(err))
	}
	if cfg.Policy.Watch {
		go func() {
			if err := policies.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("policy watcher stopped", map[string]interface{}{"error": err.Error()})
			}
		}()
	}
	evaluator := engine.New(policies, log)

	// --- Notifications ---
	var (
		sesClient *aws.SESClient
		snsClient *aws.SNSClient
	)
	if cfg.Notifications.Email.Enabled {
		if sesClient, err = aws.NewSESClient(ctx, cfg.Notifications.AWS.Region); err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
	}
	if cfg.Notifications.Moderation.Enabled {
		if snsClient, err = aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region); err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
	}

	// --- Workers ---
	var workers []worker.JobWorker
	start := func(taskType string, handler worker.JobHandler) {
		if jw := camunda.StartWorker(zeebe.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), handler, log); jw != nil {
			workers = append(workers, jw)
		}
	}

	{
		wcfg := config.GetWorkerConfig(cfg, rat.TaskType)
		c := rat.LoadConfig()
		c.Timeout = timeoutOr(wcfg, c.Timeout)
		if wcfg.CacheTTL > 0 {
			c.CacheTTL = time.Duration(wcfg.CacheTTL) * time.Second
		}
		start(rat.TaskType, rat.NewHandler(c, pg.DB, rdb, log).Handle)
	}
	{
		c := ec.LoadConfig()
		c.Timeout = timeoutOr(config.GetWorkerConfig(cfg, ec.TaskType), c.Timeout)
		start(ec.TaskType, ec.NewHandler(c, evaluator, obs, log).Handle)
	}
	{
		wcfg := config.GetWorkerConfig(cfg, ppd.TaskType)
		c := ppd.LoadConfig()
		c.Timeout = timeoutOr(wcfg, c.Timeout)
		if wcfg.CacheTTL > 0 {
			c.CacheTTL = time.Duration(wcfg.CacheTTL) * time.Second
		}
		start(ppd.TaskType, ppd.NewHandler(c, pg.DB, rdb, log).Handle)
	}
	{
		c := ipd.LoadConfig()
		c.Timeout = timeoutOr(config.GetWorkerConfig(cfg, ipd.TaskType), c.Timeout)
		c.Index = cfg.Database.Elasticsearch.DecisionIdx
		start(ipd.TaskType, ipd.NewHandler(c, es.Client, log).Handle)
	}
	{
		wcfg := config.GetWorkerConfig(cfg, nro.TaskType)
		c := nro.LoadConfig()
		c.Timeout = timeoutOr(wcfg, c.Timeout)
		if wcfg.CacheTTL > 0 {
			c.DeliveryTTL = time.Duration(wcfg.CacheTTL) * time.Second
		}
		c.EmailEnabled = cfg.Notifications.Email.Enabled
		if cfg.Notifications.Email.FromEmail != "" {
			c.FromEmail = cfg.Notifications.Email.FromEmail
		}
		c.ModerationEnabled = cfg.Notifications.Moderation.Enabled
		c.TopicARN = cfg.Notifications.Moderation.TopicARN
		if err := c.Validate(); err != nil {
			zapLog.Fatal("notify-review-outcome config invalid", zap.Error(err))
		}
		start(nro.TaskType, nro.NewHandler(c, sesClient, snsClient, rdb, log).Handle)
	}
	log.Info("workers registered", map[string]interface{}{"count": len(workers)})

	// --- Health & Metrics Server ---
	ready := func(ctx context.Context) map[string]string {
		checks := map[string]string{}
		record := func(name string, err error) {
			if err != nil {
				checks[name] = err.Error()
				return
			}
			checks[name] = "ok"
		}
		record("zeebe", zeebe.HealthCheck(ctx))
		record("postgres", pg.Ping(ctx))
		record("redis", rdb.Ping(ctx))
		record("elasticsearch", es.Ping(ctx))
		if policies.Current() == nil {
			checks["policy"] = "not loaded"
		} else {
			checks["policy"] = "ok"
		}
		return checks
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		rctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := ready(rctx)
		status, code := "ready", http.StatusOK
		for _, v := range checks {
			if v != "ok" {
				status, code = "not_ready", http.StatusServiceUnavailable
				break
			}
		}
		p := policies.Current()
		body := map[string]interface{}{
			"status": status,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		}
		if p != nil {
			body["lexiconVersion"] = p.Lexicon.Version()
			body["tierTableVersion"] = p.Tiers.Version()
		}
		writeJSON(w, code, body)
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("health/metrics server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health/metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("shutdown signal received, stopping workers", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, jw := range workers {
		jw.Close()
	}
	for _, jw := range workers {
		jw.AwaitClose()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("error stopping health server", map[string]interface{}{"error": err.Error()})
	}
	if err := zeebe.Close(); err != nil {
		log.Error("error closing zeebe client", map[string]interface{}{"error": err.Error()})
	}

	log.Info("worker manager stopped gracefully", nil)
}

func timeoutOr(wcfg config.WorkerConfig, fallback time.Duration) time.Duration {
	if wcfg.Timeout > 0 {
		return config.GetDuration(wcfg.Timeout)
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
