package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"visa-portal/internal/api"
	"visa-portal/internal/assessment/session"
	commonaws "visa-portal/internal/common/aws"
	"visa-portal/internal/common/camunda"
	"visa-portal/internal/common/config"
	"visa-portal/internal/common/database"
	"visa-portal/internal/common/logger"
	"visa-portal/internal/common/observability"
	"visa-portal/internal/common/validation"
	"visa-portal/internal/common/zoho"

	sen "visa-portal/internal/workers/communication/send-enquiry-notification"
	clc "visa-portal/internal/workers/crm/crm-lead-create"
	qe "visa-portal/internal/workers/data-access/query-elasticsearch"
	qp "visa-portal/internal/workers/data-access/query-postgresql"
	cv "visa-portal/internal/workers/enquiry/captcha-verify"
	cer "visa-portal/internal/workers/enquiry/create-enquiry-record"
	cr "visa-portal/internal/workers/visa-assessment/calculate-recommendations"
	gr "visa-portal/internal/workers/visa-assessment/generate-report"
	lq "visa-portal/internal/workers/visa-assessment/load-questions"
)

const serviceName = "visa-portal"

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting visa portal...", zap.String("version", cfg.App.Version))

	obs, err := observability.New(serviceName)
	if err != nil {
		zapLog.Warn("otel exporter unavailable, report metrics disabled", zap.Error(err))
	}

	ctx := context.Background()
	backends := map[string]database.Pinger{}

	// --- Backends. Each is optional: without it the portal serves fallbacks. ---
	var db *sql.DB
	if cfg.Database.Postgres.Configured() {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.ConnectPostgres(ctx, cfg.Database.Postgres)
			return err
		}, 5, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Error("postgres unavailable, serving fallback content", zap.Error(err))
		} else {
			defer pg.Close()
			db = pg.GetDB()
			backends["postgres"] = pg
			zapLog.Info("PostgreSQL connected successfully")
		}
	} else {
		zapLog.Warn("postgres not configured, serving fallback content")
	}

	var rdb *redis.Client
	if cfg.Database.Redis.Address != "" {
		var rc *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rc, err = database.ConnectRedis(ctx, cfg.Database.Redis)
			return err
		}, 5, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Error("redis unavailable, sessions and captcha disabled", zap.Error(err))
		} else {
			defer rc.Close()
			rdb = rc.GetClient()
			backends["redis"] = rc
			zapLog.Info("Redis connected successfully")
		}
	}

	var esClient *elasticsearch.Client
	if cfg.Database.Elasticsearch.GetURL() != "" {
		var ec *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			ec, err = database.ConnectElasticsearch(ctx, cfg.Database.Elasticsearch)
			return err
		}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Error("elasticsearch unavailable, search disabled", zap.Error(err))
		} else {
			defer ec.Close()
			esClient = ec.GetClient()
			backends["elasticsearch"] = ec
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	// --- External service clients ---
	var leadClient clc.LeadClient
	if cfg.Integrations.Zoho.AuthToken != "" {
		leadClient = zoho.NewCRMClient(cfg.Integrations.Zoho.BaseURL, cfg.Integrations.Zoho.AuthToken)
	}

	var emailSender sen.EmailSender
	if cfg.Integrations.AWS.SES.Enabled {
		ses, err := commonaws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Error("SES client init failed", zap.Error(err))
		} else {
			emailSender = ses
		}
	}

	var smsSender sen.SMSSender
	if cfg.Integrations.AWS.SNS.Enabled {
		sns, err := commonaws.NewSNSClient(ctx, cfg.Integrations.AWS.Region, cfg.Integrations.AWS.SNS.DefaultSMSSenderID)
		if err != nil {
			zapLog.Error("SNS client init failed", zap.Error(err))
		} else {
			smsSender = sns
		}
	}

	// --- Handlers shared by the job workers and the HTTP API ---
	queryPostgres := qp.NewHandler(&qp.Config{
		Timeout: workerTimeout(cfg, qp.TaskType, 10*time.Second),
	}, db, log)

	queryElastic := qe.NewHandler(&qe.Config{
		Timeout: workerTimeout(cfg, qe.TaskType, 10*time.Second),
		Index:   cfg.Database.Elasticsearch.ContentIndex,
	}, esClient, log)

	loadQuestions := lq.NewHandler(&lq.Config{
		Timeout:           workerTimeout(cfg, lq.TaskType, 10*time.Second),
		CacheTTL:          cfg.Assessment.QuestionCacheDuration(),
		FanOutQuestionIDs: cfg.Assessment.FanOutQuestionIDs,
	}, queryPostgres, rdb, log)

	calculate := cr.NewHandler(&cr.Config{
		Timeout:     workerTimeout(cfg, cr.TaskType, 10*time.Second),
		UseFallback: true,
	}, queryPostgres, log)

	reportCfg := gr.DefaultConfig()
	if cfg.App.Name != "" {
		reportCfg.CompanyName = cfg.App.Name
	}
	reportCfg.Title = cfg.Assessment.ReportTitle
	reports := gr.NewService(gr.ServiceDependencies{Logger: log, Observability: obs}, reportCfg)

	captchaCfg := cv.DefaultConfig()
	if cfg.Integrations.Captcha.MaxAttempts > 0 {
		captchaCfg.MaxAttempts = cfg.Integrations.Captcha.MaxAttempts
	}
	if cfg.Integrations.Captcha.Expiry > 0 {
		captchaCfg.ExpiryMinutes = (cfg.Integrations.Captcha.Expiry + 59) / 60
	}
	captchaCfg.Enabled = rdb != nil
	captcha := cv.NewService(cv.ServiceDependencies{Logger: log, Redis: rdb}, captchaCfg)

	enquiries := cer.NewHandler(&cer.Config{
		Timeout:         workerTimeout(cfg, cer.TaskType, 10*time.Second),
		DuplicateWindow: 24 * time.Hour,
	}, db, log)

	leads, err := clc.NewHandler(clc.HandlerOptions{AppConfig: cfg, Client: leadClient, Logger: log})
	if err != nil {
		zapLog.Fatal("crm-lead-create config invalid", zap.Error(err))
	}

	notifier := sen.NewHandler(sen.ConfigFromApp(cfg), emailSender, smsSender, log)

	// --- Camunda: job workers and the enquiry process ---
	var process api.ProcessStarter
	var pool *camunda.WorkerPool
	if cfg.Camunda.Enabled {
		var zb *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zb, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Error("zeebe unavailable, enquiries run inline", zap.Error(err))
		} else {
			defer zb.Close()
			process = zb
			backends["zeebe"] = zb

			pool = camunda.NewWorkerPool(zb.GetClient(), zapLog)
			pool.Start(qp.TaskType, config.GetWorkerConfig(cfg, qp.TaskType), queryPostgres.Handle)
			pool.Start(qe.TaskType, config.GetWorkerConfig(cfg, qe.TaskType), queryElastic.Handle)
			pool.Start(lq.TaskType, config.GetWorkerConfig(cfg, lq.TaskType), loadQuestions.Handle)
			pool.Start(cr.TaskType, config.GetWorkerConfig(cfg, cr.TaskType), calculate.Handle)
			pool.Start(cer.TaskType, config.GetWorkerConfig(cfg, cer.TaskType), enquiries.Handle)
			pool.Start(clc.TaskType, config.GetWorkerConfig(cfg, clc.TaskType), leads.Handle)
			pool.Start(sen.TaskType, config.GetWorkerConfig(cfg, sen.TaskType), notifier.Handle)
			zapLog.Info("All workers registered", zap.Int("count", pool.Count()))
		}
	}

	for _, vt := range cfg.Assessment.VisaTypes {
		out, err := loadQuestions.Execute(ctx, &lq.Input{VisaType: vt})
		if err != nil {
			zapLog.Warn("question set warm-up failed", zap.String("visaType", vt), zap.Error(err))
			continue
		}
		zapLog.Info("question set loaded", zap.String("visaType", vt), zap.String("source", out.Source), zap.Int("questions", len(out.Questions)))
	}

	// --- HTTP API ---
	validator, err := validation.NewValidator()
	if err != nil {
		zapLog.Fatal("request schemas failed to compile", zap.Error(err))
	}

	var sessions *session.Store
	if rdb != nil {
		sessions = session.NewStore(rdb, cfg.Assessment.SessionDuration())
	}

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := api.Dependencies{
		Logger:                log,
		Validator:             validator,
		Questions:             loadQuestions,
		Recommendations:       calculate,
		Reports:               reports,
		Sessions:              sessions,
		ClosingSectionOrdinal: cfg.Assessment.ClosingSectionOrdinal,
		Content:               queryPostgres,
		Captcha:               captcha,
		Enquiries:             enquiries,
		Leads:                 leads,
		Notifier:              notifier,
		Process:               process,
		EnquiryProcess:        cfg.Camunda.EnquiryProcess,
		ServiceName:           serviceName,
		AllowedHosts:          cfg.Server.AllowedHosts,
		IsDevelopment:         cfg.App.Environment != "production",
		RateLimitRequests:     cfg.Server.RateLimit.Requests,
		RateLimitWindow:       config.GetDuration(cfg.Server.RateLimit.Window),
		RequestTimeout:        config.GetDuration(cfg.Server.ReadTimeout),
		Backends:              backends,
	}
	if esClient != nil {
		deps.Search = queryElastic
	}

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("API server failed", zap.Error(err))
		}
	}()

	// --- Metrics and pprof on the internal port ---
	if cfg.Server.MetricsPort > 0 && cfg.Server.MetricsPort != cfg.Server.Port {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			addr := ":" + strconv.Itoa(cfg.Server.MetricsPort)
			zapLog.Info("Metrics listening", zap.String("addr", addr))
			if err := http.ListenAndServe(addr, nil); err != nil {
				zapLog.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("API shutdown incomplete", zap.Error(err))
	}
	if pool != nil {
		pool.Close()
	}
	if obs != nil {
		if err := obs.Shutdown(shutdownCtx); err != nil {
			zapLog.Warn("otel shutdown failed", zap.Error(err))
		}
	}

	zapLog.Info("Shutdown complete")
}

func workerTimeout(cfg *config.Config, taskType string, def time.Duration) time.Duration {
	if wcfg := config.GetWorkerConfig(cfg, taskType); wcfg.Timeout > 0 {
		return config.GetDuration(wcfg.Timeout)
	}
	return def
}
