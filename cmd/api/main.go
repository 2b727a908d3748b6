package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/agents"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/api/router"
	appconfig "github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/config"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/faq"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/http/handlers"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/llm"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/observability/metrics"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/orchestrator"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/smsa"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/store"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/pkg/logging"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting SMSA assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Conversation persistence (optional: the assistant runs stateless
	// when DATABASE_URL is unset).
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			logger.Warn("database unreachable at startup, persistence is best-effort", "error", err)
		}
		cancel()
	} else {
		logger.Warn("DATABASE_URL not set, conversation persistence disabled")
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	var conversations store.ConversationStore
	if db != nil {
		conversations = store.NewPostgresStore(db)
		if redisClient != nil {
			conversations = store.NewCachedStore(conversations, redisClient, logger)
		}
	}

	// Uploaded-file metadata lives in OBS (S3-compatible).
	var files store.FileMetadataStore
	if cfg.OBSBucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.OBSRegion),
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.OBSAccessKey, cfg.OBSSecretKey, ""),
			),
		)
		if err != nil {
			logger.Error("failed to load OBS config", "error", err)
			os.Exit(1)
		}
		s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.OBSEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.OBSEndpoint)
			}
			o.UsePathStyle = true
		})
		files = store.NewObjectFileStore(s3Client, cfg.OBSBucket, logger)
	}

	// Text-generation providers: the OpenAI-compatible endpoint is
	// primary, Gemini covers its outages.
	var primary, fallback llm.StreamClient
	if cfg.LLMAPIURL != "" {
		client, err := llm.NewOpenAIClient(cfg.LLMAPIURL, cfg.LLMModel, cfg.LLMAPIKey, cfg.LLMTimeout)
		if err != nil {
			logger.Error("failed to create LLM client", "error", err)
			os.Exit(1)
		}
		primary = client
	}
	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create Gemini client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		fallback = client
	}
	var llmClient llm.StreamClient
	switch {
	case primary != nil && fallback != nil:
		llmClient = llm.NewFallbackClient(primary, fallback, logger)
	case primary != nil:
		llmClient = primary
	case fallback != nil:
		llmClient = fallback
	default:
		logger.Warn("no LLM provider configured, responses degrade to deterministic formatting")
	}

	// SMSA provider clients
	trackingClient, err := smsa.NewTrackingClient(smsa.TrackingConfig{
		BaseURL:  cfg.TrackingBaseURL,
		Username: cfg.TrackingUsername,
		Password: cfg.TrackingPassword,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to create tracking client", "error", err)
		os.Exit(1)
	}

	var ratesAgent, retailAgent agents.Agent
	if cfg.RatesBaseURL != "" {
		ratesClient, err := smsa.NewRatesClient(smsa.RatesConfig{
			BaseURL: cfg.RatesBaseURL,
			Passkey: cfg.RatesPasskey,
			Logger:  logger,
		})
		if err != nil {
			logger.Error("failed to create rates client", "error", err)
			os.Exit(1)
		}
		ratesAgent = agents.NewRatesAgent(ratesClient, logger)
	} else {
		logger.Warn("SMSA_RATES_BASE_URL not set, rates agent disabled")
	}
	if cfg.RetailBaseURL != "" {
		retailClient, err := smsa.NewRetailClient(smsa.RetailConfig{
			BaseURL: cfg.RetailBaseURL,
			Logger:  logger,
		})
		if err != nil {
			logger.Error("failed to create retail client", "error", err)
			os.Exit(1)
		}
		retailAgent = agents.NewRetailAgent(retailClient, logger)
	} else {
		logger.Warn("SMSA_RETAIL_BASE_URL not set, retail centers agent disabled")
	}

	faqLoader := faq.NewLoader(cfg.FAQDataPath, logger)
	trackingAgent := agents.NewTrackingAgent(trackingClient, llmClient, logger)
	faqAgent := agents.NewFAQAgent(llmClient, faqLoader, logger)

	// Orchestration pipeline
	turnMetrics := metrics.NewTurnMetrics(prometheus.DefaultRegisterer)
	workflow := orchestrator.NewWorkflow(
		orchestrator.NewClassifier(llmClient, logger),
		orchestrator.NewAssembler(conversations, files, cfg.HistoryLimit, logger),
		orchestrator.NewDispatcher(trackingAgent, ratesAgent, retailAgent, faqAgent, logger),
		orchestrator.NewAggregator(conversations, logger),
		turnMetrics,
		cfg.IntentLLMFallback && llmClient != nil,
		logger,
	)

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		Orchestrator:       handlers.NewOrchestratorHandler(workflow, conversations, logger),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: splitOrigins(cfg.CORSAllowedOrigins),
	}
	r := router.New(routerCfg)

	// Create HTTP server. Streaming turns can run for a while, so the
	// write timeout stays well above the LLM timeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * cfg.LLMTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
