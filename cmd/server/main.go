package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"pressroom.app/pressroom/common/id"
	"pressroom.app/pressroom/common/llm"
	"pressroom.app/pressroom/common/logger"
	"pressroom.app/pressroom/common/otel"
	"pressroom.app/pressroom/core/config"
	"pressroom.app/pressroom/internal/http/handler"
	"pressroom.app/pressroom/internal/http/middleware"
	httprouter "pressroom.app/pressroom/internal/http/router"
	"pressroom.app/pressroom/internal/journalist"
	"pressroom.app/pressroom/internal/newsroom"
	"pressroom.app/pressroom/internal/persona"
	"pressroom.app/pressroom/internal/queue"
	"pressroom.app/pressroom/internal/remote"
	"pressroom.app/pressroom/internal/service"
	"pressroom.app/pressroom/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "pressroom starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	var redisClient redis.UniversalClient
	if cfg.Pipeline.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Pipeline.RedisURL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}
		client := redis.NewClient(redisOpts)
		if err := client.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		redisClient = client
		slog.InfoContext(ctx, "redis connected", "stream", cfg.Pipeline.RedisStream)
	}

	// the redis producer owns the client and closes it
	eventProducer := queue.NewNopProducer()
	if redisClient != nil {
		eventProducer = queue.NewRedisProducer(redisClient, cfg.Pipeline.RedisStream, slog.Default())
	}
	defer eventProducer.Close()

	stores, err := store.NewStores(cfg.Sessions, redisClient)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create session stores", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "session store ready", "kind", cfg.Sessions.Store, "ttl", cfg.Sessions.TTL)

	personas, err := persona.Load(cfg.PersonasFile)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load personas", "error", err)
		os.Exit(1)
	}

	orchestrator, err := setupOrchestrator(ctx, cfg, personas)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set up journalist", "error", err)
		os.Exit(1)
	}

	supervisor, err := setupNewsroom(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set up newsroom", "error", err)
		os.Exit(1)
	}

	services := service.NewServices(stores, orchestrator, supervisor, eventProducer)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, personas)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// a turn can wait on generate plus every explain mode
		WriteTimeout: cfg.Press.GenerateTimeout + cfg.Press.ExplainTimeout*time.Duration(len(cfg.Press.ExplainModes)+1) + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupOrchestrator(ctx context.Context, cfg config.Config, personas *persona.Registry) (*journalist.Orchestrator, error) {
	var generator journalist.Generator
	switch cfg.Press.Backend {
	case config.BackendLLM:
		client, err := llm.NewAgentClient(llm.Config{
			Provider: cfg.JournalistLLM.Provider,
			APIKey:   cfg.JournalistLLM.APIKey,
			BaseURL:  cfg.JournalistLLM.BaseURL,
			Model:    cfg.JournalistLLM.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("creating journalist llm client: %w", err)
		}
		generator = journalist.NewLLMGenerator(client, cfg.JournalistLLM.MaxTokens)
	default:
		generator = journalist.NewTunnelGenerator(
			remote.New("generate", cfg.Press.GenerateTimeout),
			cfg.Press.GenerateURL,
			cfg.Press.MessagesPayload,
		)
	}
	if cfg.Press.MaxAttempts > 1 {
		generator = journalist.WithRetry(generator, cfg.Press.MaxAttempts, cfg.Press.RetryBackoff)
	}

	var opts []journalist.Option
	modes := cfg.Press.ExplainModes
	if cfg.Press.ExplainURL != "" {
		if len(modes) == 0 {
			modes = []string{cfg.Press.PrimaryMode}
		}
		opts = append(opts, journalist.WithExplainer(
			journalist.NewRemoteExplainer(remote.New("explain", cfg.Press.ExplainTimeout), cfg.Press.ExplainURL),
		))
	} else {
		modes = nil
	}
	if cfg.Press.AnalyzeURL != "" {
		opts = append(opts, journalist.WithAnalyzer(
			journalist.NewRemoteAnalyzer(remote.New("analyze", cfg.Press.AnalyzeTimeout), cfg.Press.AnalyzeURL),
		))
	}

	slog.InfoContext(ctx, "journalist ready",
		"backend", cfg.Press.Backend,
		"explain_modes", modes,
		"analyzer", cfg.Press.AnalyzeURL != "")

	return journalist.NewOrchestrator(journalist.OrchestratorConfig{
		HistoryBudget: cfg.Press.HistoryBudget,
		ExplainModes:  modes,
		PrimaryMode:   cfg.Press.PrimaryMode,
	}, personas, generator, opts...), nil
}

// setupNewsroom wires the supervisor. Without an LLM key only keyword routing
// is available and every sub-agent reports itself unavailable.
func setupNewsroom(ctx context.Context, cfg config.Config) (*newsroom.Router, error) {
	llmCfg := llm.Config{
		Provider: cfg.NewsroomLLM.Provider,
		APIKey:   cfg.NewsroomLLM.APIKey,
		BaseURL:  cfg.NewsroomLLM.BaseURL,
		Model:    cfg.NewsroomLLM.Model,
	}

	oracle := newsroom.NewRemoteOracle(remote.New("classifier", cfg.Classifier.Timeout), cfg.Classifier.URL)
	if !cfg.Classifier.Enabled() {
		slog.WarnContext(ctx, "classifier url not configured, detection requests will fail")
	}

	if !cfg.NewsroomLLM.Enabled() {
		slog.WarnContext(ctx, "newsroom llm not configured, using keyword routing only")
		return newsroom.NewRouter(nil, nil, nil, newsroom.NewDetector(oracle, nil, cfg.Classifier.ConfidenceThreshold)), nil
	}

	structured, err := llm.New(llmCfg)
	if err != nil {
		return nil, fmt.Errorf("creating newsroom llm client: %w", err)
	}
	agent, err := llm.NewAgentClient(llmCfg)
	if err != nil {
		return nil, fmt.Errorf("creating newsroom agent client: %w", err)
	}

	detector := newsroom.NewDetector(oracle, newsroom.NewLLMVerifier(structured), cfg.Classifier.ConfidenceThreshold)
	slog.InfoContext(ctx, "newsroom ready",
		"model", structured.Model(),
		"classifier", cfg.Classifier.Enabled(),
		"confidence_threshold", cfg.Classifier.ConfidenceThreshold)

	return newsroom.NewRouter(
		newsroom.NewLLMClassifier(agent),
		newsroom.NewCreator(structured),
		newsroom.NewAnalyst(structured),
		detector,
	), nil
}

func setupRouter(cfg config.Config, services *service.Services, personas handler.PersonaLister) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, personas, httprouter.RouterConfig{
		SessionTTL:   cfg.Sessions.TTL,
		IsProduction: cfg.IsProduction(),
	})

	return router
}

const banner = `
 ___  ___  ___  ___  ___  ___  ___  ___  __  __
| _ \| _ \| __|/ __|/ __|| _ \/ _ \/ _ \|  \/  |
|  _/|   /| _| \__ \\__ \|   / (_) | (_) | |\/| |
|_|  |_|_\|___||___/|___/|_|_\\___/ \___/|_|  |_|
`
