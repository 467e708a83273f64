package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"orgdiag/internal/gateway/config"
	"orgdiag/internal/gateway/handler"
	"orgdiag/internal/gateway/handler/rpc"
	"orgdiag/internal/gateway/middleware"
	"orgdiag/internal/gateway/server"
	"orgdiag/internal/llm"
	"orgdiag/internal/project"
	"orgdiag/internal/report"
	"orgdiag/internal/workspace"
)

type App struct {
	server  *server.Server
	handler http.Handler
	model   llm.Model
	svc     *workspace.Service
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(context.Background(), cfg)
}

// NewWithConfig wires every dependency from an explicit config.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := llm.NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	// Dependencies
	model, err := BuildModel(ctx, cfg.LLM, metrics)
	if err != nil {
		return nil, err
	}
	seed, err := loadSeed(cfg.Workspace.SeedPath)
	if err != nil {
		_ = model.Close()
		return nil, err
	}
	archive, err := buildArchive(cfg.Archive)
	if err != nil {
		_ = model.Close()
		return nil, err
	}
	svc, err := workspace.NewService(workspace.Options{
		Model:         model,
		Seed:          seed,
		MaxWorkspaces: cfg.Workspace.Max,
		Archive:       archive,
	})
	if err != nil {
		_ = model.Close()
		return nil, err
	}

	wizardHandler := rpc.NewWizardHandler(svc)
	interviewHandler := rpc.NewInterviewHandler(svc)
	reportHandler := handler.NewReportHandler(svc, archive)

	// Routing & Server
	var mux http.Handler = server.NewMux(wizardHandler, interviewHandler, reportHandler, registry)
	if cfg.LLM.Trace {
		log.Printf("LLM: tracing prompts and replies")
		mux = middleware.PromptTrace(llm.NewTraceHook(nil, 0), mux)
	}
	srv := server.New(cfg.Port, mux)

	return &App{
		server:  srv,
		handler: mux,
		model:   model,
		svc:     svc,
	}, nil
}

// BuildModel returns the configured model wrapped with logging, hooks,
// rate limiting and metrics.
func BuildModel(ctx context.Context, cfg config.LLMConfig, metrics *llm.Metrics) (llm.Model, error) {
	var base llm.Model
	if cfg.Fake {
		log.Printf("LLM: using offline fake model")
		base = llm.NewFakeClient()
	} else {
		gc, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:          cfg.APIKey,
			TurnModel:       cfg.InterviewModel,
			StructuredModel: cfg.SynthesisModel,
			Temperature:     cfg.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("init gemini client: %w", err)
		}
		base = gc
	}
	return llm.Wrap(base,
		llm.WithLogging(nil),
		llm.WithHooks(),
		llm.RateLimitFromEnv("LLM", "GEMINI"),
		llm.Instrument(metrics),
	), nil
}

func loadSeed(path string) (*project.State, error) {
	if path == "" {
		return nil, nil
	}
	st, err := project.LoadSeedFile(path)
	if err != nil {
		return nil, fmt.Errorf("load seed %s: %w", path, err)
	}
	log.Printf("Loaded workspace seed from %s", path)
	return &st, nil
}

func buildArchive(cfg config.ArchiveConfig) (report.Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	store, err := report.NewS3Store(report.S3Config{
		Endpoint:  cfg.Endpoint,
		Region:    cfg.Region,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Bucket:    cfg.Bucket,
		UseSSL:    cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init report archive: %w", err)
	}
	log.Printf("Archiving reports to s3://%s at %s", cfg.Bucket, cfg.Endpoint)
	return store, nil
}

func (a *App) Handler() http.Handler { return a.handler }

func (a *App) Service() *workspace.Service { return a.svc }

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if cerr := a.model.Close(); err == nil {
		err = cerr
	}
	return err
}
