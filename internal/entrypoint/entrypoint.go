package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bordereaux/internal/ai"
	"github.com/mrlokans/bordereaux/internal/config"
	"github.com/mrlokans/bordereaux/internal/database"
	http_controllers "github.com/mrlokans/bordereaux/internal/http"
	"github.com/mrlokans/bordereaux/internal/pipeline"
	"github.com/mrlokans/bordereaux/internal/scheduler"
	"github.com/mrlokans/bordereaux/internal/services"
	"github.com/mrlokans/bordereaux/internal/storage"
	"github.com/mrlokans/bordereaux/internal/suggestion"
	"github.com/mrlokans/bordereaux/internal/tasks"
	"github.com/mrlokans/bordereaux/internal/validation"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the task queue and sweep)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// BuildOrchestrator wires the processing pipeline from configuration. It is
// shared between the HTTP server and the CLI commands.
func BuildOrchestrator(cfg *config.Config, db *database.Database) (*pipeline.Orchestrator, *storage.Store, error) {
	store, err := storage.NewStore(cfg.Storage.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize file store: %w", err)
	}

	var aiClient ai.Client = ai.Disabled{}
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		aiClient = ai.NewOpenRouterClient(cfg.AI.APIKey,
			ai.WithModel(cfg.AI.Model),
			ai.WithBaseURL(cfg.AI.BaseURL),
			ai.WithTimeout(cfg.AI.Timeout),
		)
		log.Printf("AI mapping suggestions enabled (model: %s)", cfg.AI.Model)
	} else if cfg.AI.Enabled {
		log.Printf("WARNING: AI suggestions enabled but 'OPENROUTER_API_KEY' is not set. Falling back to heuristic matching only.")
	}

	generator := suggestion.NewGenerator(aiClient, suggestion.NewHeuristic(cfg.Suggestions.Threshold))

	rules := validation.DefaultRuleSet()
	if cfg.Rules.Path != "" {
		rules, err = validation.LoadRuleSet(cfg.Rules.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load validation rules from %s: %w", cfg.Rules.Path, err)
		}
		log.Printf("Loaded %d validation rules from %s", len(rules.Rules), cfg.Rules.Path)
	}

	orchestrator := pipeline.NewOrchestrator(db, store, generator, rules, pipeline.Options{
		MatchThreshold: cfg.Matcher.Threshold,
		SampleRows:     cfg.Suggestions.SampleRows,
	})
	return orchestrator, store, nil
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bordereaux v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	orchestrator, store, err := BuildOrchestrator(cfg, db)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}
	intake := services.NewIntakeService(db, store)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewProcessFileQueue(orchestrator),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	} else {
		log.Printf("Task queue disabled; files are processed only by CLI runs")
	}

	// Periodic sweep catches files that were received but never enqueued
	// (e.g. the process died between intake and enqueue).
	var sweep *scheduler.SweepScheduler
	if cfg.Scheduler.Enabled && taskClient != nil {
		sweep = scheduler.NewSweepScheduler(db, taskClient, cfg.Scheduler.Schedule)
		if err := sweep.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start sweep scheduler: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:     db,
		Intake:       intake,
		Orchestrator: orchestrator,
		TaskClient:   taskClient,
		Version:      version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if sweep != nil {
			sweep.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
