package app

import (
	"context"
	"fmt"
	"io"

	"gorm.io/gorm"

	"github.com/yungbote/hrgen/internal/modules/hrcontent/docreplica"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/generator"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/ledger"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/pipelines"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/publish"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/runner"
	"github.com/yungbote/hrgen/internal/observability"
	"github.com/yungbote/hrgen/internal/platform/gcp"
	"github.com/yungbote/hrgen/internal/platform/gemini"
	"github.com/yungbote/hrgen/internal/platform/gworkspace"
	"github.com/yungbote/hrgen/internal/platform/logger"
	"github.com/yungbote/hrgen/internal/platform/openai"
)

type App struct {
	Log     *logger.Logger
	Cfg     Config
	DB      *gorm.DB
	Ledger  ledger.UsageRecordRepo
	Metrics *observability.RunMetrics

	shutdownOTel func(context.Context) error
	workspace    *gworkspace.Service
	store        gcp.ObjectStore
}

// New sets up logging, tracing and the run ledger. Google clients are
// created on first use so that dry runs need no credentials.
func New(ctx context.Context, cfg Config) (*App, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &App{
		Log:     log,
		Cfg:     cfg,
		Metrics: observability.NewRunMetrics(),
	}
	a.shutdownOTel = observability.InitOTel(ctx, log, cfg.Telemetry)

	if cfg.Ledger.Disabled {
		log.Info("Run ledger disabled")
	} else {
		db, err := ledger.Open(cfg.Ledger.DSN)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("init ledger: %w", err)
		}
		a.DB = db
		a.Ledger = ledger.NewUsageRecordRepo(db, log)
	}
	return a, nil
}

func (c Config) credentials() gcp.Credentials {
	return gcp.Credentials{JSON: c.Google.CredentialsJSON, File: c.Google.CredentialsFile}
}

func (a *App) jsonClient(ctx context.Context) (generator.JSONClient, error) {
	switch a.Cfg.Provider {
	case ProviderGemini:
		c, err := gemini.NewClient(ctx, a.Log, gemini.Config{
			APIKey:  a.Cfg.Gemini.APIKey,
			Model:   a.Cfg.Gemini.Model,
			BaseURL: a.Cfg.Gemini.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		return generator.FromGemini(c), nil
	default:
		c, err := openai.NewClient(a.Log, openai.Config{
			APIKey:              a.Cfg.OpenAI.APIKey,
			BaseURL:             a.Cfg.OpenAI.BaseURL,
			Model:               a.Cfg.OpenAI.Model,
			Timeout:             a.Cfg.OpenAI.Timeout(),
			NoTemperatureModels: a.Cfg.OpenAI.NoTemperatureModels,
		})
		if err != nil {
			return nil, fmt.Errorf("init openai: %w", err)
		}
		return generator.FromOpenAI(c), nil
	}
}

func (a *App) googleWorkspace(ctx context.Context) (*gworkspace.Service, error) {
	if a.workspace != nil {
		return a.workspace, nil
	}
	ws, err := gworkspace.New(ctx, a.Log, gworkspace.Config{
		Credentials: a.Cfg.credentials(),
		Endpoint:    a.Cfg.Google.Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("init google workspace: %w", err)
	}
	a.workspace = ws
	return ws, nil
}

func (a *App) objectStore(ctx context.Context) (gcp.ObjectStore, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := resolveObjectStore(ctx, a.Log, a.Cfg)
	if err != nil {
		return nil, err
	}
	a.store = store
	return store, nil
}

// Runner wires one pipeline. In a dry run nothing that writes to Google or
// to the mirror is built.
func (a *App) Runner(ctx context.Context, name pipelines.Name, dryRun bool, out io.Writer) (*runner.Runner, error) {
	def, err := a.Cfg.Definition(name)
	if err != nil {
		return nil, err
	}
	onFailure, err := runner.ParseFailurePolicy(a.Cfg.Runner.OnGenerationFailure)
	if err != nil {
		return nil, err
	}
	validation, err := runner.ParseValidationMode(a.Cfg.Runner.Validation)
	if err != nil {
		return nil, err
	}

	client, err := a.jsonClient(ctx)
	if err != nil {
		return nil, err
	}
	deps := runner.Deps{
		Log:        a.Log,
		Definition: def,
		Generator:  generator.New(client, def.Generation),
		Ledger:     a.Ledger,
		Metrics:    a.Metrics,
	}

	if !dryRun {
		ws, err := a.googleWorkspace(ctx)
		if err != nil {
			return nil, err
		}
		pub, err := publish.NewPublisher(a.Log, ws, ws, publish.Target{
			SpreadsheetURL: a.Cfg.SpreadsheetURL,
			Worksheet:      def.Worksheet,
		})
		if err != nil {
			return nil, err
		}
		deps.Publisher = pub
		if def.HasTemplate() {
			deps.Replicator = docreplica.NewReplicator(a.Log, ws, ws, def.DocSuffix)
		}
		if def.MirrorPath != "" {
			var store gcp.ObjectStore
			if _, _, ok := gcp.ParseObjectURL(def.MirrorPath); ok {
				if store, err = a.objectStore(ctx); err != nil {
					return nil, err
				}
			}
			mirror, err := publish.NewMirror(a.Log, store, def.MirrorPath)
			if err != nil {
				return nil, err
			}
			deps.Mirror = mirror
		}
	}

	return runner.New(deps, runner.Options{
		OnGenerationFailure: onFailure,
		Validation:          validation,
		DryRun:              dryRun,
		Out:                 out,
	})
}

// Close flushes metrics and tracing and releases clients.
func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.Cfg.MetricsFile != "" {
		if err := a.Metrics.WriteTextfile(a.Cfg.MetricsFile); err != nil {
			a.Log.Warn("metrics textfile write failed", "path", a.Cfg.MetricsFile, "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Log.Warn("object store close failed", "error", err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.shutdownOTel != nil {
		if err := a.shutdownOTel(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
