/*
Package app wires every collaborator in the system into a runnable
process: logger, Postgres, Redis mirror, LLM client, Classifier Suite,
Call State Store, Voice Processor, Configuration Resolver, Call-History
Sink, Outbound Originator, Speech Orchestrator, Webhook Surface.
*/
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ivrline/callnav/internal/callstate"
	"github.com/ivrline/callnav/internal/classifiers"
	"github.com/ivrline/callnav/internal/config"
	"github.com/ivrline/callnav/internal/db"
	httpsurface "github.com/ivrline/callnav/internal/http"
	httpH "github.com/ivrline/callnav/internal/http/handlers"
	"github.com/ivrline/callnav/internal/historysink"
	"github.com/ivrline/callnav/internal/orchestrator"
	"github.com/ivrline/callnav/internal/platform/llm"
	"github.com/ivrline/callnav/internal/platform/logger"
	"github.com/ivrline/callnav/internal/platform/otelx"
	"github.com/ivrline/callnav/internal/telephony"
	"github.com/ivrline/callnav/internal/voiceprocessor"
)

// App bundles every running collaborator for Start/Run/Close.
type App struct {
	Log          *logger.Logger
	DB           *gorm.DB
	Router       *gin.Engine
	Cfg          Config
	Store        *callstate.Store
	History      historysink.Store
	Orchestrator *orchestrator.Orchestrator

	cancel       context.CancelFunc
	otelShutdown func(context.Context) error
}

// New builds the full dependency graph. Any failure here is fatal to
// process startup — unlike a failed turn, which always degrades
// gracefully.
func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig(log)

	otelShutdown := otelx.Init(context.Background(), log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	gormDB := pg.DB()

	mirror, err := historysink.NewRedisMirror(log)
	if err != nil {
		log.Warn("redis mirror unavailable, call-history mirroring disabled", "error", err)
		mirror = nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	llmClient, err := llm.New(log)
	if err != nil {
		cancel()
		log.Sync()
		return nil, fmt.Errorf("init llm client: %w", err)
	}

	originator, err := telephony.NewHTTPOriginator(log)
	if err != nil {
		cancel()
		log.Sync()
		return nil, fmt.Errorf("init telephony originator: %w", err)
	}

	store := callstate.New(log)
	go store.Run(ctx)

	historyStore := historysink.NewGormStore(ctx, gormDB, log, mirror)

	suite := classifiers.NewSuite(llmClient, cfg.AgentModel)
	processor := voiceprocessor.New(suite)

	resolver := config.NewResolver(log)
	persisted := config.LoadPersistedSettings(cfg.PersistedSettingsPath, log)

	orch := orchestrator.New(orchestrator.Deps{
		Log:               log,
		Store:             store,
		Resolver:          resolver,
		Processor:         processor,
		History:           historyStore,
		LLMClient:         llmClient,
		Originator:        originator,
		AgentModel:        cfg.AgentModel,
		BaseURL:           cfg.BaseURL,
		PersistedSettings: persisted,
	})

	voiceHandler := httpH.NewVoiceHandler(log, orch, cfg.BaseURL)
	healthHandler := httpH.NewHealthHandler()

	router := httpsurface.NewRouter(httpsurface.RouterConfig{
		Log:           log,
		VoiceHandler:  voiceHandler,
		HealthHandler: healthHandler,
	})

	return &App{
		Log:          log,
		DB:           gormDB,
		Router:       router,
		Cfg:          cfg,
		Store:        store,
		History:      historyStore,
		Orchestrator: orch,
		cancel:       cancel,
		otelShutdown: otelShutdown,
	}, nil
}

// Run blocks serving HTTP on Cfg.HTTPAddr.
func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(a.Cfg.HTTPAddr)
}

// Close stops the background TTL sweep and history drain workers and
// flushes the logger.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
