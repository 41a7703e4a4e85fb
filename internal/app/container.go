package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/doeshing/jarvis-go/internal/application/classify"
	"github.com/doeshing/jarvis-go/internal/application/dispatch"
	"github.com/doeshing/jarvis-go/internal/application/doctor"
	"github.com/doeshing/jarvis-go/internal/application/extract"
	"github.com/doeshing/jarvis-go/internal/application/pipeline"
	"github.com/doeshing/jarvis-go/internal/catalog"
	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/fallback"
	"github.com/doeshing/jarvis-go/internal/infrastructure/ai"
	"github.com/doeshing/jarvis-go/internal/infrastructure/config"
	"github.com/doeshing/jarvis-go/internal/infrastructure/executors"
	"github.com/doeshing/jarvis-go/internal/infrastructure/history"
	"github.com/doeshing/jarvis-go/internal/infrastructure/security"
	"github.com/doeshing/jarvis-go/internal/infrastructure/system"
	"github.com/doeshing/jarvis-go/internal/pkg/logger"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Logger         *logger.Logger

	Catalog    *catalog.Catalog
	Classifier *classify.Service
	Extractor  *extract.Service
	Dispatcher *dispatch.Service
	Pipeline   *pipeline.Service

	HistoryStore  *history.MemoryStore
	Archive       ports.HistoryArchive
	DoctorService *doctor.Service

	closeOnce sync.Once
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Build(ctx, cfg, cfgLoader, logger.New(logger.Options{
		Level:      cfg.Logging.Level,
		Verbose:    verbose,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	}))
}

// Build wires the graph from an already loaded configuration.
func Build(ctx context.Context, cfg domain.Config, cfgLoader *config.FileLoader, log *logger.Logger) (*Container, error) {
	if log == nil {
		log = logger.NewNop()
	}

	guardrail, err := security.NewGuardrail(cfg.Security.RulesFile)
	if err != nil {
		log.Warn("guardrail rules unusable, using defaults", map[string]interface{}{"path": cfg.Security.RulesFile, "error": err.Error()})
		guardrail, err = security.NewGuardrail("")
		if err != nil {
			return nil, err
		}
	}
	var guard ports.SecurityService
	if cfg.IsSecurityEnabled() {
		guard = guardrail
	}

	factory := ai.NewFactory(log)
	runner := system.NewLocalRunner(cfg.Execution.Shell)
	cat := catalog.Default

	classifier := &classify.Service{
		Oracle:      factory.ForRole(cfg, domain.RoleClassifier),
		Logger:      log,
		Temperature: cfg.GetOracleTemperature(domain.RoleClassifier),
		Timeout:     cfg.GetOracleTimeout(domain.RoleClassifier),
	}
	extractor := &extract.Service{
		Oracle:      factory.ForRole(cfg, domain.RoleExtractor),
		Catalog:     cat,
		Fallback:    fallback.New(cat),
		Logger:      log,
		Temperature: cfg.GetOracleTemperature(domain.RoleExtractor),
		Timeout:     cfg.GetOracleTimeout(domain.RoleExtractor),
	}

	store := history.NewMemoryStore()
	direct := executors.Registry(executors.Deps{
		Launcher:      executors.NewDesktopLauncher(),
		Runner:        runner,
		Responder:     factory.ForRole(cfg, domain.RoleResponder),
		Logger:        log,
		History:       store,
		DataDir:       cfg.Preferences.DataDir,
		AssistantName: cfg.GetAssistantName(),
		UserName:      cfg.Preferences.UserName,
	})
	controller := system.NewController(system.Options{
		Runner: runner,
		Guard:  guard,
		Logger: log,
	})

	dispatcher := &dispatch.Service{
		Direct:         direct,
		Extractor:      extractor,
		Actions:        controller,
		Catalog:        cat,
		Logger:         log,
		MinConfidence:  cfg.GetMinConfidence(),
		MaxConcurrency: cfg.GetMaxConcurrency(),
		Timeout:        cfg.GetExecutorTimeout(),
	}

	runPipeline := &pipeline.Service{
		Classifier: classifier,
		Dispatcher: dispatcher,
		Store:      store,
		Logger:     log,
	}

	archive, err := openArchive(ctx, cfg)
	if err != nil {
		log.Warn("history archive disabled", map[string]interface{}{"error": err.Error()})
		archive = nil
	}

	var provider ports.ConfigProvider = staticConfig(cfg)
	if cfgLoader != nil {
		provider = cfgLoader
	}

	return &Container{
		Config:         cfg,
		ConfigProvider: provider,
		ConfigLoader:   cfgLoader,
		Logger:         log,
		Catalog:        cat,
		Classifier:     classifier,
		Extractor:      extractor,
		Dispatcher:     dispatcher,
		Pipeline:       runPipeline,
		HistoryStore:   store,
		Archive:        archive,
		DoctorService: &doctor.Service{
			ConfigProvider:  provider,
			SecurityService: guardrail,
			Runner:          runner,
		},
	}, nil
}

// Close archives the session history when an archive is configured and
// releases the logger. It is safe to call more than once.
func (c *Container) Close(ctx context.Context) error {
	var err error
	c.closeOnce.Do(func() {
		if c.Archive != nil {
			if entries := c.HistoryStore.List(); len(entries) > 0 {
				if appendErr := c.Archive.Append(ctx, entries); appendErr != nil {
					err = fmt.Errorf("archive history: %w", appendErr)
				}
			}
			if closeErr := c.Archive.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}
		if c.Logger != nil {
			c.Logger.Close()
		}
	})
	return err
}

func openArchive(ctx context.Context, cfg domain.Config) (ports.HistoryArchive, error) {
	switch cfg.GetHistoryArchive() {
	case domain.HistoryArchiveJSONL:
		return history.NewFileArchive(cfg.History.Path), nil
	case domain.HistoryArchiveSQLite:
		return history.OpenSQLiteArchive(ctx, cfg.History.Path)
	default:
		return nil, nil
	}
}

type staticConfig domain.Config

func (s staticConfig) Load(context.Context) (domain.Config, error) {
	return domain.Config(s), nil
}
