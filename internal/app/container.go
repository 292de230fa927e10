package app

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/doeshing/gitscribe-go/assets"
	"github.com/doeshing/gitscribe-go/internal/application/doctor"
	"github.com/doeshing/gitscribe-go/internal/application/release"
	"github.com/doeshing/gitscribe-go/internal/domain"
	"github.com/doeshing/gitscribe-go/internal/infrastructure/ai"
	"github.com/doeshing/gitscribe-go/internal/infrastructure/config"
	"github.com/doeshing/gitscribe-go/internal/infrastructure/executor"
	"github.com/doeshing/gitscribe-go/internal/infrastructure/git"
	"github.com/doeshing/gitscribe-go/internal/infrastructure/history"
	"github.com/doeshing/gitscribe-go/internal/infrastructure/templates"
	"github.com/doeshing/gitscribe-go/internal/infrastructure/tracker"
	"github.com/doeshing/gitscribe-go/internal/pkg/logger"
	"github.com/doeshing/gitscribe-go/internal/ports"
)

// Options controls how the container is built.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigLoader   *config.FileLoader
	Logger         ports.Logger
	ReleaseService *release.Service
	DoctorService  *doctor.Service
	Extractor      ports.HistoryExtractor
	Models         ports.ModelLister
	Templates      *templates.Store
	HistoryStore   ports.HistoryRepository
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	log := logger.NewStderr(opts.Verbose)

	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug("config loaded", map[string]interface{}{"path": cfgLoader.Path()})

	templateStore := templates.NewStore(cfg.Templates.Dir)
	if err := templateStore.EnsureDefault(assets.DefaultTemplate); err != nil {
		log.Warn("could not seed default template", map[string]interface{}{"error": err.Error()})
	}

	ollama := ai.NewOllamaClientWithHTTP(&http.Client{Timeout: cfg.Inference.Timeout()}, log)

	gitExec := executor.NewLocalExecutor("git")
	extractor := git.NewExtractorWithRunner(gitExec)

	var historyStore ports.HistoryRepository = history.NewSQLiteStore(cfg.History.Path, log)

	releaseService := &release.Service{
		Extractor: extractor,
		Trackers:  tracker.NewFactory(log),
		Inference: ollama,
		Logger:    log,
	}

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Git:            gitExec,
		Extractor:      extractor,
		Models:         ollama,
		Templates:      templateStore,
		History:        historyStore,
	}

	return &Container{
		Config:         cfg,
		ConfigLoader:   cfgLoader,
		Logger:         log,
		ReleaseService: releaseService,
		DoctorService:  doctorService,
		Extractor:      extractor,
		Models:         ollama,
		Templates:      templateStore,
		HistoryStore:   historyStore,
	}, nil
}

// Tracker resolves the configured tracker credentials. A half-filled pair is
// logged and treated as no tracker.
func (c *Container) Tracker() *domain.TrackerConfig {
	cfg, err := c.Config.Tracker.Resolve()
	if errors.Is(err, domain.ErrIncompleteTracker) {
		c.Logger.Warn(err.Error(), map[string]interface{}{
			"base_url_set": c.Config.Tracker.BaseURL != "",
			"token_set":    c.Config.Tracker.Token != "",
		})
		return nil
	}
	return cfg
}

// Close releases adapters that hold open handles. It is safe on a Container
// that was never built and safe to call more than once.
func (c *Container) Close() error {
	if closer, ok := c.HistoryStore.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
