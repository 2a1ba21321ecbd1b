package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"catgallery-server-go/internal/domain/catapi"
	platformconfig "catgallery-server-go/internal/platform/config"
	platformerrors "catgallery-server-go/internal/platform/errors"
	"catgallery-server-go/internal/platform/logging"
	"catgallery-server-go/internal/platform/observability"
	httptransport "catgallery-server-go/internal/transport/http"
	"catgallery-server-go/internal/transport/http/catproxy"
	"catgallery-server-go/web"
)

// Options are the command-line inputs of the server.
type Options struct {
	ConfigPath string
	DotEnv     bool
}

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	options               Options
	config                *platformconfig.Config
	configPath            string
	logger                *logging.Logger
	observabilityShutdown observability.ShutdownFunc
	upstream              *catapi.Client
}

// Run loads configuration, initialises dependencies, serves HTTP and shuts
// down gracefully on SIGINT/SIGTERM or when ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	state := &appState{options: opts}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		return err
	}

	logger := state.logger
	defer logger.Close()

	logBootstrapGraph(steps, logger)

	if shutdown := state.observabilityShutdown; shutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.WarnTag("Bootstrap", "observability did not shut down cleanly: %v", err)
			}
		}()
	}

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return platformerrors.Wrap(platformerrors.KindTransport, "http:start-server", "failed to start HTTP server", err)
	}

	// A listener failure cancels groupCtx; stop waiting for a signal then.
	waitCtx, waitCancel := context.WithCancel(signalCtx)
	defer waitCancel()
	go func() {
		select {
		case <-groupCtx.Done():
			waitCancel()
		case <-waitCtx.Done():
		}
	}()

	return waitForShutdown(waitCtx, cancel, logger, group)
}

func logBootstrapGraph(steps []initStep, logger *logging.Logger) {
	if logger == nil {
		return
	}
	logger.InfoTag("Bootstrap", "initialisation graph")
	for _, step := range steps {
		if len(step.DependsOn) == 0 {
			logger.InfoTag("Bootstrap", "  %s: %s", step.ID, step.Title)
			continue
		}
		logger.InfoTag("Bootstrap", "  %s: %s (after %v)", step.ID, step.Title, step.DependsOn)
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load-runtime",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load-runtime"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "observability:setup-hooks",
			Title:     "Setup observability hooks",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindPlatform,
			Execute:   setupObservabilityStep,
		},
		{
			ID:        "upstream:init-client",
			Title:     "Initialise image API client",
			DependsOn: []string{"config:load-runtime", "logging:init-provider"},
			Kind:      platformerrors.KindUpstream,
			Execute:   initUpstreamStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().
		WithPath(state.options.ConfigPath).
		WithDotEnv(state.options.DotEnv).
		Load()
	if err != nil {
		return err
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state.config == nil {
		return platformerrors.New(platformerrors.KindBootstrap, "logging:init-provider", "config not loaded")
	}

	logger, err := logging.New(logging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init-provider", "failed to initialise logging provider", err)
	}

	state.logger = logger
	logging.SetDefault(logger)
	logger.InfoTag("Bootstrap", "logging ready [%s] config=%s", state.config.Log.Level, state.configPath)
	return nil
}

func setupObservabilityStep(ctx context.Context, state *appState) error {
	shutdown, err := observability.Setup(ctx, observability.Config{
		Enabled: state.config.Observability.Enabled,
	}, state.logger.Slog())
	if err != nil {
		return err
	}
	state.observabilityShutdown = shutdown
	return nil
}

func initUpstreamStep(_ context.Context, state *appState) error {
	up := state.config.Upstream
	state.upstream = catapi.NewClient(catapi.Options{
		BaseURL:    up.BaseURL,
		SearchPath: up.SearchPath,
		APIKey:     up.APIKey,
		UserAgent:  up.UserAgent,
		Timeout:    up.Timeout,
		Logger:     state.logger,
	})
	state.logger.InfoTag("Upstream", "image API %s%s (timeout=%s)", up.BaseURL, up.SearchPath, up.Timeout)
	return nil
}

// buildHandler assembles the gin engine with every route of the server.
func buildHandler(cfg *platformconfig.Config, logger *logging.Logger, upstream catproxy.Upstream) (http.Handler, error) {
	router, err := httptransport.Build(httptransport.Options{
		Config: cfg,
		Logger: logger,
		Assets: web.Assets(),
	})
	if err != nil {
		return nil, err
	}

	proxy, err := catproxy.NewService(upstream, cfg.Server.Greeting, logger)
	if err != nil {
		return nil, err
	}
	proxy.Register(router)
	httptransport.RegisterDocs(router, logger)

	return router.Engine, nil
}

func startHTTPServer(state *appState, g *errgroup.Group, groupCtx context.Context) (*http.Server, error) {
	cfg := state.config
	logger := state.logger

	handler, err := buildHandler(cfg, logger, state.upstream)
	if err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.IP, strconv.Itoa(cfg.Server.Port)),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "server listening on %s", httpServer.Addr)
		if cfg.Web.Enabled {
			logger.InfoTag("HTTP", "gallery page: http://localhost:%d%s/", cfg.Server.Port, cfg.Web.MountPath)
		}
		logger.InfoTag("HTTP", "API docs: http://localhost:%d/docs", cfg.Server.Port)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "shutdown failed: %v", err)
			} else {
				logger.InfoTag("HTTP", "server stopped")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "listen failed: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *logging.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.InfoTag("Bootstrap", "shutting down: %v", context.Cause(ctx))

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("Bootstrap", "shutdown finished with error: %v", err)
			return err
		}
		logger.InfoTag("Bootstrap", "all services stopped")
	case <-time.After(15 * time.Second):
		logger.ErrorTag("Bootstrap", "shutdown timed out")
		return errors.New("shutdown timed out")
	}
	return nil
}
