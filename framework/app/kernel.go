package app

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/classpath"
	"github.com/km-arc/go-mvc/framework/config"
	"github.com/km-arc/go-mvc/framework/container"
	"github.com/km-arc/go-mvc/framework/mvc"
	"github.com/km-arc/go-mvc/framework/providers"
	"github.com/km-arc/go-mvc/framework/routing"
)

// Application is the top-level application container. It embeds the bean
// container so that user code can call app.Instance(), app.Lookup()
// directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	cfg *config.Config
	log *zap.Logger
}

// New creates the application and registers the framework providers, which
// scans and instantiates the components of cfg.Mvc.ScanPackage. A nil cp
// means classpath.Default().
//
//	cfg, _ := config.Load()
//	application, err := app.New(cfg, logger, nil)
//	if err == nil { err = application.Run(ctx) }
func New(cfg *config.Config, log *zap.Logger, cp *classpath.ClassPath) (*Application, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := container.New(log)
	a := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		cfg:       cfg,
		log:       log,
	}

	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg, Logger: log},
		&providers.MetricsServiceProvider{},
		&providers.ComponentScanProvider{ClassPath: cp},
		&providers.RoutingServiceProvider{},
	} {
		if err := a.Register(p); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot phase of every provider: injection, route mapping and
// router assembly.
func (a *Application) Boot() error {
	if err := a.Providers.Boot(); err != nil {
		return err
	}
	a.log.Info("application booted",
		zap.Int("beans", a.Len()),
		zap.Int("routes", a.Mapping().Len()))
	return nil
}

// Config returns the application configuration.
func (a *Application) Config() *config.Config { return a.cfg }

// Logger returns the application logger.
func (a *Application) Logger() *zap.Logger { return a.log }

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.Resolve[*routing.Router](a.Container, providers.RouterBean)
}

// Mapping resolves the handler mapping. Only valid after Boot.
func (a *Application) Mapping() *mvc.HandlerMapping {
	return container.Resolve[*mvc.HandlerMapping](a.Container, providers.MappingBean)
}

// Handler boots the application if needed and returns its root handler.
func (a *Application) Handler() (http.Handler, error) {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			return nil, err
		}
	}
	return a.Router(), nil
}

// Run boots the application if needed and serves HTTP on APP_PORT until ctx
// is cancelled, then shuts the server down gracefully.
func (a *Application) Run(ctx context.Context) error {
	handler, err := a.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", a.cfg.App.Env),
			zap.String("contextPath", a.cfg.App.ContextPath))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
