package providers

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/classpath"
	"github.com/km-arc/go-mvc/framework/config"
	"github.com/km-arc/go-mvc/framework/container"
	"github.com/km-arc/go-mvc/framework/fault"
	"github.com/km-arc/go-mvc/framework/metrics"
	"github.com/km-arc/go-mvc/framework/mvc"
	"github.com/km-arc/go-mvc/framework/routing"
)

// Names of the framework beans. Components may inject them explicitly:
//
//	cfg *config.Config `autowired:"config"`
const (
	ConfigBean     = "config"
	LoggerBean     = "logger"
	MetricsBean    = "metrics"
	MappingBean    = "handlerMapping"
	DispatcherBean = "dispatcher"
	RouterBean     = "router"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the loaded configuration and the logger.
//
// Bound beans:
//   - "config" → *config.Config
//   - "logger" → *zap.Logger
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
	Logger *zap.Logger
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	if p.Config == nil {
		return errors.New("config provider: no configuration")
	}
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	app.Instance(ConfigBean, p.Config)
	app.Instance(LoggerBean, log)
	return nil
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider binds the Prometheus collector. Its beans gauge
// follows every later registration.
//
// Bound beans:
//   - "metrics" → *metrics.Collector
type MetricsServiceProvider struct {
	container.BaseProvider
	Namespace string // default "gomvc"
}

func (p *MetricsServiceProvider) Register(app *container.Container) error {
	ns := p.Namespace
	if ns == "" {
		ns = "gomvc"
	}
	collector := metrics.NewCollector(ns)
	app.Instance(MetricsBean, collector)
	app.AfterRegistering(func(string, any) {
		collector.Beans.Set(float64(app.Len()))
	})
	collector.Beans.Set(float64(app.Len()))
	return nil
}

// ── ComponentScanProvider ─────────────────────────────────────────────────────

// ComponentScanProvider runs the component bootstrap. Register scans
// SCAN_PACKAGE and instantiates what it finds; Boot wires the autowired
// fields and builds the handler mapping, once every other provider has put
// its beans in the container.
//
// Bound beans:
//   - one per component (see container.Instantiate)
//   - "handlerMapping" → *mvc.HandlerMapping
type ComponentScanProvider struct {
	ClassPath *classpath.ClassPath // default classpath.Default()
}

func (p *ComponentScanProvider) classPath() *classpath.ClassPath {
	if p.ClassPath == nil {
		return classpath.Default()
	}
	return p.ClassPath
}

func (p *ComponentScanProvider) Register(app *container.Container) error {
	cfg := container.Resolve[*config.Config](app, ConfigBean)
	log := container.Resolve[*zap.Logger](app, LoggerBean)

	descriptors, err := classpath.Scan(p.classPath(), cfg.Mvc.ScanPackage)
	if err != nil {
		return err
	}
	created, failed := app.Instantiate(p.classPath(), descriptors)
	log.Info("components instantiated",
		zap.String("package", cfg.Mvc.ScanPackage),
		zap.Int("discovered", len(descriptors)),
		zap.Int("created", created),
		zap.Int("skipped", len(failed)))
	return nil
}

func (p *ComponentScanProvider) Boot(app *container.Container) error {
	cfg := container.Resolve[*config.Config](app, ConfigBean)
	log := container.Resolve[*zap.Logger](app, LoggerBean)

	policy, err := container.ParseMissPolicy(cfg.Mvc.InjectMissPolicy)
	if err != nil {
		return err
	}
	binding, err := mvc.ParseParamBinding(cfg.Mvc.ParamBinding)
	if err != nil {
		return err
	}

	if err := app.Autowire(p.classPath(), policy); err != nil {
		return err
	}
	mapping, err := mvc.BuildHandlerMapping(app, p.classPath(),
		mvc.WithParamBinding(binding),
		mvc.WithMappingLogger(log))
	if err != nil {
		return err
	}
	app.Instance(MappingBean, mapping)
	return nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router and, at boot, mounts the
// metrics endpoint and the dispatcher on it. It must be registered after
// ComponentScanProvider.
//
// Bound beans:
//   - "router"     → *routing.Router
//   - "dispatcher" → *mvc.Dispatcher
type RoutingServiceProvider struct{}

func (p *RoutingServiceProvider) Register(app *container.Container) error {
	log := container.Resolve[*zap.Logger](app, LoggerBean)
	app.Instance(RouterBean, routing.New(log))
	return nil
}

func (p *RoutingServiceProvider) Boot(app *container.Container) error {
	cfg := container.Resolve[*config.Config](app, ConfigBean)
	log := container.Resolve[*zap.Logger](app, LoggerBean)
	router := container.Resolve[*routing.Router](app, RouterBean)

	mapping, ok := container.TryResolve[*mvc.HandlerMapping](app, MappingBean)
	if !ok {
		return errors.New("routing provider: no handler mapping, is ComponentScanProvider registered?")
	}

	opts := []mvc.DispatcherOption{
		mvc.WithContextPath(cfg.App.ContextPath),
		mvc.WithLogger(log),
	}
	if collector, ok := container.TryResolve[*metrics.Collector](app, MetricsBean); ok {
		opts = append(opts, mvc.WithObserver(collector))
		if cfg.Metrics.Path != "" {
			// A router route shadows the dispatcher, so the path must not
			// also be in the handler mapping.
			if rt, err := mapping.Handler(mvc.RequestPath(cfg.Metrics.Path, cfg.App.ContextPath)); err == nil {
				return fault.Configuration("METRICS_PATH",
					"%s is also mapped to %s; change METRICS_PATH or the route", cfg.Metrics.Path, rt.Handler())
			}
			router.Get(cfg.Metrics.Path, collector.Handler())
		}
	}

	dispatcher := mvc.NewDispatcher(app, mapping, opts...)
	router.Fallback(dispatcher)
	app.Instance(DispatcherBean, dispatcher)

	if collector, ok := container.TryResolve[*metrics.Collector](app, MetricsBean); ok {
		collector.Bootstrapped(app.Len(), mapping.Len())
	}
	return nil
}
