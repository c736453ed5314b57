package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-mvc/framework/app"
	"github.com/km-arc/go-mvc/framework/classpath"
	"github.com/km-arc/go-mvc/framework/config"
	"github.com/km-arc/go-mvc/framework/container"
	"github.com/km-arc/go-mvc/framework/fault"
	"github.com/km-arc/go-mvc/framework/metrics"
	"github.com/km-arc/go-mvc/framework/stereotype"
)

const pkg = "github.com/km-arc/go-mvc/framework/app_test"

type Clock interface{ Now() string }

type fixedClock struct{ stereotype.Service }

func (*fixedClock) Now() string { return "noon" }

type PingController struct {
	stereotype.Controller
	stereotype.RequestMapping `mapping:"ping"`

	_ stereotype.RequestMapping `mapping:"pong" handler:"Pong"`

	clock Clock          `autowired:""`
	cfg   *config.Config `autowired:"config"`
}

func (c *PingController) Pong() string { return c.cfg.App.Name + " at " + c.clock.Now() }

type needy struct {
	stereotype.Controller
	missing Clock `autowired:"nowhere"`
}

type StatsController struct {
	stereotype.Controller

	_ stereotype.RequestMapping `mapping:"/metrics" handler:"Stats"`
}

func (*StatsController) Stats() string { return "mine" }

func classPath(extra ...any) *classpath.ClassPath {
	cp := classpath.New()
	cp.Register(fixedClock{}, classpath.Implements[Clock]())
	cp.Register(PingController{})
	for _, e := range extra {
		cp.Register(e)
	}
	return cp
}

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Name: "kernel", Env: "testing", Port: "0"},
		Mvc:     config.MvcConfig{ScanPackage: pkg, InjectMissPolicy: "warn", ParamBinding: "last"},
		Log:     config.LogConfig{Level: "info"},
		Metrics: config.MetricsConfig{Path: "/metrics"},
	}
}

func TestApplication_BootAndServe(t *testing.T) {
	application, err := app.New(testConfig(), nil, classPath())
	require.NoError(t, err)
	assert.False(t, application.Providers.Booted())

	h, err := application.Handler()
	require.NoError(t, err)
	assert.True(t, application.Providers.Booted())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping/pong", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "kernel at noon", rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "gomvc_routes 1")
}

func TestApplication_FrameworkBeans(t *testing.T) {
	application, err := app.New(testConfig(), nil, classPath())
	require.NoError(t, err)
	require.NoError(t, application.Boot())

	for _, name := range []string{"config", "logger", "metrics", "router", "dispatcher", "handlerMapping", "pingController", pkg + ".Clock"} {
		assert.True(t, application.Bound(name), name)
	}
	_, ok := container.TryResolve[*metrics.Collector](application.Container, "metrics")
	assert.True(t, ok)
	assert.Equal(t, 1, application.Mapping().Len())
	assert.Equal(t, "testing", application.Config().App.Env)
}

func TestApplication_UnknownScanPackage(t *testing.T) {
	cfg := testConfig()
	cfg.Mvc.ScanPackage = "example.com/none"

	_, err := app.New(cfg, nil, classPath())
	var cfgErr *fault.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr), "got %v", err)
}

func TestApplication_FailPolicyAbortsBoot(t *testing.T) {
	cfg := testConfig()
	cfg.Mvc.InjectMissPolicy = "fail"

	application, err := app.New(cfg, nil, classPath(needy{}))
	require.NoError(t, err)

	err = application.Boot()
	var miss *fault.InjectionResolutionFailure
	assert.True(t, errors.As(err, &miss), "got %v", err)
}

func TestApplication_RunStopsWithContext(t *testing.T) {
	application, err := app.New(testConfig(), nil, classPath())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestApplication_MetricsPathCollidesWithRoute(t *testing.T) {
	application, err := app.New(testConfig(), nil, classPath(StatsController{}))
	require.NoError(t, err)

	err = application.Boot()
	var cfgErr *fault.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "METRICS_PATH", cfgErr.Subject)
}

func TestApplication_RouteOwnsPathWhenMetricsMoved(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Path = "/stats"
	application, err := app.New(cfg, nil, classPath(StatsController{}))
	require.NoError(t, err)
	h, err := application.Handler()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "mine", rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Contains(t, rr.Body.String(), "gomvc_routes 2")
}

func TestApplication_BeansGaugeFollowsRegistration(t *testing.T) {
	application, err := app.New(testConfig(), nil, classPath())
	require.NoError(t, err)
	collector := container.Resolve[*metrics.Collector](application.Container, "metrics")

	assert.Equal(t, float64(application.Len()), testutil.ToFloat64(collector.Beans))

	application.Instance("extra", struct{}{})
	assert.Equal(t, float64(application.Len()), testutil.ToFloat64(collector.Beans))
}
