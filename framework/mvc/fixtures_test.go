package mvc_test

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-mvc/framework/classpath"
	"github.com/km-arc/go-mvc/framework/container"
	gohttp "github.com/km-arc/go-mvc/framework/http"
	"github.com/km-arc/go-mvc/framework/mvc"
	"github.com/km-arc/go-mvc/framework/stereotype"
)

// ── fixtures ─────────────────────────────────────────────────────────────────

type GreetController struct {
	stereotype.Controller
	stereotype.RequestMapping `mapping:"/demo"`

	_ stereotype.RequestMapping `mapping:"/query" handler:"Query" params:"name"`
	_ stereotype.RequestMapping `mapping:"/pair" handler:"Pair" params:"first,second"`
	_ stereotype.RequestMapping `mapping:"/boom" handler:"Boom"`
	_ stereotype.RequestMapping `mapping:"/fail" handler:"Fail"`
	_ stereotype.RequestMapping `mapping:"/json/" handler:"JSON"`
	_ stereotype.RequestMapping `mapping:"/wrapped" handler:"Wrapped" params:"who"`
	_ stereotype.RequestMapping `mapping:"/odd" handler:"Odd"`
	_ stereotype.RequestMapping `mapping:"/nan" handler:"NaN"`
	_ stereotype.RequestMapping `mapping:"/echo" handler:"Echo" params:"msg"`
}

func (c *GreetController) Query(w http.ResponseWriter, r *http.Request, name string) {
	_, _ = w.Write([]byte("name=" + name))
}

func (c *GreetController) Pair(first, second string) string {
	return first + "|" + second
}

func (c *GreetController) Boom(w http.ResponseWriter) {
	panic("boom")
}

func (c *GreetController) Fail() error {
	return errors.New("failed on purpose")
}

func (c *GreetController) JSON(ctx context.Context) (map[string]string, error) {
	if ctx == nil {
		return nil, errors.New("no context")
	}
	return map[string]string{"status": "ok"}, nil
}

func (c *GreetController) Wrapped(req *gohttp.Request, res *gohttp.Response, who string) {
	res.Success(req.Method() + " " + who)
}

func (c *GreetController) Odd(n int, who string) string {
	return "n=" + strconv.Itoa(n) + " who=" + who
}

func (c *GreetController) NaN() map[string]float64 {
	return map[string]float64{"x": math.NaN()}
}

// Echo writes the response itself and still returns a value, which is
// dropped.
func (c *GreetController) Echo(w http.ResponseWriter, msg string) string {
	_, _ = w.Write([]byte("echo=" + msg))
	return "ignored"
}

// AdminController collides with GreetController on /demo/query.
type AdminController struct {
	stereotype.Controller
	stereotype.RequestMapping `mapping:"demo"`

	_ stereotype.RequestMapping `mapping:"query/" handler:"Query"`
}

func (c *AdminController) Query() string { return "admin" }

type BrokenController struct {
	stereotype.Controller

	_ stereotype.RequestMapping `mapping:"/x" handler:"Missing"`
}

// ── helpers ──────────────────────────────────────────────────────────────────

func newClassPath() *classpath.ClassPath {
	cp := classpath.New()
	cp.Register(GreetController{})
	cp.Register(AdminController{})
	cp.Register(BrokenController{})
	return cp
}

func newGreetMapping(t *testing.T, opts ...mvc.MappingOption) (*container.Container, *mvc.HandlerMapping) {
	t.Helper()
	beans := container.New(nil)
	beans.Instance("greetController", &GreetController{})
	m, err := mvc.BuildHandlerMapping(beans, newClassPath(), opts...)
	require.NoError(t, err)
	return beans, m
}

type dispatchRecord struct {
	route string
	state mvc.State
}

type recordingObserver struct {
	mu      sync.Mutex
	records []dispatchRecord
}

func (o *recordingObserver) ObserveDispatch(route string, final mvc.State, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, dispatchRecord{route: route, state: final})
}

func (o *recordingObserver) last() dispatchRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.records[len(o.records)-1]
}
