package mvc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/container"
	"github.com/km-arc/go-mvc/framework/fault"
	gohttp "github.com/km-arc/go-mvc/framework/http"
)

// Bodies written for requests that do not reach a successful handler.
const (
	NotFoundBody    = "404 Not Found!!"
	FaultBodyPrefix = "500 Exception,Details:"
)

// State is a step of request dispatch.
type State int

const (
	StateIdle State = iota
	StateMatching
	StateBinding
	StateInvoking
	StateResponding
	StateNotFound // terminal: no route
	StateError    // terminal: fault while binding or invoking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMatching:
		return "matching"
	case StateBinding:
		return "binding"
	case StateInvoking:
		return "invoking"
	case StateResponding:
		return "responding"
	case StateNotFound:
		return "not_found"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Observer is told how every request ended.
type Observer interface {
	ObserveDispatch(route string, final State, elapsed time.Duration)
}

// Dispatcher is the http.Handler that routes requests to controller
// methods. It only reads the container and the route table.
type Dispatcher struct {
	beans       *container.Container
	mapping     *HandlerMapping
	contextPath string
	log         *zap.Logger
	observer    Observer
}

// DispatcherOption configures NewDispatcher.
type DispatcherOption func(*Dispatcher)

// WithContextPath strips prefix from request paths before matching.
func WithContextPath(prefix string) DispatcherOption {
	return func(d *Dispatcher) { d.contextPath = prefix }
}

// WithLogger sets the dispatcher's logger.
func WithLogger(log *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = log }
}

// WithObserver reports the outcome of every request to o.
func WithObserver(o Observer) DispatcherOption {
	return func(d *Dispatcher) { d.observer = o }
}

// NewDispatcher creates a dispatcher over a booted container and its routes.
func NewDispatcher(beans *container.Container, mapping *HandlerMapping, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{beans: beans, mapping: mapping, log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ServeHTTP is the outermost request boundary. Faults raised by Dispatch,
// returned or panicked, are turned into a 500 response here so that one
// failing request never affects another.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
	route := RequestPath(r.URL.Path, d.contextPath)

	final, err := func() (final State, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				final, err = StateError, fault.Invocation(route, fault.Recovered(rec))
			}
		}()
		return d.Dispatch(ww, r)
	}()

	if err != nil {
		final = StateError
		d.renderFault(ww, r, err)
	}
	if final == StateNotFound {
		route = "unmatched"
	}
	if d.observer != nil {
		d.observer.ObserveDispatch(route, final, time.Since(start))
	}
}

// Dispatch runs the dispatch state machine for one request and returns the
// state it ended in: StateIdle after a handled request, StateNotFound, or
// StateError together with the fault. A missing route is answered here with
// a 404 and is not an error. Panics from the handler are not recovered.
func (d *Dispatcher) Dispatch(w http.ResponseWriter, r *http.Request) (State, error) {
	if _, ok := w.(middleware.WrapResponseWriter); !ok {
		w = middleware.NewWrapResponseWriter(w, r.ProtoMajor)
	}
	state := d.transition(r, StateIdle, StateMatching)

	path := RequestPath(r.URL.Path, d.contextPath)
	route, err := d.mapping.Handler(path)
	if err != nil {
		d.transition(r, state, StateNotFound)
		gohttp.NewResponse(w).Text(http.StatusNotFound, NotFoundBody)
		return StateNotFound, nil
	}

	state = d.transition(r, state, StateBinding)
	c := newCall(w, r)
	args := route.bind(c)

	state = d.transition(r, state, StateInvoking)
	bean, ok := d.beans.Lookup(route.Bean)
	if !ok {
		return StateError, fault.Invocation(path, errors.Errorf("no bean registered for [%s]", route.Bean))
	}
	receiver := reflect.ValueOf(bean)
	if receiver.Type() != route.Owner {
		return StateError, fault.Invocation(path, errors.Errorf("bean [%s] is %s, route expects %s",
			route.Bean, receiver.Type(), route.Owner))
	}
	out := route.Method.Func.Call(append([]reflect.Value{receiver}, args...))

	state = d.transition(r, state, StateResponding)
	if err := d.respond(c, route, out); err != nil {
		return StateError, fault.Invocation(path, err)
	}
	d.transition(r, state, StateIdle)
	return StateIdle, nil
}

func (d *Dispatcher) transition(r *http.Request, from, to State) State {
	if ce := d.log.Check(zap.DebugLevel, "dispatch"); ce != nil {
		ce.Write(zap.String("path", r.URL.Path), zap.Stringer("from", from), zap.Stringer("to", to))
	}
	return to
}

// respond writes the handler's result, unless the handler already wrote
// a response itself.
func (d *Dispatcher) respond(c *call, route *Route, out []reflect.Value) error {
	var result reflect.Value
	switch route.results {
	case resultError:
		if err, _ := out[0].Interface().(error); err != nil {
			return err
		}
		return nil
	case resultValue:
		result = out[0]
	case resultValueError:
		if err, _ := out[1].Interface().(error); err != nil {
			return err
		}
		result = out[0]
	default:
		return nil
	}

	if !result.IsValid() || written(c.w) {
		return nil
	}
	switch result.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if result.IsNil() {
			return nil
		}
	}
	switch v := result.Interface().(type) {
	case string:
		c.res.Text(http.StatusOK, v)
	case []byte:
		c.w.WriteHeader(http.StatusOK)
		_, err := c.w.Write(v)
		return err
	default:
		// Encode first: once the status line is out a failure can no longer
		// become a 500.
		body, err := json.Marshal(v)
		if err != nil {
			return errors.Wrapf(err, "encoding %s result", route.Handler())
		}
		c.w.Header().Set("Content-Type", "application/json")
		c.w.WriteHeader(http.StatusOK)
		_, err = c.w.Write(append(body, '\n'))
		return err
	}
	return nil
}

func written(w http.ResponseWriter) bool {
	if ww, ok := w.(middleware.WrapResponseWriter); ok {
		return ww.Status() != 0 || ww.BytesWritten() > 0
	}
	return false
}

// renderFault writes the 500 response: a fixed first line followed by one
// stack frame per line.
func (d *Dispatcher) renderFault(w http.ResponseWriter, r *http.Request, err error) {
	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.String("requestID", middleware.GetReqID(r.Context())),
		zap.Error(err),
	}
	if v := fault.RecoveredValue(err); v != nil {
		fields = append(fields, zap.Any("panic", v))
	}
	d.log.Error("handler fault", fields...)

	if !written(w) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
	}
	_, _ = w.Write([]byte(FaultBody(err)))
}

// FaultBody renders err as a 500 response body.
func FaultBody(err error) string {
	frames := fault.StackOf(err)
	lines := make([]string, 0, len(frames)+1)
	lines = append(lines, FaultBodyPrefix)
	for _, f := range frames {
		lines = append(lines, fmt.Sprintf("%n(%s:%d)", f, f, f))
	}
	return strings.Join(lines, "\r\n")
}
