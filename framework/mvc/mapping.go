package mvc

import (
	"context"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/muir/reflectutils"
	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/classpath"
	"github.com/km-arc/go-mvc/framework/container"
	"github.com/km-arc/go-mvc/framework/fault"
	gohttp "github.com/km-arc/go-mvc/framework/http"
	"github.com/km-arc/go-mvc/framework/stereotype"
)

// ParamKind classifies a handler parameter by its declared type.
type ParamKind int

const (
	ParamUnsupported     ParamKind = iota // receives its zero value
	ParamRequest                          // *http.Request
	ParamResponse                         // http.ResponseWriter
	ParamRequestWrapper                   // *gohttp.Request
	ParamResponseWrapper                  // *gohttp.Response
	ParamContext                          // context.Context of the request
	ParamString                           // a request parameter value
)

func (k ParamKind) String() string {
	switch k {
	case ParamRequest:
		return "request"
	case ParamResponse:
		return "response"
	case ParamRequestWrapper:
		return "request-wrapper"
	case ParamResponseWrapper:
		return "response-wrapper"
	case ParamContext:
		return "context"
	case ParamString:
		return "string"
	}
	return "unsupported"
}

var (
	requestType         = reflect.TypeOf((*http.Request)(nil))
	responseWriterType  = reflect.TypeOf((*http.ResponseWriter)(nil)).Elem()
	requestWrapperType  = reflect.TypeOf((*gohttp.Request)(nil))
	responseWrapperType = reflect.TypeOf((*gohttp.Response)(nil))
	contextType         = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType           = reflect.TypeOf((*error)(nil)).Elem()
)

// ClassifyParam returns the kind of a handler parameter type.
func ClassifyParam(t reflect.Type) ParamKind {
	switch {
	case t == requestType:
		return ParamRequest
	case t == responseWriterType:
		return ParamResponse
	case t == requestWrapperType:
		return ParamRequestWrapper
	case t == responseWrapperType:
		return ParamResponseWrapper
	case t == contextType:
		return ParamContext
	case t.Kind() == reflect.String:
		return ParamString
	}
	return ParamUnsupported
}

// ParamBinding selects how string parameters are filled.
type ParamBinding string

const (
	// BindLast gives every string parameter the value of the request
	// parameter that sorts last by name. The params tag is not consulted.
	BindLast ParamBinding = "last"
	// BindNamed fills string parameters, in order, from the request
	// parameters listed in the params tag.
	BindNamed ParamBinding = "named"
)

// ParseParamBinding parses "last" or "named" (case-insensitive).
func ParseParamBinding(s string) (ParamBinding, error) {
	switch b := ParamBinding(strings.ToLower(strings.TrimSpace(s))); b {
	case BindLast, BindNamed:
		return b, nil
	}
	return "", fault.Configuration("PARAM_BINDING", "unknown binding %q", s)
}

type resultShape int

const (
	resultNone resultShape = iota
	resultError
	resultValue
	resultValueError
)

// Route binds one normalized path to a controller method.
type Route struct {
	Path    string
	Bean    string         // owner bean name
	Owner   reflect.Type   // pointer to the controller struct
	Method  reflect.Method // method of Owner
	Params  []ParamKind
	Names   []string // request parameter names from the params tag
	binders []binder
	results resultShape
}

// Handler returns "Owner.Method" for logs and listings.
func (rt *Route) Handler() string {
	return reflectutils.TypeName(rt.Owner) + "." + rt.Method.Name
}

// HandlerMapping is the route table. It is built once and never changed.
type HandlerMapping struct {
	routes map[string]*Route
}

// MappingOption configures BuildHandlerMapping.
type MappingOption func(*mappingOptions)

type mappingOptions struct {
	binding ParamBinding
	log     *zap.Logger
}

// WithParamBinding selects the string parameter strategy. Default BindLast.
func WithParamBinding(b ParamBinding) MappingOption {
	return func(o *mappingOptions) { o.binding = b }
}

// WithMappingLogger sets the logger used while building. Default: none.
func WithMappingLogger(log *zap.Logger) MappingOption {
	return func(o *mappingOptions) { o.log = log }
}

// BuildHandlerMapping creates a route for every method-level RequestMapping
// of every registered controller bean. The route path is the controller's
// base path joined with the method path. A later route with the same path
// replaces an earlier one.
func BuildHandlerMapping(beans *container.Container, cp *classpath.ClassPath, opts ...MappingOption) (*HandlerMapping, error) {
	o := mappingOptions{binding: BindLast, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	m := &HandlerMapping{routes: make(map[string]*Route)}
	for _, name := range beans.Bindings() {
		bean, _ := beans.Lookup(name)
		if bean == nil {
			continue
		}
		class, ok := cp.Lookup(reflect.TypeOf(bean))
		if !ok || !class.Metadata.Markers.Controller {
			continue
		}
		base := class.Metadata.Markers.BasePath
		for _, mapping := range class.Metadata.Mappings {
			rt, err := newRoute(class, JoinPath(base, mapping.Path), mapping, o)
			if err != nil {
				return nil, err
			}
			if prev, exists := m.routes[rt.Path]; exists {
				o.log.Debug("route replaced", zap.String("url", rt.Path),
					zap.String("previous", prev.Handler()), zap.String("current", rt.Handler()))
			}
			m.routes[rt.Path] = rt
			o.log.Info("mapped", zap.String("url", rt.Path), zap.String("handler", rt.Handler()))
		}
	}
	return m, nil
}

func newRoute(class *classpath.Class, path string, mapping stereotype.Mapping, o mappingOptions) (*Route, error) {
	owner := reflect.PointerTo(class.Type)
	method, ok := owner.MethodByName(mapping.Handler)
	if !ok {
		return nil, fault.Configuration(class.Name, "request mapping %q names no exported method %q",
			mapping.Path, mapping.Handler)
	}
	mt := method.Type
	if mt.IsVariadic() {
		return nil, fault.Configuration(class.Name+"."+method.Name, "variadic handlers are not supported")
	}

	rt := &Route{
		Path:   path,
		Bean:   container.BeanName(class.SimpleName),
		Owner:  owner,
		Method: method,
		Names:  mapping.Params,
	}

	switch {
	case mt.NumOut() == 0:
		rt.results = resultNone
	case mt.NumOut() == 1 && mt.Out(0) == errorType:
		rt.results = resultError
	case mt.NumOut() == 1:
		rt.results = resultValue
	case mt.NumOut() == 2 && mt.Out(1) == errorType:
		rt.results = resultValueError
	default:
		return nil, fault.Configuration(class.Name+"."+method.Name,
			"handlers return nothing, error, a value, or (value, error)")
	}

	nstr := 0
	for i := 1; i < mt.NumIn(); i++ {
		kind := ClassifyParam(mt.In(i))
		rt.Params = append(rt.Params, kind)
		switch kind {
		case ParamUnsupported:
			o.log.Warn("handler parameter type is not bindable, it will receive its zero value",
				zap.String("handler", rt.Handler()), zap.String("type", reflectutils.TypeName(mt.In(i))))
		case ParamString:
			nstr++
		}
		rt.binders = append(rt.binders, newBinder(kind, mt.In(i), nstr-1, rt.Names, o.binding))
	}

	if nstr > 1 && o.binding == BindLast {
		o.log.Warn("handler has several string parameters, all receive the same request value",
			zap.String("handler", rt.Handler()))
	}
	if o.binding == BindNamed && nstr > len(rt.Names) {
		o.log.Warn("handler has more string parameters than params names",
			zap.String("handler", rt.Handler()), zap.Strings("params", rt.Names))
	}
	return rt, nil
}

// Handler returns the route registered for an already normalized path.
func (m *HandlerMapping) Handler(path string) (*Route, error) {
	rt, ok := m.routes[path]
	if !ok {
		return nil, fault.ErrRouteNotFound
	}
	return rt, nil
}

// Len returns the number of routes.
func (m *HandlerMapping) Len() int { return len(m.routes) }

// Routes returns all routes sorted by path.
func (m *HandlerMapping) Routes() []*Route {
	out := make([]*Route, 0, len(m.routes))
	for _, rt := range m.routes {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
