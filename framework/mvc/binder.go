package mvc

import (
	"net/http"
	"reflect"

	gohttp "github.com/km-arc/go-mvc/framework/http"
)

// call is the per-request state binders read from.
type call struct {
	w   http.ResponseWriter
	r   *http.Request
	req *gohttp.Request
	res *gohttp.Response
}

func newCall(w http.ResponseWriter, r *http.Request) *call {
	return &call{w: w, r: r, req: gohttp.NewRequest(r), res: gohttp.NewResponse(w)}
}

// binder produces the argument for one handler parameter.
type binder func(c *call) reflect.Value

// newBinder is decided once per parameter when the route is built, so that
// requests never inspect parameter types. index is the position of the
// parameter among the handler's string parameters.
func newBinder(kind ParamKind, t reflect.Type, index int, names []string, strategy ParamBinding) binder {
	switch kind {
	case ParamRequest:
		return func(c *call) reflect.Value { return reflect.ValueOf(c.r) }
	case ParamResponse:
		return func(c *call) reflect.Value { return reflect.ValueOf(&c.w).Elem() }
	case ParamRequestWrapper:
		return func(c *call) reflect.Value { return reflect.ValueOf(c.req) }
	case ParamResponseWrapper:
		return func(c *call) reflect.Value { return reflect.ValueOf(c.res) }
	case ParamContext:
		return func(c *call) reflect.Value { return reflect.ValueOf(c.r.Context()) }
	case ParamString:
		if strategy == BindNamed {
			name := ""
			if index < len(names) {
				name = names[index]
			}
			return func(c *call) reflect.Value {
				return reflect.ValueOf(c.req.Param(name)).Convert(t)
			}
		}
		return func(c *call) reflect.Value {
			return reflect.ValueOf(c.req.LastParam()).Convert(t)
		}
	}
	zero := reflect.Zero(t)
	return func(*call) reflect.Value { return zero }
}

func (rt *Route) bind(c *call) []reflect.Value {
	args := make([]reflect.Value, len(rt.binders))
	for i, b := range rt.binders {
		args[i] = b(c)
	}
	return args
}
