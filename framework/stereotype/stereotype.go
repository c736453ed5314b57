package stereotype

import (
	"reflect"
	"strings"

	"github.com/muir/reflectutils"

	"github.com/km-arc/go-mvc/framework/fault"
)

// Struct tag keys read from marker fields and injection targets.
const (
	TagMapping   = "mapping"   // path segment on a RequestMapping marker
	TagHandler   = "handler"   // method name bound by a method-level RequestMapping
	TagParams    = "params"    // request parameter names for string arguments
	TagService   = "service"   // explicit bean name on a Service marker
	TagAutowired = "autowired" // injection target, optional explicit bean name
)

// Controller marks a struct as a controller. Embed it:
//
//	type DemoController struct {
//	    stereotype.Controller
//	    stereotype.RequestMapping `mapping:"/demo"`
//
//	    _ stereotype.RequestMapping `mapping:"/query" handler:"Query" params:"name"`
//
//	    demoService *service.DemoServiceImpl `autowired:""`
//	}
type Controller struct{}

// Service marks a struct as a service. An explicit bean name goes in the
// service tag:
//
//	type Mailer struct {
//	    stereotype.Service `service:"mailer"`
//	}
type Service struct{}

// RequestMapping declares a route path. Embedded, it is the controller's base
// path. As a named (usually blank) field with a handler tag, it binds one
// method to a sub-path.
type RequestMapping struct{}

var (
	controllerType = reflect.TypeOf(Controller{})
	serviceType    = reflect.TypeOf(Service{})
	mappingType    = reflect.TypeOf(RequestMapping{})
)

// Markers is the set of capability markers declared on a type.
type Markers struct {
	Controller  bool
	Service     bool
	ServiceName string // explicit bean name, "" when absent
	Injectable  bool   // at least one autowired field
	BaseRoute   bool
	BasePath    string
}

// Mapping is one method-level RequestMapping.
type Mapping struct {
	Path    string
	Handler string
	Params  []string
}

// InjectionPoint is a field tagged for injection. Field.Index is the path
// from the outermost struct, usable with reflect.Value.FieldByIndex.
type InjectionPoint struct {
	Field reflect.StructField
	Name  string // explicit bean name, "" when absent
}

// Metadata is everything the container needs to know about a component
// type, resolved once at bootstrap.
type Metadata struct {
	Markers    Markers
	Mappings   []Mapping
	Injections []InjectionPoint
}

// Inspect reads the markers, mappings and injection points of t, which must
// be a struct or a pointer to one. Markers are only honoured on the outer
// struct; autowired fields are also collected from embedded structs.
func Inspect(t reflect.Type) (Metadata, error) {
	var md Metadata
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return md, fault.Configuration(t.String(), "components must be structs, got %s", t.Kind())
	}

	var walkErr error
	reflectutils.WalkStructElements(t, func(field reflect.StructField) bool {
		topLevel := len(field.Index) == 1
		switch {
		case topLevel && field.Anonymous && field.Type == controllerType:
			md.Markers.Controller = true
			return false
		case topLevel && field.Anonymous && field.Type == serviceType:
			md.Markers.Service = true
			md.Markers.ServiceName = strings.TrimSpace(field.Tag.Get(TagService))
			return false
		case topLevel && field.Type == mappingType:
			if field.Anonymous {
				md.Markers.BaseRoute = true
				md.Markers.BasePath = field.Tag.Get(TagMapping)
				return false
			}
			m, err := parseMapping(t, field)
			if err != nil {
				walkErr = err
				return false
			}
			md.Mappings = append(md.Mappings, m)
			return false
		}
		if field.Anonymous && field.Type.Kind() == reflect.Pointer && hasAutowired(field.Type.Elem()) {
			walkErr = fault.Configuration(reflectutils.TypeName(t),
				"embedded %s has autowired fields; embed the struct by value", field.Type)
			return false
		}
		if name, ok := field.Tag.Lookup(TagAutowired); ok {
			md.Markers.Injectable = true
			md.Injections = append(md.Injections, InjectionPoint{
				Field: field,
				Name:  strings.TrimSpace(name),
			})
			return false
		}
		return field.Anonymous
	})
	return md, walkErr
}

// hasAutowired reports whether t, or a struct it embeds, declares an
// autowired field.
func hasAutowired(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if _, ok := f.Tag.Lookup(TagAutowired); ok {
			return true
		}
		if f.Anonymous && f.Type != t && hasAutowired(f.Type) {
			return true
		}
	}
	return false
}

func parseMapping(owner reflect.Type, field reflect.StructField) (Mapping, error) {
	handler := strings.TrimSpace(field.Tag.Get(TagHandler))
	if handler == "" {
		return Mapping{}, fault.Configuration(reflectutils.TypeName(owner),
			"request mapping %q does not name a handler method", field.Tag.Get(TagMapping))
	}
	m := Mapping{Path: field.Tag.Get(TagMapping), Handler: handler}
	if raw := field.Tag.Get(TagParams); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			m.Params = append(m.Params, strings.TrimSpace(p))
		}
	}
	return m, nil
}
