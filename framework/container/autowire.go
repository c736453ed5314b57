package container

import (
	"reflect"
	"strings"
	"unsafe"

	"github.com/muir/reflectutils"
	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/classpath"
	"github.com/km-arc/go-mvc/framework/fault"
	"github.com/km-arc/go-mvc/framework/stereotype"
)

// MissPolicy decides what Autowire does when the source bean of an
// autowired field is not registered. In every case the field ends up
// holding its zero value.
type MissPolicy string

const (
	MissIgnore MissPolicy = "ignore" // leave the field zero, say nothing
	MissWarn   MissPolicy = "warn"   // leave the field zero, log a warning
	MissFail   MissPolicy = "fail"   // abort with an InjectionResolutionFailure
)

// ParseMissPolicy parses "ignore", "warn" or "fail" (case-insensitive).
func ParseMissPolicy(s string) (MissPolicy, error) {
	switch p := MissPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case MissIgnore, MissWarn, MissFail:
		return p, nil
	}
	return "", fault.Configuration("INJECT_MISS_POLICY", "unknown policy %q", s)
}

// Autowire sets every autowired field of every registered bean.
//
// The source bean name is the tag value when present. Otherwise an
// interface-typed field uses the interface's qualified name, and a field of
// concrete type uses the qualified name of the first interface its type
// declares on the ClassPath. A concrete type declaring no interface cannot
// be resolved that way and is a configuration error.
//
// Fields are assigned whether or not they are exported.
func (c *Container) Autowire(cp *classpath.ClassPath, policy MissPolicy) error {
	for _, name := range c.Bindings() {
		bean, _ := c.Lookup(name)
		if err := c.autowireBean(cp, policy, name, bean); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) autowireBean(cp *classpath.ClassPath, policy MissPolicy, name string, bean any) error {
	rv := reflect.ValueOf(bean)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil
	}

	var points []stereotype.InjectionPoint
	if class, ok := cp.Lookup(rv.Type()); ok {
		points = class.Metadata.Injections
	} else {
		md, err := stereotype.Inspect(rv.Type())
		if err != nil {
			return nil
		}
		points = md.Injections
	}

	for _, ip := range points {
		source := ip.Name
		if source == "" {
			var err error
			if source, err = fallbackName(cp, ip.Field.Type); err != nil {
				return &fault.ConfigurationError{
					Subject: reflectutils.TypeName(rv.Type()) + "." + ip.Field.Name,
					Reason:  "cannot derive bean name for autowired field",
					Err:     err,
				}
			}
		}

		field := settable(rv.Elem().FieldByIndex(ip.Field.Index))
		dep, ok := c.Lookup(source)
		if !ok {
			field.Set(reflect.Zero(field.Type()))
			miss := &fault.InjectionResolutionFailure{Bean: name, Field: ip.Field.Name, Name: source}
			switch policy {
			case MissFail:
				return miss
			case MissWarn:
				c.log.Warn("autowired bean not found", zap.String("bean", name),
					zap.String("field", ip.Field.Name), zap.String("source", source))
			}
			continue
		}

		depValue := reflect.ValueOf(dep)
		if !depValue.Type().AssignableTo(field.Type()) {
			return fault.Configuration(reflectutils.TypeName(rv.Type())+"."+ip.Field.Name,
				"bean [%s] of type %s is not assignable to %s",
				source, reflectutils.TypeName(depValue.Type()), reflectutils.TypeName(field.Type()))
		}
		field.Set(depValue)
		c.log.Debug("autowired", zap.String("bean", name),
			zap.String("field", ip.Field.Name), zap.String("source", source))
	}
	return nil
}

func fallbackName(cp *classpath.ClassPath, t reflect.Type) (string, error) {
	if t.Kind() == reflect.Interface {
		if t.Name() == "" {
			return "", fault.Configuration(t.String(), "unnamed interface types need an explicit bean name")
		}
		return classpath.QualifiedName(t), nil
	}
	class, ok := cp.Lookup(t)
	if !ok || len(class.Interfaces) == 0 {
		return "", fault.Configuration(t.String(), "type declares no interface, name the bean explicitly")
	}
	return classpath.QualifiedName(class.Interfaces[0]), nil
}

// settable returns a settable view of v, going through its address for
// unexported fields.
func settable(v reflect.Value) reflect.Value {
	if v.CanSet() {
		return v
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}
