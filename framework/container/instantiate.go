package container

import (
	"reflect"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/classpath"
	"github.com/km-arc/go-mvc/framework/fault"
)

// BeanName returns the registry name of a controller: its simple type name
// with the first letter lower-cased.
func BeanName(simpleName string) string {
	r, size := utf8.DecodeRuneInString(simpleName)
	if r == utf8.RuneError {
		return simpleName
	}
	return string(unicode.ToLower(r)) + simpleName[size:]
}

// Instantiate creates and registers a bean for every descriptor marked as a
// controller or a service. Other descriptors are ignored.
//
//   - controller: registered under BeanName(simple name)
//   - service with an explicit name: registered under that name
//   - service without one: the same instance is registered under the
//     qualified name of every interface the type declares
//
// A component that cannot be constructed is logged and skipped; its error is
// part of the returned slice. The int is the number of instances created.
func (c *Container) Instantiate(cp *classpath.ClassPath, descriptors []classpath.Descriptor) (int, []error) {
	var (
		created int
		failed  []error
	)
	for _, d := range descriptors {
		if !d.Markers.Controller && !d.Markers.Service {
			continue
		}
		class, instance, err := construct(cp, d.Name)
		if err != nil {
			c.log.Error("component skipped", zap.String("class", d.Name), zap.Error(err))
			failed = append(failed, err)
			continue
		}
		created++

		switch {
		case d.Markers.Controller:
			c.Instance(BeanName(class.SimpleName), instance)
		case d.Markers.ServiceName != "":
			c.Instance(d.Markers.ServiceName, instance)
		default:
			if len(class.Interfaces) == 0 {
				c.log.Warn("service declares no interface and no name, not registered",
					zap.String("class", class.Name))
			}
			for _, iface := range class.Interfaces {
				c.Instance(classpath.QualifiedName(iface), instance)
			}
		}
	}
	return created, failed
}

func construct(cp *classpath.ClassPath, name string) (*classpath.Class, any, error) {
	class, err := cp.ForName(name)
	if err != nil {
		return nil, nil, &fault.ComponentConstructionError{Class: name, Err: err}
	}
	if class.Type.Kind() != reflect.Struct {
		return nil, nil, &fault.ComponentConstructionError{
			Class: name,
			Err:   errors.Errorf("kind %s has no zero-value constructor", class.Type.Kind()),
		}
	}
	return class, reflect.New(class.Type).Interface(), nil
}
