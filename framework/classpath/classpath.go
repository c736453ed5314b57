package classpath

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/km-arc/go-mvc/framework/stereotype"
)

// Class is a component type known to a ClassPath.
type Class struct {
	Name       string       // package-qualified name, e.g. "github.com/acme/app/demo.DemoController"
	Package    string       // import path
	SimpleName string       // type name without package
	Type       reflect.Type // struct type
	Interfaces []reflect.Type
	Metadata   stereotype.Metadata
}

// ClassPath is a catalog of component types addressed by qualified name and
// grouped by import path. Packages behave like directories: an import path
// contains the types declared in it and every import path below it.
type ClassPath struct {
	mu      sync.RWMutex
	classes map[string]*Class
}

// New creates an empty ClassPath.
func New() *ClassPath {
	return &ClassPath{classes: make(map[string]*Class)}
}

var std = New()

// Default returns the process-wide ClassPath that Register writes to.
func Default() *ClassPath { return std }

// Register adds a component type to the default ClassPath. Call it from an
// init function of the package declaring the type:
//
//	func init() {
//	    classpath.Register(DemoServiceImpl{}, classpath.Implements[IDemoService]())
//	}
func Register(prototype any, interfaces ...reflect.Type) {
	std.Register(prototype, interfaces...)
}

// Implements returns the reflect.Type of interface I, for use with Register.
func Implements[I any]() reflect.Type {
	t := reflect.TypeOf((*I)(nil)).Elem()
	if t.Kind() != reflect.Interface {
		panic(fmt.Sprintf("classpath: Implements[%s]: not an interface", t))
	}
	return t
}

// QualifiedName returns "import/path.TypeName" for t, dereferencing pointers.
func QualifiedName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.PkgPath() + "." + t.Name()
}

// Register adds a component type. prototype may be a struct value or a
// pointer to one. interfaces are the interfaces the type declares, in
// order; a pointer to the type must implement each of them.
//
// Registration errors are programming errors and panic.
func (cp *ClassPath) Register(prototype any, interfaces ...reflect.Type) {
	t := reflect.TypeOf(prototype)
	if t == nil {
		panic("classpath: Register(nil)")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t.Name() == "" || t.PkgPath() == "" {
		panic(fmt.Sprintf("classpath: %s is not a named struct type", t))
	}
	ptr := reflect.PointerTo(t)
	for _, iface := range interfaces {
		if iface.Kind() != reflect.Interface {
			panic(fmt.Sprintf("classpath: %s declares %s, which is not an interface", t, iface))
		}
		if !ptr.Implements(iface) {
			panic(fmt.Sprintf("classpath: %s does not implement %s", ptr, iface))
		}
	}
	md, err := stereotype.Inspect(t)
	if err != nil {
		panic(fmt.Sprintf("classpath: %v", err))
	}

	c := &Class{
		Name:       QualifiedName(t),
		Package:    t.PkgPath(),
		SimpleName: t.Name(),
		Type:       t,
		Interfaces: append([]reflect.Type(nil), interfaces...),
		Metadata:   md,
	}

	cp.mu.Lock()
	defer cp.mu.Unlock()
	if _, exists := cp.classes[c.Name]; exists {
		panic(fmt.Sprintf("classpath: %s already registered", c.Name))
	}
	cp.classes[c.Name] = c
}

// ForName looks up a registered type by qualified name.
func (cp *ClassPath) ForName(name string) (*Class, error) {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	c, ok := cp.classes[name]
	if !ok {
		return nil, errors.Errorf("class not found: %s", name)
	}
	return c, nil
}

// Lookup returns the registered class for t, if any.
func (cp *ClassPath) Lookup(t reflect.Type) (*Class, bool) {
	c, err := cp.ForName(QualifiedName(t))
	return c, err == nil
}

// Exists reports whether pkg is an import path that holds registered types
// directly or in a package below it.
func (cp *ClassPath) Exists(pkg string) bool {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	for _, c := range cp.classes {
		if c.Package == pkg || strings.HasPrefix(c.Package, pkg+"/") {
			return true
		}
	}
	return false
}

// List returns the entries directly inside pkg: the qualified names of the
// types declared in it and the import paths of its immediate sub-packages.
// Both are sorted.
func (cp *ClassPath) List(pkg string) (classes, packages []string) {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	seen := make(map[string]bool)
	for _, c := range cp.classes {
		switch {
		case c.Package == pkg:
			classes = append(classes, c.Name)
		case strings.HasPrefix(c.Package, pkg+"/"):
			rest := strings.TrimPrefix(c.Package, pkg+"/")
			child := pkg + "/" + strings.SplitN(rest, "/", 2)[0]
			if !seen[child] {
				seen[child] = true
				packages = append(packages, child)
			}
		}
	}
	sort.Strings(classes)
	sort.Strings(packages)
	return classes, packages
}
