package classpath

import (
	"strings"

	"github.com/km-arc/go-mvc/framework/fault"
	"github.com/km-arc/go-mvc/framework/stereotype"
)

// Descriptor is one discovered component type, before instantiation.
type Descriptor struct {
	Name    string
	Markers stereotype.Markers
}

// Scan walks root and every package below it, returning one descriptor per
// registered type. Types of a package come before its sub-packages, each
// group in lexical order. No filtering by marker happens here.
//
// A root that holds no types at any depth is a configuration error.
func Scan(cp *ClassPath, root string) ([]Descriptor, error) {
	root = strings.TrimSuffix(strings.TrimSpace(root), "/")
	if root == "" {
		return nil, fault.Configuration("scanPackage", "no package to scan")
	}
	if !cp.Exists(root) {
		return nil, fault.Configuration("scanPackage", "package %s holds no registered components", root)
	}
	var out []Descriptor
	scan(cp, root, &out)
	return out, nil
}

func scan(cp *ClassPath, pkg string, out *[]Descriptor) {
	classes, packages := cp.List(pkg)
	for _, name := range classes {
		c, err := cp.ForName(name)
		if err != nil {
			continue
		}
		*out = append(*out, Descriptor{Name: c.Name, Markers: c.Metadata.Markers})
	}
	for _, sub := range packages {
		scan(cp, sub, out)
	}
}
