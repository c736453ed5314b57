package container

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the bean registry: a mapping from bean name to one live
// instance.
//
// It is filled during bootstrap (Instantiate, then Autowire) and only read
// afterwards. Registering a name twice replaces the earlier bean.
type Container struct {
	mu sync.RWMutex

	// bean name → instance
	instances map[string]any

	// registration callbacks: []func(name, instance)
	afterRegistering []func(string, any)

	log *zap.Logger
}

// New creates an empty container. A nil logger discards log output.
func New(log *zap.Logger) *Container {
	if log == nil {
		log = zap.NewNop()
	}
	return &Container{
		instances: make(map[string]any),
		log:       log,
	}
}

// ── Registration ──────────────────────────────────────────────────────────────

// Instance registers a live bean under name, replacing any bean already
// registered under it.
//
//	c.Instance("demoController", &DemoController{})
func (c *Container) Instance(name string, instance any) {
	c.mu.Lock()
	if prev, ok := c.instances[name]; ok && prev != instance {
		c.log.Debug("bean replaced", zap.String("bean", name),
			zap.String("previous", fmt.Sprintf("%T", prev)),
			zap.String("current", fmt.Sprintf("%T", instance)))
	}
	c.instances[name] = instance
	cbs := c.afterRegistering
	c.mu.Unlock()

	for _, cb := range cbs {
		cb(name, instance)
	}
}

// AfterRegistering registers a callback fired after every Instance call.
func (c *Container) AfterRegistering(cb func(name string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterRegistering = append(c.afterRegistering, cb)
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make returns the bean registered under name. It panics when there is none;
// use Lookup when a miss is expected.
//
//	ctrl := c.Make("demoController")
func (c *Container) Make(name string) any {
	instance, ok := c.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("container: no bean registered for [%s]", name))
	}
	return instance
}

// Lookup returns the bean registered under name and whether it exists.
func (c *Container) Lookup(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	instance, ok := c.instances[name]
	return instance, ok
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound returns true if a bean is registered under name.
func (c *Container) Bound(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

// Len returns the number of registered names. A bean registered under
// several names counts once per name.
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.instances)
}

// Bindings returns every registered bean name, sorted.
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.instances))
	for k := range c.instances {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve calls Make and type-asserts the result.
//
//	// Instead of: log := c.Make("logger").(*zap.Logger)
//	// Write:      log := container.Resolve[*zap.Logger](c, "logger")
func Resolve[T any](c *Container, name string) T {
	instance := c.Make(name)
	typed, ok := instance.(T)
	if !ok {
		panic(fmt.Sprintf("container: Resolve[%T]: [%s] resolved to %T", *new(T), name, instance))
	}
	return typed
}

// TryResolve is like Resolve but reports a missing or mistyped bean with
// ok=false instead of panicking.
func TryResolve[T any](c *Container, name string) (T, bool) {
	instance, ok := c.Lookup(name)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := instance.(T)
	return typed, ok
}
