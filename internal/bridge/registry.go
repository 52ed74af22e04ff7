// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package bridge

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/samber/oops"
)

// Class describes a host type scripts can reach by name.
type Class struct {
	// Name is the fully qualified name scripts use, e.g. "container/list.List".
	Name string
	// Type is the host type. Instances are built with reflect.New unless New is set.
	Type reflect.Type
	// New optionally constructs a ready-to-use instance. It may return
	// (value) or (value, error).
	New any
	// Statics maps entry point names to zero-argument functions for loadLib.
	Statics map[string]any
}

// ClassFor builds a Class for T, named after its package path and type name.
func ClassFor[T any]() Class {
	t := reflect.TypeFor[T]()
	return Class{Name: QualifiedName(t), Type: t}
}

// QualifiedName returns "<pkgpath>.<Name>" for named types, or the type's
// string form otherwise.
func QualifiedName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer && t.Name() == "" {
		t = t.Elem()
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

func (c *Class) validate() error {
	if c.Name == "" {
		return oops.In("bridge").Errorf("class name is required")
	}
	if c.Type == nil && c.New == nil && len(c.Statics) == 0 {
		return oops.In("bridge").With("class", c.Name).Errorf("class needs a type, a constructor or statics")
	}
	if c.New != nil {
		if err := checkNullary(c.New); err != nil {
			return oops.In("bridge").With("class", c.Name).Wrapf(err, "invalid constructor")
		}
	}
	for name, fn := range c.Statics {
		if reflect.TypeOf(fn) == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
			return oops.In("bridge").With("class", c.Name).With("method", name).Errorf("static %s is not a function", name)
		}
	}
	return nil
}

// Registry maps class names to classes. It backs one resolution tier.
//
// Registry is safe for concurrent use.
type Registry struct {
	classes map[string]*Class
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*Class)}
}

// Register adds or replaces a class.
func (r *Registry) Register(c Class) error {
	if err := c.validate(); err != nil {
		return err
	}

	statics := make(map[string]any, len(c.Statics))
	for k, v := range c.Statics {
		statics[k] = v
	}
	c.Statics = statics

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.classes == nil {
		r.classes = make(map[string]*Class)
	}
	r.classes[c.Name] = &c
	return nil
}

// MustRegister is Register that panics on error. Intended for package init.
func (r *Registry) MustRegister(classes ...Class) {
	for _, c := range classes {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the class registered under name.
func (r *Registry) Lookup(name string) (*Class, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[name]
	return c, ok
}

// Names returns the registered class names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type registryKey struct{}

// ContextWithRegistry returns a context carrying an ambient registry. The
// bridge consults it after the application registry and before the default.
func ContextWithRegistry(ctx context.Context, r *Registry) context.Context {
	return context.WithValue(ctx, registryKey{}, r)
}

// RegistryFromContext returns the ambient registry carried by ctx, if any.
func RegistryFromContext(ctx context.Context) (*Registry, bool) {
	if ctx == nil {
		return nil, false
	}
	r, ok := ctx.Value(registryKey{}).(*Registry)
	return r, ok && r != nil
}

var defaultRegistry = NewRegistry()

// Default returns the process-global registry, the last resolution tier.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a class to the process-global registry.
func Register(c Class) error {
	return defaultRegistry.Register(c)
}
