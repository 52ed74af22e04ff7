// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package bridge

import (
	"context"
	"log/slog"
)

// Tier names, in resolution order.
const (
	TierApplication = "application"
	TierContext     = "context"
	TierDefault     = "default"
)

// Tier is one class resolution strategy.
type Tier struct {
	Name   string
	Lookup func(ctx context.Context, name string) (*Class, bool)
}

// RegistryTier resolves against a fixed registry.
func RegistryTier(name string, r *Registry) Tier {
	return Tier{
		Name: name,
		Lookup: func(_ context.Context, className string) (*Class, bool) {
			return r.Lookup(className)
		},
	}
}

// ContextTier resolves against the registry carried by the call's context.
func ContextTier() Tier {
	return Tier{
		Name: TierContext,
		Lookup: func(ctx context.Context, className string) (*Class, bool) {
			r, ok := RegistryFromContext(ctx)
			if !ok {
				return nil, false
			}
			return r.Lookup(className)
		},
	}
}

// ClassHandle is a resolved class together with the tier that resolved it.
type ClassHandle struct {
	class *Class
	tier  string
}

// Name returns the class name.
func (h *ClassHandle) Name() string { return h.class.Name }

// Tier returns the name of the tier that resolved the class.
func (h *ClassHandle) Tier() string { return h.tier }

// Class returns the resolved class.
func (h *ClassHandle) Class() *Class { return h.class }

// Equal reports whether two handles refer to the same class. Handles from
// separate resolutions of one name are equal.
func (h *ClassHandle) Equal(other *ClassHandle) bool {
	if h == nil || other == nil {
		return h == other
	}
	return h.tier == other.tier &&
		h.class.Name == other.class.Name &&
		h.class.Type == other.class.Type
}

// String returns "class <name>".
func (h *ClassHandle) String() string {
	return "class " + h.class.Name
}

// Resolver tries its tiers in order and returns the first hit. Nothing is
// cached: every call repeats the lookups.
type Resolver struct {
	tiers []Tier
}

// NewResolver creates a resolver over tiers, tried in the given order.
func NewResolver(tiers ...Tier) *Resolver {
	return &Resolver{tiers: tiers}
}

// DefaultResolver returns the standard application -> context -> default chain.
func DefaultResolver(app *Registry) *Resolver {
	return NewResolver(
		RegistryTier(TierApplication, app),
		ContextTier(),
		RegistryTier(TierDefault, Default()),
	)
}

// Tiers returns the tier names in resolution order.
func (r *Resolver) Tiers() []string {
	names := make([]string, len(r.tiers))
	for i, t := range r.tiers {
		names[i] = t.Name
	}
	return names
}

// Resolve finds name in the first tier that knows it. A name no tier knows
// yields a CLASS_NOT_FOUND error.
func (r *Resolver) Resolve(ctx context.Context, name string) (*ClassHandle, error) {
	for _, tier := range r.tiers {
		if c, ok := tier.Lookup(ctx, name); ok {
			slog.DebugContext(ctx, "class resolved",
				"class", name,
				"tier", tier.Name)
			return &ClassHandle{class: c, tier: tier.Name}, nil
		}
	}
	return nil, ErrClassNotFound(name)
}
