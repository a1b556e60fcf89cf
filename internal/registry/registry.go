// Package registry resolves polymorphic record references. A Document's
// owner and a Line's invoiceable item are stored as a type discriminator
// plus an id; the registry maps each discriminator to a lookup function so
// services can verify the referenced record exists without knowing its
// concrete type.
package registry

import (
	"context"
	"fmt"
	"sync"

	"invoicable/internal/billing"
)

// Ref is a type-erased reference to a domain record.
type Ref struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (r Ref) String() string {
	return r.Type + ":" + r.ID
}

// Resolver looks up a record of one registered type by id. It returns
// billing.ErrNotFound (wrapped or bare) when the id does not exist.
type Resolver func(ctx context.Context, id string) (any, error)

// Registry maps type discriminators to resolvers. Registration happens at
// startup; lookups are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	resolvers map[string]Resolver
}

func New() *Registry {
	return &Registry{resolvers: make(map[string]Resolver)}
}

// Register binds a type name to its resolver. Last registration wins.
func (r *Registry) Register(typeName string, fn Resolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers[typeName] = fn
}

// Resolve returns the record a Ref points at.
func (r *Registry) Resolve(ctx context.Context, ref Ref) (any, error) {
	r.mu.RLock()
	fn, ok := r.resolvers[ref.Type]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", billing.ErrUnknownRecordType, ref.Type)
	}
	return fn(ctx, ref.ID)
}

// Knows reports whether a type name has a registered resolver.
func (r *Registry) Knows(typeName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.resolvers[typeName]
	return ok
}
