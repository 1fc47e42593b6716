// Package diag holds the per-request diagnostic context: a small key/value bag
// (locale, correlation id, principal) carried explicitly on context.Context
//
// A Bag is owned by one logical request. Work that hops onto another goroutine
// does not see the request's bag unless it is copied over with Apply and removed
// afterwards with Remove, which is what the backend dispatcher does for callbacks
package diag

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// Key names one diagnostic entry
type Key string

// Well known keys; connectors may add their own
const (
	KeyRequestID Key = "request_id"
	KeyLocale    Key = "locale"
	KeyPrincipal Key = "prn"
	KeyTenant    Key = "tenant_id"
	KeyConnector Key = "connector"
)

// Bag is a concurrency safe string map
type Bag struct {
	mu sync.RWMutex
	m  map[Key]string
}

// NewBag returns an empty bag
func NewBag() *Bag { return &Bag{m: map[Key]string{}} }

// Put sets k to v, an empty v removes the key
func (b *Bag) Put(k Key, v string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v == "" {
		delete(b.m, k)
		return
	}
	b.m[k] = v
}

// Get returns the value for k and whether it was present
func (b *Bag) Get(k Key) (string, bool) {
	if b == nil {
		return "", false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.m[k]
	return v, ok
}

// Value returns the value for k or ""
func (b *Bag) Value(k Key) string {
	v, _ := b.Get(k)
	return v
}

// Remove deletes the given keys and nothing else
func (b *Bag) Remove(keys ...Key) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range keys {
		delete(b.m, k)
	}
}

// Clear drops every entry
func (b *Bag) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.m)
}

// Len returns the number of entries
func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.m)
}

// Snapshot returns a copy of the entries
func (b *Bag) Snapshot() map[Key]string {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return maps.Clone(b.m)
}

// Keys returns the present keys in sorted order
func (b *Bag) Keys() []Key {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Sorted(maps.Keys(b.m))
}

// Apply copies snap into dst and returns the keys it wrote
// keys already holding the same value are left alone and not reported, so
// removing the returned keys never strips state dst owned before the copy
func Apply(dst *Bag, snap map[Key]string) []Key {
	if dst == nil || len(snap) == 0 {
		return nil
	}
	dst.mu.Lock()
	defer dst.mu.Unlock()
	var wrote []Key
	for k, v := range snap {
		if cur, ok := dst.m[k]; ok && cur == v {
			continue
		}
		dst.m[k] = v
		wrote = append(wrote, k)
	}
	slices.Sort(wrote)
	return wrote
}

type ctxKey struct{}

// WithBag stores b on ctx
func WithBag(ctx context.Context, b *Bag) context.Context {
	return context.WithValue(ctx, ctxKey{}, b)
}

// FromContext returns the bag on ctx or nil
func FromContext(ctx context.Context) *Bag {
	if ctx == nil {
		return nil
	}
	b, _ := ctx.Value(ctxKey{}).(*Bag)
	return b
}

// Ensure returns ctx with a bag attached, reusing one if already present
func Ensure(ctx context.Context) (context.Context, *Bag) {
	if b := FromContext(ctx); b != nil {
		return ctx, b
	}
	b := NewBag()
	return WithBag(ctx, b), b
}

// Get reads k from the bag on ctx, "" when absent
func Get(ctx context.Context, k Key) string { return FromContext(ctx).Value(k) }
