// Package keyvalue is the storage primitive the settlement engines run on:
// an explicitly injected key-value store, prefix-scoped per entity type.
// The store itself knows nothing about transactions; atomic commit and
// rollback across an operation belong to the hosting environment.
package keyvalue

import (
	"errors"
	"sync"

	"github.com/meridian-chain/corecontracts/base/ctx"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("key not found")

// Store is a scoped key-value region. The embedded Locker is the mutual
// exclusion a read-modify-write sequence takes for one storage context; it
// guards interleaving inside this process only.
type Store interface {
	sync.Locker

	Get(ctx ctx.Ctx, key []byte) ([]byte, error)
	Put(ctx ctx.Ctx, key, value []byte) error
	Delete(ctx ctx.Ctx, key []byte) error
	Has(ctx ctx.Ctx, key []byte) (bool, error)

	// Visit walks every key under prefix in ascending key order.
	Visit(ctx ctx.Ctx, prefix []byte, fn func(key, value []byte) error) error
}

type namespaced struct {
	Store
	prefix []byte
}

// Namespace returns a view of store where every key is transparently
// prefixed. Views over the same store share its lock.
func Namespace(store Store, prefix string) Store {
	return &namespaced{Store: store, prefix: []byte(prefix)}
}

func (n *namespaced) scope(key []byte) []byte {
	scoped := make([]byte, 0, len(n.prefix)+len(key))
	scoped = append(scoped, n.prefix...)
	return append(scoped, key...)
}

func (n *namespaced) Get(ctx ctx.Ctx, key []byte) ([]byte, error) {
	return n.Store.Get(ctx, n.scope(key))
}

func (n *namespaced) Put(ctx ctx.Ctx, key, value []byte) error {
	return n.Store.Put(ctx, n.scope(key), value)
}

func (n *namespaced) Delete(ctx ctx.Ctx, key []byte) error {
	return n.Store.Delete(ctx, n.scope(key))
}

func (n *namespaced) Has(ctx ctx.Ctx, key []byte) (bool, error) {
	return n.Store.Has(ctx, n.scope(key))
}

func (n *namespaced) Visit(ctx ctx.Ctx, prefix []byte, fn func(key, value []byte) error) error {
	return n.Store.Visit(ctx, n.scope(prefix), func(key, value []byte) error {
		return fn(key[len(n.prefix):], value)
	})
}
