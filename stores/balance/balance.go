// Package balance is the low-level read-modify-write accounting primitive
// the token ledger keeps per-holder balances with. It enforces the two
// conservation rules every caller relies on: amounts moved are strictly
// positive, and no stored balance ever goes negative.
package balance

import (
	"math/big"

	"github.com/meridian-chain/corecontracts/base/ctx"
	"github.com/meridian-chain/corecontracts/domain"
	"github.com/meridian-chain/corecontracts/service/keyvalue"
)

// Sheet scopes balance keys to one asset symbol.
type Sheet struct {
	prefix []byte
}

func NewSheet(symbol domain.Symbol) Sheet {
	return Sheet{prefix: MakePrefix(symbol)}
}

func MakePrefix(symbol domain.Symbol) []byte {
	return []byte(".balances." + string(symbol))
}

func (s Sheet) keyFor(holder domain.Address) []byte {
	key := make([]byte, 0, len(s.prefix)+len(holder))
	key = append(key, s.prefix...)
	return append(key, holder...)
}

// Get returns the stored balance, zero when the key is absent. A balance
// that reached exactly zero was deleted, so absent and zero are the same
// thing on read.
func (s Sheet) Get(ctx ctx.Ctx, store keyvalue.Store, holder domain.Address) *big.Int {
	store.Lock()
	defer store.Unlock()
	return s.read(ctx, store, holder)
}

func (s Sheet) read(ctx ctx.Ctx, store keyvalue.Store, holder domain.Address) *big.Int {
	raw, err := store.Get(ctx, s.keyFor(holder))
	if err != nil || len(raw) == 0 {
		return big.NewInt(0)
	}
	return new(big.Int).SetBytes(raw)
}

// Add increments holder's balance. Returns false with no mutation when
// amount is not strictly positive.
func (s Sheet) Add(ctx ctx.Ctx, store keyvalue.Store, holder domain.Address, amount *big.Int) bool {
	if amount == nil || amount.Sign() <= 0 {
		return false
	}

	store.Lock()
	defer store.Unlock()

	next := new(big.Int).Add(s.read(ctx, store, holder), amount)
	return store.Put(ctx, s.keyFor(holder), next.Bytes()) == nil
}

// Subtract decrements holder's balance. Returns false with no mutation when
// amount is not strictly positive or the balance would go negative. A
// result of exactly zero removes the key.
func (s Sheet) Subtract(ctx ctx.Ctx, store keyvalue.Store, holder domain.Address, amount *big.Int) bool {
	if amount == nil || amount.Sign() <= 0 {
		return false
	}

	store.Lock()
	defer store.Unlock()

	next := new(big.Int).Sub(s.read(ctx, store, holder), amount)
	if next.Sign() < 0 {
		return false
	}
	if next.Sign() == 0 {
		return store.Delete(ctx, s.keyFor(holder)) == nil
	}
	return store.Put(ctx, s.keyFor(holder), next.Bytes()) == nil
}
