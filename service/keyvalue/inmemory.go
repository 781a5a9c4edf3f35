package keyvalue

import (
	"sort"
	"strings"
	"sync"

	"github.com/meridian-chain/corecontracts/base/ctx"
)

// InMemory is a deterministic in-process store. Visit iterates in key
// order so replayed transactions observe identical enumeration.
type InMemory struct {
	sync.Mutex
	data map[string][]byte
}

func NewInMemory() *InMemory {
	return &InMemory{data: map[string][]byte{}}
}

func (s *InMemory) Get(_ ctx.Ctx, key []byte) ([]byte, error) {
	v, ok := s.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *InMemory) Put(_ ctx.Ctx, key, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	s.data[string(key)] = v
	return nil
}

func (s *InMemory) Delete(_ ctx.Ctx, key []byte) error {
	delete(s.data, string(key))
	return nil
}

func (s *InMemory) Has(_ ctx.Ctx, key []byte) (bool, error) {
	_, ok := s.data[string(key)]
	return ok, nil
}

func (s *InMemory) Visit(_ ctx.Ctx, prefix []byte, fn func(key, value []byte) error) error {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if strings.HasPrefix(k, string(prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn([]byte(k), s.data[k]); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot captures the current contents. Restoring the returned function
// discards everything written since, which is how tests emulate the host
// transaction's all-or-nothing commit.
func (s *InMemory) Snapshot() func() {
	saved := make(map[string][]byte, len(s.data))
	for k, v := range s.data {
		saved[k] = v
	}
	return func() {
		s.data = make(map[string][]byte, len(saved))
		for k, v := range saved {
			s.data[k] = v
		}
	}
}
