package keyvalue

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/meridian-chain/corecontracts/base/ctx"
)

type inmemorySuite struct {
	suite.Suite

	ctx   ctx.Ctx
	store *InMemory
}

func (s *inmemorySuite) SetupTest() {
	s.ctx = ctx.Background()
	s.store = NewInMemory()
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(inmemorySuite))
}

func (s *inmemorySuite) TestGetMissingKey() {
	_, err := s.store.Get(s.ctx, []byte("nope"))
	s.Equal(ErrNotFound, err)
}

func (s *inmemorySuite) TestPutGetDelete() {
	s.NoError(s.store.Put(s.ctx, []byte("k"), []byte("v")))

	v, err := s.store.Get(s.ctx, []byte("k"))
	s.NoError(err)
	s.Equal([]byte("v"), v)

	has, err := s.store.Has(s.ctx, []byte("k"))
	s.NoError(err)
	s.True(has)

	s.NoError(s.store.Delete(s.ctx, []byte("k")))
	_, err = s.store.Get(s.ctx, []byte("k"))
	s.Equal(ErrNotFound, err)
}

func (s *inmemorySuite) TestVisitIsOrderedAndPrefixScoped() {
	s.store.Put(s.ctx, []byte("a.2"), []byte("two"))
	s.store.Put(s.ctx, []byte("a.1"), []byte("one"))
	s.store.Put(s.ctx, []byte("b.1"), []byte("other"))

	keys := []string{}
	err := s.store.Visit(s.ctx, []byte("a."), func(key, _ []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	s.NoError(err)
	s.Equal([]string{"a.1", "a.2"}, keys)
}

func (s *inmemorySuite) TestNamespaceScopesKeys() {
	ns := Namespace(s.store, "region.")
	s.NoError(ns.Put(s.ctx, []byte("k"), []byte("v")))

	raw, err := s.store.Get(s.ctx, []byte("region.k"))
	s.NoError(err)
	s.Equal([]byte("v"), raw)

	keys := []string{}
	err = ns.Visit(s.ctx, nil, func(key, _ []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	s.NoError(err)
	s.Equal([]string{"k"}, keys)
}

func (s *inmemorySuite) TestSnapshotRestoreDiscardsWrites() {
	s.store.Put(s.ctx, []byte("k"), []byte("before"))
	restore := s.store.Snapshot()

	s.store.Put(s.ctx, []byte("k"), []byte("after"))
	s.store.Put(s.ctx, []byte("new"), []byte("x"))
	restore()

	v, err := s.store.Get(s.ctx, []byte("k"))
	s.NoError(err)
	s.Equal([]byte("before"), v)

	_, err = s.store.Get(s.ctx, []byte("new"))
	s.Equal(ErrNotFound, err)
}
