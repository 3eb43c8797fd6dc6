package credential

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tourcompanion/internal/model"
	"github.com/mcoot/tourcompanion/internal/storage/memory"
	"github.com/mcoot/tourcompanion/internal/testutil"
)

type StoreSuite struct {
	suite.Suite
	storage *memory.Storage
	store   *Store
	ctx     context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.storage = memory.New()
	s.store = New(s.storage, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *StoreSuite) TestLoadEmpty() {
	creds, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Nil(creds)
}

func (s *StoreSuite) TestSaveThenLoad() {
	identity := model.Identity{ID: "u1", DisplayName: "Mina", Email: "mina@example.com"}

	err := s.store.Save(s.ctx, "tok-1", identity)
	s.Require().NoError(err)

	creds, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(creds)
	s.Equal("tok-1", creds.Token)
	s.Require().NotNil(creds.Identity)
	s.Equal(identity, *creds.Identity)
}

func (s *StoreSuite) TestSaveRejectsEmptyToken() {
	err := s.store.Save(s.ctx, "", model.Identity{ID: "u1"})
	s.Error(err)
	s.Equal(0, s.storage.Len())
}

func (s *StoreSuite) TestClear() {
	_ = s.store.Save(s.ctx, "tok-1", model.Identity{ID: "u1"})

	s.Require().NoError(s.store.Clear(s.ctx))

	creds, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Nil(creds)
	s.Equal(0, s.storage.Len())
}

func (s *StoreSuite) TestTokenWithoutIdentity() {
	_ = s.storage.SetAll(s.ctx, map[string]string{TokenKey: "tok-1"})

	creds, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(creds)
	s.Equal("tok-1", creds.Token)
	s.Nil(creds.Identity)
}

func (s *StoreSuite) TestUnreadableIdentityIsDropped() {
	_ = s.storage.SetAll(s.ctx, map[string]string{TokenKey: "tok-1", IdentityKey: "{broken"})

	creds, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(creds)
	s.Nil(creds.Identity)
}

func (s *StoreSuite) TestIdentityWithoutTokenIsIgnored() {
	_ = s.storage.SetAll(s.ctx, map[string]string{IdentityKey: `{"id":"u1"}`})

	creds, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Nil(creds)
}
