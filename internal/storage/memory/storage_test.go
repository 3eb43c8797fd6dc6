package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tourcompanion/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) TestSetAllAndGet() {
	err := s.storage.SetAll(s.ctx, map[string]string{"a": "1", "b": "2"})
	s.Require().NoError(err)

	value, err := s.storage.Get(s.ctx, "a")
	s.Require().NoError(err)
	s.Equal("1", value)

	value, err = s.storage.Get(s.ctx, "b")
	s.Require().NoError(err)
	s.Equal("2", value)
}

func (s *StorageSuite) TestGetMissingKey() {
	_, err := s.storage.Get(s.ctx, "missing")
	s.ErrorIs(err, model.ErrKeyNotFound)
}

func (s *StorageSuite) TestSetAllOverwrites() {
	_ = s.storage.SetAll(s.ctx, map[string]string{"a": "1"})
	_ = s.storage.SetAll(s.ctx, map[string]string{"a": "2"})

	value, err := s.storage.Get(s.ctx, "a")
	s.Require().NoError(err)
	s.Equal("2", value)
}

func (s *StorageSuite) TestDelete() {
	_ = s.storage.SetAll(s.ctx, map[string]string{"a": "1", "b": "2"})

	err := s.storage.Delete(s.ctx, "a", "missing")
	s.Require().NoError(err)

	_, err = s.storage.Get(s.ctx, "a")
	s.ErrorIs(err, model.ErrKeyNotFound)
	s.Equal(1, s.storage.Len())
}
