package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tourcompanion/internal/model"
)

type StorageSuite struct {
	suite.Suite
	path    string
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "nested", "credentials.json")
	s.storage = New(s.path)
	s.ctx = context.Background()
}

func (s *StorageSuite) TestGetBeforeAnyWrite() {
	_, err := s.storage.Get(s.ctx, "sessionToken")
	s.ErrorIs(err, model.ErrKeyNotFound)
}

func (s *StorageSuite) TestSetAllCreatesPrivateFile() {
	err := s.storage.SetAll(s.ctx, map[string]string{"sessionToken": "tok-1"})
	s.Require().NoError(err)

	info, err := os.Stat(s.path)
	s.Require().NoError(err)
	s.Equal(os.FileMode(0600), info.Mode().Perm())
}

func (s *StorageSuite) TestValuesSurviveNewInstance() {
	_ = s.storage.SetAll(s.ctx, map[string]string{
		"sessionToken": "tok-1",
		"userIdentity": `{"id":"u1"}`,
	})

	reopened := New(s.path)
	token, err := reopened.Get(s.ctx, "sessionToken")
	s.Require().NoError(err)
	s.Equal("tok-1", token)
}

func (s *StorageSuite) TestDelete() {
	_ = s.storage.SetAll(s.ctx, map[string]string{"a": "1", "b": "2"})

	err := s.storage.Delete(s.ctx, "a")
	s.Require().NoError(err)

	_, err = s.storage.Get(s.ctx, "a")
	s.ErrorIs(err, model.ErrKeyNotFound)

	value, err := s.storage.Get(s.ctx, "b")
	s.Require().NoError(err)
	s.Equal("2", value)
}

func (s *StorageSuite) TestDeleteWithoutFileIsNoop() {
	err := s.storage.Delete(s.ctx, "sessionToken")
	s.Require().NoError(err)

	_, err = os.Stat(s.path)
	s.True(os.IsNotExist(err))
}

func (s *StorageSuite) TestCorruptFileIsReported() {
	s.Require().NoError(os.MkdirAll(filepath.Dir(s.path), 0700))
	s.Require().NoError(os.WriteFile(s.path, []byte("{not json"), 0600))

	_, err := s.storage.Get(s.ctx, "sessionToken")
	s.Error(err)
	s.NotErrorIs(err, model.ErrKeyNotFound)
}
