package sql

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/banglascrabble/internal/storage"
	"github.com/mcoot/banglascrabble/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	dir := s.T().TempDir()
	s.NewStorage = func() storage.Storage {
		st, err := Open(context.Background(), Config{
			Driver: DriverSQLite,
			DSN:    filepath.Join(dir, "test.db"),
		})
		s.Require().NoError(err)
		return st
	}
	s.Suite.SetupTest()
}

func (s *StorageSuite) TestMigrationsAreIdempotent() {
	st := s.Storage.(*Storage)
	s.Require().NoError(st.migrate(s.Ctx))

	var n int
	s.Require().NoError(st.db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	s.Equal(1, n)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle", DSN: "x"})
	require.Error(t, err)
}

func TestRebind(t *testing.T) {
	q := `SELECT a FROM t WHERE a = ? AND b = ?`
	require.Equal(t, q, rebind(DriverSQLite, q))
	require.Equal(t, `SELECT a FROM t WHERE a = $1 AND b = $2`, rebind(DriverPostgres, q))
}
