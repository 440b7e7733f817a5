package store

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)

		var count int
		require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count))
		require.NoError(t, s.Close())
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
	assert.Error(t, s.verifyPragma("user_version", "7"))
}

func TestOpen_MigratesOldDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec("DROP INDEX idx_unit_results_outcome")
	require.NoError(t, err)
	_, err = s.db.Exec("PRAGMA user_version = 0")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	var name string
	err = s.db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'index' AND name = 'idx_unit_results_outcome'`).Scan(&name)
	require.NoError(t, err)
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}

func TestUUIDGenerator(t *testing.T) {
	g := UUIDGenerator{}
	a, b := g.Generate(), g.Generate()

	uuidRe := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	assert.Regexp(t, uuidRe, a)
	assert.NotEqual(t, a, b)
}
