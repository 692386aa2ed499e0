package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willfong/dbbench/internal/backend"
	"github.com/willfong/dbbench/internal/config"
)

func TestAllMatchesNames(t *testing.T) {
	db := config.DefaultConfig().Database
	all := All(db)
	require.Len(t, all, len(Names()))
	for i, b := range all {
		assert.Equal(t, Names()[i], b.Name())
		assert.Equal(t, b.Name(), b.Info().Name)
	}
}

func TestOnlyRawDriverIsNonAtomic(t *testing.T) {
	for _, b := range All(config.DefaultConfig().Database) {
		assert.Equal(t, b.Name() != "pgx", b.Info().Atomic, b.Name())
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup(config.DefaultConfig().Database, "hibernate")
	assert.ErrorIs(t, err, backend.ErrUnknownBackend)
}

func TestSelect(t *testing.T) {
	db := config.DefaultConfig().Database

	got, err := Select(db, nil)
	require.NoError(t, err)
	assert.Len(t, got, 5)

	got, err = Select(db, []string{"sqlc, PGX", "gorm"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	// report order, not argument order
	assert.Equal(t, "pgx", got[0].Name())
	assert.Equal(t, "gorm", got[1].Name())
	assert.Equal(t, "sqlc", got[2].Name())

	_, err = Select(db, []string{"pgx", "nope"})
	assert.ErrorIs(t, err, backend.ErrUnknownBackend)
}
