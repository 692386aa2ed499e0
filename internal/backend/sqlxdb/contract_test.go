package sqlxdb_test

import (
	"testing"

	"github.com/willfong/dbbench/internal/backend"
	"github.com/willfong/dbbench/internal/backend/backendtest"
	"github.com/willfong/dbbench/internal/backend/sqlxdb"
	"github.com/willfong/dbbench/internal/config"
)

func TestContract(t *testing.T) {
	backendtest.Run(t, func(db config.DatabaseConfig) backend.Backend {
		return sqlxdb.New(db)
	})
}
