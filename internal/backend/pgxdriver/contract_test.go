package pgxdriver_test

import (
	"testing"

	"github.com/willfong/dbbench/internal/backend"
	"github.com/willfong/dbbench/internal/backend/backendtest"
	"github.com/willfong/dbbench/internal/backend/pgxdriver"
	"github.com/willfong/dbbench/internal/config"
)

func TestContract(t *testing.T) {
	backendtest.Run(t, func(db config.DatabaseConfig) backend.Backend {
		return pgxdriver.New(db)
	})
}

func TestContractSingleConnection(t *testing.T) {
	backendtest.RunPoolSize(t, func(db config.DatabaseConfig) backend.Backend {
		return pgxdriver.New(db)
	}, 1)
}
