package cmd

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/willfong/dbbench/internal/database"
	"github.com/willfong/dbbench/internal/ui"
)

// connectAdmin opens the harness's own connection, used for schema setup,
// row counts and loading seed ids. It is never timed.
func connectAdmin(ctx context.Context, u *ui.UI) (*pgx.Conn, error) {
	spin := u.NewSpinner("Connecting to database")
	spin.Start()
	conn, err := database.ConnectPgx(ctx, cfg.Database)
	if err != nil {
		spin.Error("connection failed")
		return nil, err
	}
	spin.Success("connected")
	return conn, nil
}

// ensureSchema applies the embedded schema
func ensureSchema(ctx context.Context, u *ui.UI, conn *pgx.Conn) error {
	spin := u.NewSpinner("Checking schema")
	spin.Start()
	if err := database.EnsureSchema(ctx, conn); err != nil {
		spin.Error("failed")
		return err
	}
	spin.Success("ready")
	return nil
}
