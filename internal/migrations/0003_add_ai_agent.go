package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(Up0003, Down0003)
}

// ai_agent arrived after the first deployments; nullable so rows written
// before this version stay valid.
func Up0003(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
ALTER TABLE submissions
ADD COLUMN ai_agent VARCHAR(50) DEFAULT NULL;`)
	if err != nil {
		return err
	}

	return nil
}

func Down0003(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
ALTER TABLE submissions
DROP COLUMN ai_agent;`)
	if err != nil {
		return err
	}

	return nil
}
