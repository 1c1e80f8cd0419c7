package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(Up0005, Down0005)
}

// Store-level backstop for the service-level reward validation.
func Up0005(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
ALTER TABLE submissions
ADD CONSTRAINT check_reward_amount_positive CHECK (reward_amount >= 0);`)
	if err != nil {
		return err
	}

	return nil
}

func Down0005(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
ALTER TABLE submissions
DROP CONSTRAINT check_reward_amount_positive;`)
	if err != nil {
		return err
	}

	return nil
}
