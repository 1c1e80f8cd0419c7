package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(Up0001, Down0001)
}

func Up0001(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
CREATE TABLE submissions (
    id BIGSERIAL PRIMARY KEY,
    lumen_name VARCHAR(100) NOT NULL,
    prompt_text TEXT NOT NULL,
    ai_used VARCHAR(50) NOT NULL,
    reward_amount DOUBLE PRECISION NOT NULL,
    screenshot_path VARCHAR(200) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT current_timestamp
);
`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
CREATE INDEX idx_submissions_lumen_name ON submissions (lumen_name);`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
CREATE INDEX idx_submissions_ai_used ON submissions (ai_used);`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
CREATE INDEX idx_submissions_created_at ON submissions (created_at);`)
	if err != nil {
		return err
	}

	return nil
}

func Down0001(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE submissions;`)
	if err != nil {
		return err
	}

	return nil
}
