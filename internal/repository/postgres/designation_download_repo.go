// internal/repository/postgres/designation_download_repo.go
package postgres

import (
	"context"
	"fmt"

	"referee-dashboard/internal/domain/referee"

	"github.com/jackc/pgx/v5"
)

const designationDownloadsSchema = `
	CREATE TABLE IF NOT EXISTS designation_downloads (
		id             BIGSERIAL PRIMARY KEY,
		user_id        TEXT        NOT NULL,
		designation_id TEXT        NOT NULL,
		size_bytes     INTEGER     NOT NULL DEFAULT 0,
		downloaded_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_designation_downloads_user
		ON designation_downloads (user_id, downloaded_at DESC);
`

// DesignationDownloadRepository is the download log in PostgreSQL.
type DesignationDownloadRepository struct {
	db *DB
}

func NewDesignationDownloadRepository(db *DB) *DesignationDownloadRepository {
	return &DesignationDownloadRepository{db: db}
}

// EnsureSchema creates the table and index when missing.
func (r *DesignationDownloadRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin schema tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, designationDownloadsSchema); err != nil {
		return fmt.Errorf("failed to create designation_downloads: %w", err)
	}
	return tx.Commit(ctx)
}

// Record inserts d and fills in its id and timestamp.
func (r *DesignationDownloadRepository) Record(ctx context.Context, d *referee.DesignationDownload) error {
	query := `
		INSERT INTO designation_downloads (user_id, designation_id, size_bytes, downloaded_at)
		VALUES ($1, $2, $3, COALESCE($4, NOW()))
		RETURNING id, downloaded_at
	`

	var at interface{}
	if !d.DownloadedAt.IsZero() {
		at = d.DownloadedAt
	}

	err := r.db.Pool().QueryRow(ctx, query, d.UserID, d.DesignationID, d.SizeBytes, at).
		Scan(&d.ID, &d.DownloadedAt)
	if err != nil {
		return fmt.Errorf("failed to record designation download: %w", err)
	}
	return nil
}

// ListByUser returns the newest downloads of userID first.
func (r *DesignationDownloadRepository) ListByUser(ctx context.Context, userID string, limit int) ([]referee.DesignationDownload, error) {
	query := `
		SELECT id, user_id, designation_id, size_bytes, downloaded_at
		FROM designation_downloads
		WHERE user_id = $1
		ORDER BY downloaded_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.Pool().Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list designation downloads: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (referee.DesignationDownload, error) {
		var d referee.DesignationDownload
		err := row.Scan(&d.ID, &d.UserID, &d.DesignationID, &d.SizeBytes, &d.DownloadedAt)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan designation downloads: %w", err)
	}
	return items, nil
}
