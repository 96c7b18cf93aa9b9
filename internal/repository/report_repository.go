package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/report-service/internal/domain"
)

// ReportRepository persists report documents with their ordered blocks and
// block tags. Reads are always scoped to the owning user.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.ReportDocument) error
	ListByUser(ctx context.Context, userID string) ([]*domain.ReportDocument, error)
	GetByID(ctx context.Context, userID, reportID string) (*domain.ReportDocument, error)
	// Delete removes a report owned by userID and returns its stored file
	// path; pgx.ErrNoRows when the report does not exist or belongs to
	// someone else.
	Delete(ctx context.Context, userID, reportID string) (string, error)
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository returns a Postgres-backed implementation.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

func (r *reportRepository) Create(ctx context.Context, report *domain.ReportDocument) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const reportQuery = `
        INSERT INTO reports (id, user_id, title, file_path, file_size, file_type)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at, updated_at`

	if err := tx.QueryRow(ctx, reportQuery,
		report.ID,
		report.UserID,
		report.Title,
		report.FilePath,
		report.FileSize,
		report.FileType,
	).Scan(&report.CreatedAt, &report.UpdatedAt); err != nil {
		return err
	}

	const blockQuery = `
        INSERT INTO report_blocks (id, report_id, content, type, block_order)
        VALUES ($1, $2, $3, $4, $5)`
	const tagQuery = `
        INSERT INTO block_tags (block_id, tag)
        VALUES ($1, $2)`

	for i, block := range report.Blocks {
		if _, err := tx.Exec(ctx, blockQuery, block.ID, report.ID, block.Content, block.Type, i); err != nil {
			return err
		}
		for _, tag := range block.Tags {
			if _, err := tx.Exec(ctx, tagQuery, block.ID, tag); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func (r *reportRepository) ListByUser(ctx context.Context, userID string) ([]*domain.ReportDocument, error) {
	const query = `
        SELECT id, title, file_path, file_size, file_type, created_at, updated_at
        FROM reports WHERE user_id=$1
        ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*domain.ReportDocument
	for rows.Next() {
		report := &domain.ReportDocument{UserID: userID}
		if err := rows.Scan(
			&report.ID,
			&report.Title,
			&report.FilePath,
			&report.FileSize,
			&report.FileType,
			&report.CreatedAt,
			&report.UpdatedAt,
		); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, report := range reports {
		blocks, err := r.loadBlocks(ctx, report.ID)
		if err != nil {
			return nil, err
		}
		report.Blocks = blocks
	}
	return reports, nil
}

func (r *reportRepository) GetByID(ctx context.Context, userID, reportID string) (*domain.ReportDocument, error) {
	const query = `
        SELECT id, title, file_path, file_size, file_type, created_at, updated_at
        FROM reports WHERE id=$1 AND user_id=$2`

	report := &domain.ReportDocument{UserID: userID}
	if err := r.pool.QueryRow(ctx, query, reportID, userID).Scan(
		&report.ID,
		&report.Title,
		&report.FilePath,
		&report.FileSize,
		&report.FileType,
		&report.CreatedAt,
		&report.UpdatedAt,
	); err != nil {
		return nil, err
	}

	blocks, err := r.loadBlocks(ctx, report.ID)
	if err != nil {
		return nil, err
	}
	report.Blocks = blocks
	return report, nil
}

func (r *reportRepository) loadBlocks(ctx context.Context, reportID string) ([]domain.ReportBlock, error) {
	const query = `
        SELECT rb.id, rb.content, rb.type,
               COALESCE(array_agg(bt.tag ORDER BY bt.id) FILTER (WHERE bt.tag IS NOT NULL), '{}')
        FROM report_blocks rb
        LEFT JOIN block_tags bt ON bt.block_id = rb.id
        WHERE rb.report_id=$1
        GROUP BY rb.id, rb.content, rb.type, rb.block_order
        ORDER BY rb.block_order`

	rows, err := r.pool.Query(ctx, query, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blocks := []domain.ReportBlock{}
	for rows.Next() {
		var block domain.ReportBlock
		if err := rows.Scan(&block.ID, &block.Content, &block.Type, &block.Tags); err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, rows.Err()
}

func (r *reportRepository) Delete(ctx context.Context, userID, reportID string) (string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var filePath string
	if err := tx.QueryRow(ctx,
		`SELECT file_path FROM reports WHERE id=$1 AND user_id=$2`, reportID, userID,
	).Scan(&filePath); err != nil {
		return "", err
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM block_tags WHERE block_id IN (SELECT id FROM report_blocks WHERE report_id=$1)`,
		reportID,
	); err != nil {
		return "", err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM report_blocks WHERE report_id=$1`, reportID); err != nil {
		return "", err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM reports WHERE id=$1`, reportID); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return filePath, nil
}
