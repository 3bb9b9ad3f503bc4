package storage

import (
	"context"
	"fmt"

	"litreview/internal/models"
)

type ReviewRepo struct {
	db *DB
}

func NewReviewRepo(db *DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

func (r *ReviewRepo) CreateRun(ctx context.Context, runID, inputDir string) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO review_runs (run_id, input_dir, status)
VALUES ($1, $2, 'pending')`, runID, inputDir)
	if err != nil {
		return fmt.Errorf("create review run: %w", err)
	}
	return nil
}

func (r *ReviewRepo) UpdateRunStatus(ctx context.Context, runID, status, outPath, failReason string) error {
	_, err := r.db.Pool.Exec(ctx, `
UPDATE review_runs
SET status=$2, out_path=NULLIF($3,''), fail_reason=NULLIF($4,''), updated_at=now()
WHERE run_id=$1`, runID, status, outPath, failReason)
	if err != nil {
		return fmt.Errorf("update review run: %w", err)
	}
	return nil
}

func (r *ReviewRepo) GetRun(ctx context.Context, runID string) (models.ReviewRun, error) {
	var run models.ReviewRun
	err := r.db.Pool.QueryRow(ctx, `
SELECT run_id, status, COALESCE(input_dir,''), COALESCE(out_path,''), COALESCE(fail_reason,''), created_at, updated_at
FROM review_runs WHERE run_id=$1`, runID).
		Scan(&run.RunID, &run.Status, &run.InputDir, &run.OutPath, &run.FailReason, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return models.ReviewRun{}, fmt.Errorf("get review run: %w", err)
	}
	return run, nil
}

func (r *ReviewRepo) ListRuns(ctx context.Context, limit int) ([]models.ReviewRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Pool.Query(ctx, `
SELECT run_id, status, COALESCE(input_dir,''), COALESCE(out_path,''), COALESCE(fail_reason,''), created_at, updated_at
FROM review_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list review runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ReviewRun
	for rows.Next() {
		var run models.ReviewRun
		if err := rows.Scan(&run.RunID, &run.Status, &run.InputDir, &run.OutPath, &run.FailReason, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan review run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review runs: %w", err)
	}
	return runs, nil
}
