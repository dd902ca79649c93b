package jobs

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RunStore interface {
	Create(ctx context.Context, jobType, requestedBy, status string) (string, error)
	SetStatus(ctx context.Context, id, status string) error
	Complete(ctx context.Context, id, status string, details []byte) error
	Get(ctx context.Context, id string) (Run, error)
}

type PGRunStore struct {
	DB *pgxpool.Pool
}

func NewPGRunStore(db *pgxpool.Pool) *PGRunStore {
	return &PGRunStore{DB: db}
}

func (s *PGRunStore) Create(ctx context.Context, jobType, requestedBy, status string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, requested_by, status)
    VALUES ($1,NULLIF($2,''),$3)
    RETURNING id
  `, jobType, requestedBy, status).Scan(&id)
	return id, err
}

func (s *PGRunStore) SetStatus(ctx context.Context, id, status string) error {
	_, err := s.DB.Exec(ctx, `UPDATE job_runs SET status = $1 WHERE id = $2`, status, id)
	return err
}

func (s *PGRunStore) Complete(ctx context.Context, id, status string, details []byte) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, details, id)
	return err
}

func (s *PGRunStore) Get(ctx context.Context, id string) (Run, error) {
	var run Run
	err := s.DB.QueryRow(ctx, `
    SELECT id, job_type, COALESCE(requested_by,''), status, details_json, started_at, completed_at
    FROM job_runs
    WHERE id = $1
  `, id).Scan(&run.ID, &run.JobType, &run.RequestedBy, &run.Status, &run.Details, &run.StartedAt, &run.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}
