package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

const (
	JobAttendanceImport = "attendance_import"

	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"

	queueSize = 128
)

var (
	ErrQueueFull   = errors.New("job queue full")
	ErrRunNotFound = errors.New("job run not found")
)

type Run struct {
	ID          string          `json:"id"`
	JobType     string          `json:"jobType"`
	RequestedBy string          `json:"requestedBy"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details,omitempty"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

type Func func(context.Context) (any, error)

type Service struct {
	Runs  RunStore
	queue chan job
}

type job struct {
	RunID       string
	Type        string
	RequestedBy string
	Run         Func
}

func New(runs RunStore) *Service {
	return &Service{
		Runs:  runs,
		queue: make(chan job, queueSize),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
}

// Enqueue records a queued run and hands it to the background worker. When
// the queue is full the run is marked failed and ErrQueueFull is returned.
func (s *Service) Enqueue(ctx context.Context, jobType, requestedBy string, run Func) (string, error) {
	runID, err := s.Runs.Create(ctx, jobType, requestedBy, StatusQueued)
	if err != nil {
		return "", err
	}
	select {
	case s.queue <- job{RunID: runID, Type: jobType, RequestedBy: requestedBy, Run: run}:
		return runID, nil
	default:
		slog.Warn("job queue full", "jobType", jobType, "requestedBy", requestedBy)
		s.finish(ctx, runID, map[string]string{"error": ErrQueueFull.Error()}, ErrQueueFull)
		return runID, ErrQueueFull
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, requestedBy string, run Func) (any, error) {
	runID, err := s.Runs.Create(ctx, jobType, requestedBy, StatusRunning)
	if err != nil {
		slog.Warn("job run insert failed", "jobType", jobType, "err", err)
	}
	return s.runJob(ctx, job{RunID: runID, Type: jobType, RequestedBy: requestedBy, Run: run})
}

func (s *Service) GetRun(ctx context.Context, id string) (Run, error) {
	return s.Runs.Get(ctx, id)
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if err := s.Runs.SetStatus(ctx, j.RunID, StatusRunning); err != nil {
				slog.Warn("job run update failed", "runId", j.RunID, "err", err)
			}
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "runId", j.RunID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	details, err := j.Run(ctx)
	if j.RunID != "" {
		payload := details
		if err != nil {
			payload = map[string]any{"error": err.Error(), "details": details}
		}
		s.finish(ctx, j.RunID, payload, err)
	}
	return details, err
}

func (s *Service) finish(ctx context.Context, runID string, details any, runErr error) {
	status := StatusCompleted
	if runErr != nil {
		status = StatusFailed
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if err := s.Runs.Complete(ctx, runID, status, detailsJSON); err != nil {
		slog.Warn("job run update failed", "runId", runID, "err", err)
	}
}
