package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"pms/internal/platform/db"
)

const (
	JobSessionCleanup = "session_cleanup"
	JobDueReminders   = "goal_due_reminders"
)

const (
	statusRunning   = "running"
	statusCompleted = "completed"
	statusFailed    = "failed"
)

type SessionCleaner interface {
	CleanupSessions(ctx context.Context) (int64, error)
}

type ReminderSender interface {
	SendDueReminders(ctx context.Context, window time.Duration) (int, error)
}

type Options struct {
	CleanupInterval  time.Duration
	ReminderInterval time.Duration
	ReminderWindow   time.Duration
}

// Service runs background maintenance. Scheduled work goes through a single
// worker so at most one job touches the database at a time.
type Service struct {
	DB        db.Querier
	Sessions  SessionCleaner
	Reminders ReminderSender
	Opts      Options
	queue     chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(conn db.Querier, sessions SessionCleaner, reminders ReminderSender, opts Options) *Service {
	return &Service{
		DB:        conn,
		Sessions:  sessions,
		Reminders: reminders,
		Opts:      opts,
		queue:     make(chan job, 32),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Opts.CleanupInterval > 0 && s.Sessions != nil {
		go s.schedule(ctx, s.Opts.CleanupInterval, JobSessionCleanup, s.cleanupSessions)
	}
	if s.Opts.ReminderInterval > 0 && s.Reminders != nil {
		go s.schedule(ctx, s.Opts.ReminderInterval, JobDueReminders, s.sendReminders)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return false
	}
}

// RunNow executes a job synchronously on the caller's goroutine.
func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) schedule(ctx context.Context, interval time.Duration, jobType string, run func(context.Context) (any, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(jobType, run)
		}
	}
}

func (s *Service) cleanupSessions(ctx context.Context) (any, error) {
	removed, err := s.Sessions.CleanupSessions(ctx)
	return map[string]any{"removed": removed}, err
}

func (s *Service) sendReminders(ctx context.Context) (any, error) {
	sent, err := s.Reminders.SendDueReminders(ctx, s.Opts.ReminderWindow)
	return map[string]any{"sent": sent, "window": s.Opts.ReminderWindow.String()}, err
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	var runID int64
	if s.DB != nil {
		if err := s.DB.QueryRow(ctx, `
      INSERT INTO job_runs (job_type, status)
      VALUES ($1, $2)
      RETURNING id
    `, j.Type, statusRunning).Scan(&runID); err != nil {
			slog.Warn("job run insert failed", "jobType", j.Type, "err", db.Classify(err))
		}
	}

	details, err := j.Run(ctx)
	status := statusCompleted
	if err != nil {
		status = statusFailed
	}
	if runID == 0 {
		return details, err
	}

	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "jobType", j.Type, "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if _, updErr := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, detailsJSON, runID); updErr != nil {
		slog.Warn("job run update failed", "jobType", j.Type, "err", db.Classify(updErr))
	}
	return details, err
}
