package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type idRow struct {
	id  int64
	err error
}

func (r idRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.id
	return nil
}

type runLog struct {
	insertErr error
	inserted  []any
	updates   [][]any
}

func (l *runLog) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if strings.Contains(sql, "UPDATE job_runs") {
		l.updates = append(l.updates, args)
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (l *runLog) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (l *runLog) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	l.inserted = args
	return idRow{id: 7, err: l.insertErr}
}

type stubCleaner struct{ removed int64 }

func (s stubCleaner) CleanupSessions(context.Context) (int64, error) { return s.removed, nil }

type stubReminders struct {
	window time.Duration
	err    error
}

func (s *stubReminders) SendDueReminders(_ context.Context, window time.Duration) (int, error) {
	s.window = window
	return 3, s.err
}

func TestRunNowRecordsCompletedRun(t *testing.T) {
	log := &runLog{}
	svc := New(log, stubCleaner{removed: 4}, nil, Options{})

	details, err := svc.RunNow(context.Background(), JobSessionCleanup, svc.cleanupSessions)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := details.(map[string]any)["removed"]; got != int64(4) {
		t.Fatalf("expected 4 removed, got %v", got)
	}
	if log.inserted[0] != JobSessionCleanup || log.inserted[1] != statusRunning {
		t.Fatalf("unexpected insert args: %v", log.inserted)
	}
	if len(log.updates) != 1 {
		t.Fatalf("expected one update, got %d", len(log.updates))
	}
	update := log.updates[0]
	if update[0] != statusCompleted || update[2] != int64(7) {
		t.Fatalf("unexpected update args: %v", update)
	}
	var stored map[string]any
	if err := json.Unmarshal(update[1].([]byte), &stored); err != nil || stored["removed"] != float64(4) {
		t.Fatalf("unexpected details: %v %v", stored, err)
	}
}

func TestRunNowRecordsFailure(t *testing.T) {
	log := &runLog{}
	reminders := &stubReminders{err: errors.New("smtp down")}
	svc := New(log, nil, reminders, Options{ReminderWindow: 48 * time.Hour})

	_, err := svc.RunNow(context.Background(), JobDueReminders, svc.sendReminders)
	if err == nil {
		t.Fatal("expected job error")
	}
	if reminders.window != 48*time.Hour {
		t.Fatalf("expected configured window, got %s", reminders.window)
	}
	if len(log.updates) != 1 || log.updates[0][0] != statusFailed {
		t.Fatalf("expected failed status, got %v", log.updates)
	}
}

func TestRunNowSkipsUpdateWhenInsertFails(t *testing.T) {
	log := &runLog{insertErr: errors.New("relation does not exist")}
	svc := New(log, stubCleaner{}, nil, Options{})

	if _, err := svc.RunNow(context.Background(), JobSessionCleanup, svc.cleanupSessions); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(log.updates) != 0 {
		t.Fatalf("expected no update without run id, got %d", len(log.updates))
	}
}

func TestEnqueueReportsFullQueue(t *testing.T) {
	svc := New(nil, nil, nil, Options{})
	noop := func(context.Context) (any, error) { return nil, nil }
	for i := 0; i < cap(svc.queue); i++ {
		if !svc.Enqueue("noop", noop) {
			t.Fatalf("enqueue %d rejected early", i)
		}
	}
	if svc.Enqueue("noop", noop) {
		t.Fatal("expected full queue to reject")
	}
}

func TestWorkerDrainsQueue(t *testing.T) {
	svc := New(nil, nil, nil, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	done := make(chan struct{})
	svc.Enqueue("noop", func(context.Context) (any, error) {
		close(done)
		return nil, nil
	})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not run job")
	}
}
