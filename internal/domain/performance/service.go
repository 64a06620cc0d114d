package performance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pms/internal/domain/auth"
	"pms/internal/platform/db"
)

// Notifier delivers in-app notifications. Failures are logged and never
// fail the mutation that triggered them.
type Notifier interface {
	Create(ctx context.Context, userID, ntype, title, body string) error
}

type Service struct {
	store  StoreAPI
	notify Notifier
	now    func() time.Time
}

func NewService(store StoreAPI, notify Notifier) *Service {
	return &Service{store: store, notify: notify, now: time.Now}
}

func requireSession(sess auth.Session) error {
	if !sess.Authenticated {
		return auth.ErrUnauthenticated
	}
	return nil
}

func requireManager(sess auth.Session) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if !sess.IsManager() {
		return ErrForbidden
	}
	return nil
}

// canViewEmployee lets employees see only themselves and managers see anyone.
func canViewEmployee(sess auth.Session, employeeID string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if sess.IsManager() || sess.UserID == employeeID {
		return nil
	}
	return ErrForbidden
}

func isParticipant(sess auth.Session, ref GoalRef) bool {
	return sess.UserID == ref.ManagerID || sess.UserID == ref.EmployeeID
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// loadGoal fetches a goal's ownership, mapping a miss to ErrGoalNotFound.
func (s *Service) loadGoal(ctx context.Context, goalID string) (GoalRef, error) {
	if !validID(goalID) {
		return GoalRef{}, ErrGoalNotFound
	}
	ref, err := s.store.GoalRef(ctx, goalID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return GoalRef{}, ErrGoalNotFound
		}
		return GoalRef{}, logFailure("load goal", err, "goalId", goalID)
	}
	return ref, nil
}

func (s *Service) send(ctx context.Context, userID, ntype, title, body string) {
	if s.notify == nil || userID == "" {
		return
	}
	if err := s.notify.Create(ctx, userID, ntype, title, body); err != nil {
		slog.Warn("notification failed", "userId", userID, "type", ntype, "err", err)
	}
}

func logFailure(op string, err error, attrs ...any) error {
	slog.Error(op+" failed", append(attrs, "err", err)...)
	return fmt.Errorf("%s: %w", op, err)
}
