package performance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pms/internal/domain/auth"
	"pms/internal/domain/notifications"
	"pms/internal/platform/db"
)

// CreateGoal sets a goal for an employee on behalf of the calling manager.
// An empty status means Draft.
func (s *Service) CreateGoal(ctx context.Context, sess auth.Session, employeeID, title, description string, dueDate time.Time, status string) (Goal, error) {
	if err := requireManager(sess); err != nil {
		return Goal{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Goal{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if dueDate.IsZero() {
		return Goal{}, fmt.Errorf("%w: due date is required", ErrInvalidInput)
	}
	if status == "" {
		status = StatusDraft
	}
	if !ValidStatus(status) {
		return Goal{}, ErrInvalidStatus
	}
	if !validID(employeeID) {
		return Goal{}, ErrInvalidAssignee
	}

	role, err := s.store.UserRole(ctx, employeeID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return Goal{}, ErrInvalidAssignee
		}
		return Goal{}, logFailure("load assignee", err, "employeeId", employeeID)
	}
	if role != auth.RoleEmployee {
		return Goal{}, ErrInvalidAssignee
	}

	goal, err := s.store.CreateGoal(ctx, NewGoal{
		ManagerID:   sess.UserID,
		EmployeeID:  employeeID,
		Title:       title,
		Description: strings.TrimSpace(description),
		DueDate:     dueDate,
		Status:      status,
	})
	if err != nil {
		return Goal{}, logFailure("create goal", err, "managerId", sess.UserID, "employeeId", employeeID)
	}
	s.send(ctx, employeeID, notifications.TypeGoalCreated, "New goal", fmt.Sprintf("%s set a new goal for you: %s", sess.Username, goal.Title))
	return goal, nil
}

func (s *Service) GoalsByEmployee(ctx context.Context, sess auth.Session, employeeID string) ([]Goal, error) {
	if err := canViewEmployee(sess, employeeID); err != nil {
		return nil, err
	}
	if !validID(employeeID) {
		return []Goal{}, nil
	}
	goals, err := s.store.GoalsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, logFailure("list employee goals", err, "employeeId", employeeID)
	}
	return goals, nil
}

// GoalsByManager lists the caller's team goals. Managers cannot read
// another manager's goals.
func (s *Service) GoalsByManager(ctx context.Context, sess auth.Session, managerID string) ([]Goal, error) {
	if err := requireManager(sess); err != nil {
		return nil, err
	}
	if managerID == "" {
		managerID = sess.UserID
	}
	if managerID != sess.UserID {
		return nil, ErrForbidden
	}
	goals, err := s.store.GoalsByManager(ctx, managerID)
	if err != nil {
		return nil, logFailure("list manager goals", err, "managerId", managerID)
	}
	return goals, nil
}

// UpdateGoalStatus overwrites the status. Every transition between the four
// statuses is allowed.
func (s *Service) UpdateGoalStatus(ctx context.Context, sess auth.Session, goalID, status string) error {
	if err := requireManager(sess); err != nil {
		return err
	}
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	ref, err := s.loadGoal(ctx, goalID)
	if err != nil {
		return err
	}
	if ref.ManagerID != sess.UserID {
		return ErrForbidden
	}
	if err := s.store.UpdateGoalStatus(ctx, goalID, status); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrGoalNotFound
		}
		return logFailure("update goal status", err, "goalId", goalID)
	}
	return nil
}

// UpdateGoalAndFeedback changes the status and optionally leaves feedback,
// committing both or neither.
func (s *Service) UpdateGoalAndFeedback(ctx context.Context, sess auth.Session, goalID, status, content string) (*Feedback, error) {
	if err := requireManager(sess); err != nil {
		return nil, err
	}
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	ref, err := s.loadGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if ref.ManagerID != sess.UserID {
		return nil, ErrForbidden
	}
	content = strings.TrimSpace(content)
	fb, err := s.store.UpdateGoalAndFeedback(ctx, goalID, status, sess.UserID, content)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, logFailure("update goal with feedback", err, "goalId", goalID)
	}
	if fb != nil {
		fb.ManagerName = sess.Username
		s.send(ctx, ref.EmployeeID, notifications.TypeFeedbackReceived, "New feedback", fmt.Sprintf("%s left feedback on %s", sess.Username, ref.Title))
	}
	return fb, nil
}

// CreateTask logs work against a goal. Only the goal's employee may do so.
func (s *Service) CreateTask(ctx context.Context, sess auth.Session, goalID, title, description string) (Task, error) {
	if err := requireSession(sess); err != nil {
		return Task{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	ref, err := s.loadGoal(ctx, goalID)
	if err != nil {
		return Task{}, err
	}
	if !sess.IsEmployee() || ref.EmployeeID != sess.UserID {
		return Task{}, ErrForbidden
	}
	task, err := s.store.CreateTask(ctx, goalID, title, strings.TrimSpace(description))
	if err != nil {
		if errors.Is(err, db.ErrConstraintViolation) {
			return Task{}, ErrGoalNotFound
		}
		return Task{}, logFailure("create task", err, "goalId", goalID)
	}
	s.send(ctx, ref.ManagerID, notifications.TypeTaskLogged, "Task awaiting approval", fmt.Sprintf("%s logged %q on %s", sess.Username, task.Title, ref.Title))
	return task, nil
}

func (s *Service) TasksByGoal(ctx context.Context, sess auth.Session, goalID string) ([]Task, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	ref, err := s.loadGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(sess, ref) {
		return nil, ErrForbidden
	}
	tasks, err := s.store.TasksByGoal(ctx, goalID)
	if err != nil {
		return nil, logFailure("list tasks", err, "goalId", goalID)
	}
	return tasks, nil
}

// ApproveTask marks a task approved. Approval never reverts and repeating it
// succeeds.
func (s *Service) ApproveTask(ctx context.Context, sess auth.Session, taskID string) (Task, error) {
	if err := requireManager(sess); err != nil {
		return Task{}, err
	}
	if !validID(taskID) {
		return Task{}, ErrTaskNotFound
	}
	ref, err := s.store.TaskGoalRef(ctx, taskID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return Task{}, ErrTaskNotFound
		}
		return Task{}, logFailure("load task", err, "taskId", taskID)
	}
	if ref.ManagerID != sess.UserID {
		return Task{}, ErrForbidden
	}
	task, err := s.store.ApproveTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return Task{}, ErrTaskNotFound
		}
		return Task{}, logFailure("approve task", err, "taskId", taskID)
	}
	s.send(ctx, ref.EmployeeID, notifications.TypeTaskApproved, "Task approved", fmt.Sprintf("%q on %s was approved", task.Title, ref.Title))
	return task, nil
}

func (s *Service) PendingApprovals(ctx context.Context, sess auth.Session) ([]PendingTask, error) {
	if err := requireManager(sess); err != nil {
		return nil, err
	}
	tasks, err := s.store.PendingApprovals(ctx, sess.UserID)
	if err != nil {
		return nil, logFailure("list pending approvals", err, "managerId", sess.UserID)
	}
	return tasks, nil
}

// CreateFeedback records immutable manager commentary on one of the
// manager's goals.
func (s *Service) CreateFeedback(ctx context.Context, sess auth.Session, goalID, content string) (Feedback, error) {
	if err := requireManager(sess); err != nil {
		return Feedback{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return Feedback{}, fmt.Errorf("%w: feedback content is required", ErrInvalidInput)
	}
	ref, err := s.loadGoal(ctx, goalID)
	if err != nil {
		return Feedback{}, err
	}
	if ref.ManagerID != sess.UserID {
		return Feedback{}, ErrForbidden
	}
	fb, err := s.store.CreateFeedback(ctx, sess.UserID, goalID, content)
	if err != nil {
		if errors.Is(err, db.ErrConstraintViolation) {
			return Feedback{}, ErrGoalNotFound
		}
		return Feedback{}, logFailure("create feedback", err, "goalId", goalID)
	}
	fb.ManagerName = sess.Username
	s.send(ctx, ref.EmployeeID, notifications.TypeFeedbackReceived, "New feedback", fmt.Sprintf("%s left feedback on %s", sess.Username, ref.Title))
	return fb, nil
}

// FeedbackByGoal returns feedback newest first.
func (s *Service) FeedbackByGoal(ctx context.Context, sess auth.Session, goalID string) ([]Feedback, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	ref, err := s.loadGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(sess, ref) {
		return nil, ErrForbidden
	}
	feedback, err := s.store.FeedbackByGoal(ctx, goalID)
	if err != nil {
		return nil, logFailure("list feedback", err, "goalId", goalID)
	}
	return feedback, nil
}

// Dashboard shows employees their own goals and managers their team's goals
// plus the approval backlog.
func (s *Service) Dashboard(ctx context.Context, sess auth.Session) (Dashboard, error) {
	if err := requireSession(sess); err != nil {
		return Dashboard{}, err
	}
	out := Dashboard{Role: sess.Role}
	var err error
	if sess.IsManager() {
		out.Goals, err = s.GoalsByManager(ctx, sess, sess.UserID)
		if err != nil {
			return Dashboard{}, err
		}
		pending, err := s.PendingApprovals(ctx, sess)
		if err != nil {
			return Dashboard{}, err
		}
		out.PendingApprovals = len(pending)
	} else {
		out.Goals, err = s.GoalsByEmployee(ctx, sess, sess.UserID)
		if err != nil {
			return Dashboard{}, err
		}
	}
	out.StatusCounts = countStatuses(out.Goals)
	return out, nil
}

func countStatuses(goals []Goal) map[string]int {
	counts := make(map[string]int, len(Statuses))
	for _, status := range Statuses {
		counts[status] = 0
	}
	for _, goal := range goals {
		counts[goal.Status]++
	}
	return counts
}

// SendDueReminders notifies employees about open goals due before
// now+window, once per goal.
func (s *Service) SendDueReminders(ctx context.Context, window time.Duration) (int, error) {
	goals, err := s.store.GoalsDueForReminder(ctx, s.now().Add(window))
	if err != nil {
		return 0, logFailure("list goals due soon", err)
	}
	sent := 0
	for _, goal := range goals {
		s.send(ctx, goal.EmployeeID, notifications.TypeGoalDueSoon, "Goal due soon", fmt.Sprintf("%s is due on %s", goal.Title, goal.DueDate.Format("2006-01-02")))
		if err := s.store.MarkReminded(ctx, goal.GoalID); err != nil {
			return sent, logFailure("mark goal reminded", err, "goalId", goal.GoalID)
		}
		sent++
	}
	return sent, nil
}
