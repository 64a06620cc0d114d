package performance

import (
	"context"
	"time"
)

type StoreAPI interface {
	UserRole(ctx context.Context, userID string) (string, error)
	Username(ctx context.Context, userID string) (string, error)
	CreateGoal(ctx context.Context, goal NewGoal) (Goal, error)
	GoalRef(ctx context.Context, goalID string) (GoalRef, error)
	GoalsByEmployee(ctx context.Context, employeeID string) ([]Goal, error)
	GoalsByManager(ctx context.Context, managerID string) ([]Goal, error)
	UpdateGoalStatus(ctx context.Context, goalID, status string) error
	UpdateGoalAndFeedback(ctx context.Context, goalID, status, managerID, content string) (*Feedback, error)
	CreateTask(ctx context.Context, goalID, title, description string) (Task, error)
	TaskGoalRef(ctx context.Context, taskID string) (GoalRef, error)
	TasksByGoal(ctx context.Context, goalID string) ([]Task, error)
	ApproveTask(ctx context.Context, taskID string) (Task, error)
	PendingApprovals(ctx context.Context, managerID string) ([]PendingTask, error)
	CreateFeedback(ctx context.Context, managerID, goalID, content string) (Feedback, error)
	FeedbackByGoal(ctx context.Context, goalID string) ([]Feedback, error)
	InsightsData(ctx context.Context) (insightsRow, error)
	HistoryGoals(ctx context.Context, employeeID string) ([]HistoryGoal, error)
	HistoryFeedback(ctx context.Context, employeeID string) ([]HistoryFeedback, error)
	GoalTaskRows(ctx context.Context, employeeID string) ([]GoalTaskRow, error)
	GoalsDueForReminder(ctx context.Context, until time.Time) ([]ReminderGoal, error)
	MarkReminded(ctx context.Context, goalID string) error
}
