package performance

import (
	"context"
	"errors"
	"math"

	"golang.org/x/sync/errgroup"

	"pms/internal/domain/auth"
	"pms/internal/platform/db"
)

// BusinessInsights aggregates organisation-wide goal and task metrics. On
// any failure it returns an empty Insights so callers never render a partial
// result.
func (s *Service) BusinessInsights(ctx context.Context, sess auth.Session) (Insights, error) {
	if err := requireManager(sess); err != nil {
		return Insights{}, err
	}
	row, err := s.store.InsightsData(ctx)
	if err != nil {
		return Insights{}, logFailure("business insights", err)
	}
	return buildInsights(row), nil
}

func buildInsights(row insightsRow) Insights {
	out := Insights{
		Goals:           row.Goals,
		TopEmployee:     TopEmployee{Username: insightsPlaceholder},
		AvgTasksPerGoal: round2(row.AvgTasks),
		EarliestDueDate: row.Earliest,
		LatestDueDate:   row.Latest,
	}
	out.Goals.AvgDaysToDue = round2(row.Goals.AvgDaysToDue)
	if row.Top != nil {
		out.TopEmployee = *row.Top
	}
	return out
}

func round2(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*100) / 100
	return &r
}

// EmployeePerformanceHistory returns an employee's goals (due date order)
// and the feedback on them (newest first). The reads run concurrently.
func (s *Service) EmployeePerformanceHistory(ctx context.Context, sess auth.Session, employeeID string) (History, error) {
	if err := canViewEmployee(sess, employeeID); err != nil {
		return History{}, err
	}
	out := History{EmployeeID: employeeID, Goals: []HistoryGoal{}, Feedback: []HistoryFeedback{}}
	if !validID(employeeID) {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		name, err := s.store.Username(gctx, employeeID)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return err
		}
		out.EmployeeName = name
		return nil
	})
	g.Go(func() error {
		goals, err := s.store.HistoryGoals(gctx, employeeID)
		if err != nil {
			return err
		}
		if goals != nil {
			out.Goals = goals
		}
		return nil
	})
	g.Go(func() error {
		feedback, err := s.store.HistoryFeedback(gctx, employeeID)
		if err != nil {
			return err
		}
		if feedback != nil {
			out.Feedback = feedback
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return History{}, logFailure("performance history", err, "employeeId", employeeID)
	}
	return out, nil
}

// EmployeeGoalsAndTasks nests each goal's tasks under it, keeping goals in
// due date order and tasks in creation order.
func (s *Service) EmployeeGoalsAndTasks(ctx context.Context, sess auth.Session, employeeID string) ([]GoalWithTasks, error) {
	if err := canViewEmployee(sess, employeeID); err != nil {
		return nil, err
	}
	if !validID(employeeID) {
		return []GoalWithTasks{}, nil
	}
	rows, err := s.store.GoalTaskRows(ctx, employeeID)
	if err != nil {
		return nil, logFailure("goals and tasks", err, "employeeId", employeeID)
	}
	return groupGoalTasks(rows), nil
}

func groupGoalTasks(rows []GoalTaskRow) []GoalWithTasks {
	out := []GoalWithTasks{}
	index := map[string]int{}
	for _, row := range rows {
		i, ok := index[row.GoalID]
		if !ok {
			i = len(out)
			index[row.GoalID] = i
			out = append(out, GoalWithTasks{
				GoalID:      row.GoalID,
				Title:       row.GoalTitle,
				Description: row.GoalDescription,
				DueDate:     row.DueDate,
				Status:      row.Status,
				Tasks:       []Task{},
			})
		}
		if row.TaskID == nil {
			continue
		}
		task := Task{ID: *row.TaskID, GoalID: row.GoalID}
		if row.TaskTitle != nil {
			task.Title = *row.TaskTitle
		}
		if row.TaskDescription != nil {
			task.Description = *row.TaskDescription
		}
		if row.TaskApproved != nil {
			task.IsApproved = *row.TaskApproved
		}
		out[i].Tasks = append(out[i].Tasks, task)
	}
	return out
}
