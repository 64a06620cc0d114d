package performance

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"pms/internal/platform/db"
)

// InsightsData reads every aggregate inside one read-only snapshot so the
// numbers describe the same moment.
func (s *Store) InsightsData(ctx context.Context) (insightsRow, error) {
	var out insightsRow
	err := db.WithTx(ctx, s.DB, db.ReadOnlySnapshot, func(tx pgx.Tx) error {
		stats := &out.Goals
		if err := tx.QueryRow(ctx, `
      SELECT
        COUNT(*),
        COUNT(*) FILTER (WHERE status = $1),
        COUNT(*) FILTER (WHERE status = $2),
        COUNT(*) FILTER (WHERE status = $3),
        COUNT(*) FILTER (WHERE status = $4),
        AVG(due_date - created_at::date)::float8
      FROM goals
    `, StatusDraft, StatusInProgress, StatusCompleted, StatusCancelled).Scan(
			&stats.TotalGoals, &stats.DraftGoals, &stats.InProgressGoals, &stats.CompletedGoals, &stats.CancelledGoals, &stats.AvgDaysToDue,
		); err != nil {
			return db.Classify(err)
		}

		var top TopEmployee
		err := tx.QueryRow(ctx, `
      SELECT u.username, COUNT(g.goal_id)
      FROM goals g
      JOIN users u ON g.employee_id = u.user_id
      WHERE g.status = $1 AND u.role = 'employee'
      GROUP BY u.username
      ORDER BY COUNT(g.goal_id) DESC
      LIMIT 1
    `, StatusCompleted).Scan(&top.Username, &top.CompletedCount)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return db.Classify(err)
		default:
			out.Top = &top
		}

		if err := tx.QueryRow(ctx, `
      SELECT AVG(task_count)::float8
      FROM (
        SELECT goal_id, COUNT(task_id) AS task_count
        FROM tasks
        GROUP BY goal_id
      ) AS task_counts
    `).Scan(&out.AvgTasks); err != nil {
			return db.Classify(err)
		}

		if err := tx.QueryRow(ctx, "SELECT MIN(due_date), MAX(due_date) FROM goals").Scan(&out.Earliest, &out.Latest); err != nil {
			return db.Classify(err)
		}
		return nil
	})
	if err != nil {
		return insightsRow{}, err
	}
	return out, nil
}

func (s *Store) HistoryGoals(ctx context.Context, employeeID string) ([]HistoryGoal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT g.goal_id, g.title, g.description, g.due_date, g.status, u.username
    FROM goals g
    JOIN users u ON g.manager_id = u.user_id
    WHERE g.employee_id = $1
    ORDER BY g.due_date ASC
  `, employeeID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var out []HistoryGoal
	for rows.Next() {
		var g HistoryGoal
		if err := rows.Scan(&g.GoalID, &g.Title, &g.Description, &g.DueDate, &g.Status, &g.ManagerName); err != nil {
			return nil, db.Classify(err)
		}
		out = append(out, g)
	}
	return out, db.Classify(rows.Err())
}

func (s *Store) HistoryFeedback(ctx context.Context, employeeID string) ([]HistoryFeedback, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT f.feedback_id, f.content, f.created_at, g.title, u.username
    FROM feedback f
    JOIN goals g ON f.goal_id = g.goal_id
    JOIN users u ON f.manager_id = u.user_id
    WHERE g.employee_id = $1
    ORDER BY f.created_at DESC
  `, employeeID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var out []HistoryFeedback
	for rows.Next() {
		var f HistoryFeedback
		if err := rows.Scan(&f.FeedbackID, &f.Content, &f.CreatedAt, &f.GoalTitle, &f.ManagerName); err != nil {
			return nil, db.Classify(err)
		}
		out = append(out, f)
	}
	return out, db.Classify(rows.Err())
}

func (s *Store) GoalTaskRows(ctx context.Context, employeeID string) ([]GoalTaskRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT g.goal_id, g.title, g.description, g.due_date, g.status,
           t.task_id, t.title, t.description, t.is_approved
    FROM goals g
    LEFT JOIN tasks t ON g.goal_id = t.goal_id
    WHERE g.employee_id = $1
    ORDER BY g.due_date, g.goal_id, t.created_at
  `, employeeID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var out []GoalTaskRow
	for rows.Next() {
		var r GoalTaskRow
		if err := rows.Scan(&r.GoalID, &r.GoalTitle, &r.GoalDescription, &r.DueDate, &r.Status,
			&r.TaskID, &r.TaskTitle, &r.TaskDescription, &r.TaskApproved); err != nil {
			return nil, db.Classify(err)
		}
		out = append(out, r)
	}
	return out, db.Classify(rows.Err())
}
