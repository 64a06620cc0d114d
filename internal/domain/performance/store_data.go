package performance

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"pms/internal/platform/db"
)

const goalColumns = `
    g.goal_id, g.manager_id, g.employee_id, m.username, e.username,
    g.title, g.description, g.due_date, g.status, g.created_at
`

func scanGoals(rows pgx.Rows) ([]Goal, error) {
	defer rows.Close()
	var goals []Goal
	for rows.Next() {
		var goal Goal
		if err := rows.Scan(&goal.ID, &goal.ManagerID, &goal.EmployeeID, &goal.ManagerName, &goal.EmployeeName,
			&goal.Title, &goal.Description, &goal.DueDate, &goal.Status, &goal.CreatedAt); err != nil {
			return nil, db.Classify(err)
		}
		goals = append(goals, goal)
	}
	return goals, db.Classify(rows.Err())
}

func (s *Store) UserRole(ctx context.Context, userID string) (string, error) {
	var role string
	if err := s.DB.QueryRow(ctx, "SELECT role FROM users WHERE user_id = $1", userID).Scan(&role); err != nil {
		return "", db.Classify(err)
	}
	return role, nil
}

func (s *Store) Username(ctx context.Context, userID string) (string, error) {
	var name string
	if err := s.DB.QueryRow(ctx, "SELECT username FROM users WHERE user_id = $1", userID).Scan(&name); err != nil {
		return "", db.Classify(err)
	}
	return name, nil
}

func (s *Store) CreateGoal(ctx context.Context, goal NewGoal) (Goal, error) {
	out := Goal{
		ManagerID:   goal.ManagerID,
		EmployeeID:  goal.EmployeeID,
		Title:       goal.Title,
		Description: goal.Description,
		DueDate:     goal.DueDate,
		Status:      goal.Status,
	}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO goals (manager_id, employee_id, title, description, due_date, status)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING goal_id, created_at
  `, goal.ManagerID, goal.EmployeeID, goal.Title, goal.Description, goal.DueDate, goal.Status).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return Goal{}, db.Classify(err)
	}
	return out, nil
}

func (s *Store) GoalRef(ctx context.Context, goalID string) (GoalRef, error) {
	ref := GoalRef{ID: goalID}
	err := s.DB.QueryRow(ctx, `
    SELECT manager_id, employee_id, title, status
    FROM goals
    WHERE goal_id = $1
  `, goalID).Scan(&ref.ManagerID, &ref.EmployeeID, &ref.Title, &ref.Status)
	if err != nil {
		return GoalRef{}, db.Classify(err)
	}
	return ref, nil
}

func (s *Store) GoalsByEmployee(ctx context.Context, employeeID string) ([]Goal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+goalColumns+`
    FROM goals g
    JOIN users m ON g.manager_id = m.user_id
    JOIN users e ON g.employee_id = e.user_id
    WHERE g.employee_id = $1
    ORDER BY g.due_date ASC
  `, employeeID)
	if err != nil {
		return nil, db.Classify(err)
	}
	return scanGoals(rows)
}

func (s *Store) GoalsByManager(ctx context.Context, managerID string) ([]Goal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+goalColumns+`
    FROM goals g
    JOIN users m ON g.manager_id = m.user_id
    JOIN users e ON g.employee_id = e.user_id
    WHERE g.manager_id = $1
    ORDER BY g.due_date ASC
  `, managerID)
	if err != nil {
		return nil, db.Classify(err)
	}
	return scanGoals(rows)
}

func (s *Store) UpdateGoalStatus(ctx context.Context, goalID, status string) error {
	return updateGoalStatus(ctx, s.DB, goalID, status)
}

func updateGoalStatus(ctx context.Context, q db.Querier, goalID, status string) error {
	tag, err := q.Exec(ctx, "UPDATE goals SET status = $1 WHERE goal_id = $2", status, goalID)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return &db.Error{Kind: db.ErrNotFound}
	}
	return nil
}

// UpdateGoalAndFeedback applies a status change and, when content is set,
// records feedback in the same transaction.
func (s *Store) UpdateGoalAndFeedback(ctx context.Context, goalID, status, managerID, content string) (*Feedback, error) {
	var created *Feedback
	err := db.WithTx(ctx, s.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := updateGoalStatus(ctx, tx, goalID, status); err != nil {
			return err
		}
		if content == "" {
			return nil
		}
		fb, err := createFeedback(ctx, tx, managerID, goalID, content)
		if err != nil {
			return err
		}
		created = &fb
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) CreateTask(ctx context.Context, goalID, title, description string) (Task, error) {
	task := Task{GoalID: goalID, Title: title, Description: description}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO tasks (goal_id, title, description)
    VALUES ($1,$2,$3)
    RETURNING task_id, is_approved, created_at
  `, goalID, title, description).Scan(&task.ID, &task.IsApproved, &task.CreatedAt)
	if err != nil {
		return Task{}, db.Classify(err)
	}
	return task, nil
}

func (s *Store) TaskGoalRef(ctx context.Context, taskID string) (GoalRef, error) {
	var ref GoalRef
	err := s.DB.QueryRow(ctx, `
    SELECT g.goal_id, g.manager_id, g.employee_id, g.title, g.status
    FROM tasks t
    JOIN goals g ON t.goal_id = g.goal_id
    WHERE t.task_id = $1
  `, taskID).Scan(&ref.ID, &ref.ManagerID, &ref.EmployeeID, &ref.Title, &ref.Status)
	if err != nil {
		return GoalRef{}, db.Classify(err)
	}
	return ref, nil
}

func (s *Store) TasksByGoal(ctx context.Context, goalID string) ([]Task, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT task_id, goal_id, title, description, is_approved, created_at
    FROM tasks
    WHERE goal_id = $1
    ORDER BY created_at ASC
  `, goalID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var task Task
		if err := rows.Scan(&task.ID, &task.GoalID, &task.Title, &task.Description, &task.IsApproved, &task.CreatedAt); err != nil {
			return nil, db.Classify(err)
		}
		tasks = append(tasks, task)
	}
	return tasks, db.Classify(rows.Err())
}

// ApproveTask only ever sets the flag; approving twice is a no-op.
func (s *Store) ApproveTask(ctx context.Context, taskID string) (Task, error) {
	var task Task
	err := s.DB.QueryRow(ctx, `
    UPDATE tasks SET is_approved = true
    WHERE task_id = $1
    RETURNING task_id, goal_id, title, description, is_approved, created_at
  `, taskID).Scan(&task.ID, &task.GoalID, &task.Title, &task.Description, &task.IsApproved, &task.CreatedAt)
	if err != nil {
		return Task{}, db.Classify(err)
	}
	return task, nil
}

func (s *Store) PendingApprovals(ctx context.Context, managerID string) ([]PendingTask, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT t.task_id, t.goal_id, t.title, t.description, t.is_approved, t.created_at, g.title, e.username
    FROM tasks t
    JOIN goals g ON t.goal_id = g.goal_id
    JOIN users e ON g.employee_id = e.user_id
    WHERE g.manager_id = $1 AND t.is_approved = false
    ORDER BY t.created_at ASC
  `, managerID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var out []PendingTask
	for rows.Next() {
		var p PendingTask
		if err := rows.Scan(&p.ID, &p.GoalID, &p.Title, &p.Description, &p.IsApproved, &p.CreatedAt, &p.GoalTitle, &p.EmployeeName); err != nil {
			return nil, db.Classify(err)
		}
		out = append(out, p)
	}
	return out, db.Classify(rows.Err())
}

func (s *Store) CreateFeedback(ctx context.Context, managerID, goalID, content string) (Feedback, error) {
	return createFeedback(ctx, s.DB, managerID, goalID, content)
}

func createFeedback(ctx context.Context, q db.Querier, managerID, goalID, content string) (Feedback, error) {
	fb := Feedback{ManagerID: managerID, GoalID: goalID, Content: content}
	err := q.QueryRow(ctx, `
    INSERT INTO feedback (manager_id, goal_id, content)
    VALUES ($1,$2,$3)
    RETURNING feedback_id, created_at
  `, managerID, goalID, content).Scan(&fb.ID, &fb.CreatedAt)
	if err != nil {
		return Feedback{}, db.Classify(err)
	}
	return fb, nil
}

func (s *Store) FeedbackByGoal(ctx context.Context, goalID string) ([]Feedback, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT f.feedback_id, f.manager_id, f.goal_id, u.username, f.content, f.created_at
    FROM feedback f
    JOIN users u ON f.manager_id = u.user_id
    WHERE f.goal_id = $1
    ORDER BY f.created_at DESC
  `, goalID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var out []Feedback
	for rows.Next() {
		var fb Feedback
		if err := rows.Scan(&fb.ID, &fb.ManagerID, &fb.GoalID, &fb.ManagerName, &fb.Content, &fb.CreatedAt); err != nil {
			return nil, db.Classify(err)
		}
		out = append(out, fb)
	}
	return out, db.Classify(rows.Err())
}

func (s *Store) GoalsDueForReminder(ctx context.Context, until time.Time) ([]ReminderGoal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT goal_id, employee_id, title, due_date
    FROM goals
    WHERE status IN ($1, $2)
      AND reminded_at IS NULL
      AND due_date >= current_date
      AND due_date <= $3::date
    ORDER BY due_date ASC
  `, StatusDraft, StatusInProgress, until)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var out []ReminderGoal
	for rows.Next() {
		var g ReminderGoal
		if err := rows.Scan(&g.GoalID, &g.EmployeeID, &g.Title, &g.DueDate); err != nil {
			return nil, db.Classify(err)
		}
		out = append(out, g)
	}
	return out, db.Classify(rows.Err())
}

func (s *Store) MarkReminded(ctx context.Context, goalID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE goals SET reminded_at = now() WHERE goal_id = $1", goalID)
	return db.Classify(err)
}
