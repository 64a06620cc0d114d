package performance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"pms/internal/platform/db"
)

type fakeUser struct {
	name string
	role string
}

type fakeStore struct {
	mu        sync.Mutex
	clock     time.Time
	users     map[string]fakeUser
	goals     map[string]*Goal
	reminded  map[string]bool
	tasks     map[string]*Task
	feedback  []Feedback
	insights  insightsRow
	failWith  error
	approvals int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clock:    time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
		users:    map[string]fakeUser{},
		goals:    map[string]*Goal{},
		reminded: map[string]bool{},
		tasks:    map[string]*Task{},
	}
}

func (f *fakeStore) addUser(name, role string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.NewString()
	f.users[id] = fakeUser{name: name, role: role}
	return id
}

func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func notFound() error {
	return &db.Error{Kind: db.ErrNotFound}
}

func (f *fakeStore) UserRole(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return "", notFound()
	}
	return u.role, nil
}

func (f *fakeStore) Username(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return "", f.failWith
	}
	u, ok := f.users[userID]
	if !ok {
		return "", notFound()
	}
	return u.name, nil
}

func (f *fakeStore) CreateGoal(_ context.Context, goal NewGoal) (Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return Goal{}, f.failWith
	}
	out := Goal{
		ID:           uuid.NewString(),
		ManagerID:    goal.ManagerID,
		EmployeeID:   goal.EmployeeID,
		ManagerName:  f.users[goal.ManagerID].name,
		EmployeeName: f.users[goal.EmployeeID].name,
		Title:        goal.Title,
		Description:  goal.Description,
		DueDate:      goal.DueDate,
		Status:       goal.Status,
		CreatedAt:    f.tick(),
	}
	f.goals[out.ID] = &out
	return out, nil
}

func (f *fakeStore) GoalRef(_ context.Context, goalID string) (GoalRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.goals[goalID]
	if !ok {
		return GoalRef{}, notFound()
	}
	return GoalRef{ID: g.ID, ManagerID: g.ManagerID, EmployeeID: g.EmployeeID, Title: g.Title, Status: g.Status}, nil
}

func (f *fakeStore) goalsWhere(match func(*Goal) bool) []Goal {
	var out []Goal
	for _, g := range f.goals {
		if match(g) {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out
}

func (f *fakeStore) GoalsByEmployee(_ context.Context, employeeID string) ([]Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.goalsWhere(func(g *Goal) bool { return g.EmployeeID == employeeID }), nil
}

func (f *fakeStore) GoalsByManager(_ context.Context, managerID string) ([]Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.goalsWhere(func(g *Goal) bool { return g.ManagerID == managerID }), nil
}

func (f *fakeStore) UpdateGoalStatus(_ context.Context, goalID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.goals[goalID]
	if !ok {
		return notFound()
	}
	g.Status = status
	return nil
}

func (f *fakeStore) UpdateGoalAndFeedback(ctx context.Context, goalID, status, managerID, content string) (*Feedback, error) {
	f.mu.Lock()
	if f.failWith != nil {
		f.mu.Unlock()
		return nil, f.failWith
	}
	f.mu.Unlock()
	if err := f.UpdateGoalStatus(ctx, goalID, status); err != nil {
		return nil, err
	}
	if content == "" {
		return nil, nil
	}
	fb, err := f.CreateFeedback(ctx, managerID, goalID, content)
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

func (f *fakeStore) CreateTask(_ context.Context, goalID, title, description string) (Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.goals[goalID]; !ok {
		return Task{}, db.Classify(&pgconn.PgError{Code: db.CodeForeignKeyViolation, ConstraintName: "tasks_goal_id_fkey"})
	}
	task := Task{ID: uuid.NewString(), GoalID: goalID, Title: title, Description: description, CreatedAt: f.tick()}
	f.tasks[task.ID] = &task
	return task, nil
}

func (f *fakeStore) TaskGoalRef(ctx context.Context, taskID string) (GoalRef, error) {
	f.mu.Lock()
	t, ok := f.tasks[taskID]
	f.mu.Unlock()
	if !ok {
		return GoalRef{}, notFound()
	}
	return f.GoalRef(ctx, t.GoalID)
}

func (f *fakeStore) TasksByGoal(_ context.Context, goalID string) ([]Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Task
	for _, t := range f.tasks {
		if t.GoalID == goalID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) ApproveTask(_ context.Context, taskID string) (Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[taskID]
	if !ok {
		return Task{}, notFound()
	}
	t.IsApproved = true
	f.approvals++
	return *t, nil
}

func (f *fakeStore) PendingApprovals(_ context.Context, managerID string) ([]PendingTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []PendingTask
	for _, t := range f.tasks {
		g := f.goals[t.GoalID]
		if g.ManagerID == managerID && !t.IsApproved {
			out = append(out, PendingTask{Task: *t, GoalTitle: g.Title, EmployeeName: f.users[g.EmployeeID].name})
		}
	}
	return out, nil
}

func (f *fakeStore) CreateFeedback(_ context.Context, managerID, goalID, content string) (Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.goals[goalID]; !ok {
		return Feedback{}, db.Classify(&pgconn.PgError{Code: db.CodeForeignKeyViolation})
	}
	fb := Feedback{ID: uuid.NewString(), ManagerID: managerID, GoalID: goalID, ManagerName: f.users[managerID].name, Content: content, CreatedAt: f.tick()}
	f.feedback = append(f.feedback, fb)
	return fb, nil
}

func (f *fakeStore) FeedbackByGoal(_ context.Context, goalID string) ([]Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Feedback
	for _, fb := range f.feedback {
		if fb.GoalID == goalID {
			out = append(out, fb)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) InsightsData(context.Context) (insightsRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return insightsRow{}, f.failWith
	}
	return f.insights, nil
}

func (f *fakeStore) HistoryGoals(_ context.Context, employeeID string) ([]HistoryGoal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []HistoryGoal
	for _, g := range f.goalsWhere(func(g *Goal) bool { return g.EmployeeID == employeeID }) {
		out = append(out, HistoryGoal{GoalID: g.ID, Title: g.Title, Description: g.Description, DueDate: g.DueDate, Status: g.Status, ManagerName: g.ManagerName})
	}
	return out, nil
}

func (f *fakeStore) HistoryFeedback(_ context.Context, employeeID string) ([]HistoryFeedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []HistoryFeedback
	for i := len(f.feedback) - 1; i >= 0; i-- {
		fb := f.feedback[i]
		g := f.goals[fb.GoalID]
		if g.EmployeeID == employeeID {
			out = append(out, HistoryFeedback{FeedbackID: fb.ID, Content: fb.Content, CreatedAt: fb.CreatedAt, GoalTitle: g.Title, ManagerName: fb.ManagerName})
		}
	}
	return out, nil
}

func (f *fakeStore) GoalTaskRows(ctx context.Context, employeeID string) ([]GoalTaskRow, error) {
	goals, _ := f.GoalsByEmployee(ctx, employeeID)
	var out []GoalTaskRow
	for _, g := range goals {
		tasks, _ := f.TasksByGoal(ctx, g.ID)
		base := GoalTaskRow{GoalID: g.ID, GoalTitle: g.Title, GoalDescription: g.Description, DueDate: g.DueDate, Status: g.Status}
		if len(tasks) == 0 {
			out = append(out, base)
			continue
		}
		for _, t := range tasks {
			row := base
			id, title, desc, approved := t.ID, t.Title, t.Description, t.IsApproved
			row.TaskID, row.TaskTitle, row.TaskDescription, row.TaskApproved = &id, &title, &desc, &approved
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeStore) GoalsDueForReminder(_ context.Context, until time.Time) ([]ReminderGoal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ReminderGoal
	for _, g := range f.goalsWhere(func(g *Goal) bool {
		open := g.Status == StatusDraft || g.Status == StatusInProgress
		return open && !f.reminded[g.ID] && !g.DueDate.After(until)
	}) {
		out = append(out, ReminderGoal{GoalID: g.ID, EmployeeID: g.EmployeeID, Title: g.Title, DueDate: g.DueDate})
	}
	return out, nil
}

func (f *fakeStore) MarkReminded(_ context.Context, goalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminded[goalID] = true
	return nil
}

type sentNotification struct {
	userID string
	ntype  string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingNotifier) Create(_ context.Context, userID, ntype, _, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{userID: userID, ntype: ntype})
	return nil
}

func (r *recordingNotifier) types(userID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.sent {
		if n.userID == userID {
			out = append(out, n.ntype)
		}
	}
	return out
}
