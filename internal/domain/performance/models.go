package performance

import "time"

type Goal struct {
	ID           string    `json:"id"`
	ManagerID    string    `json:"managerId"`
	EmployeeID   string    `json:"employeeId"`
	ManagerName  string    `json:"managerName,omitempty"`
	EmployeeName string    `json:"employeeName,omitempty"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	DueDate      time.Time `json:"dueDate"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

type NewGoal struct {
	ManagerID   string
	EmployeeID  string
	Title       string
	Description string
	DueDate     time.Time
	Status      string
}

// GoalRef is the ownership slice of a goal used for authorization.
type GoalRef struct {
	ID         string
	ManagerID  string
	EmployeeID string
	Title      string
	Status     string
}

type Task struct {
	ID          string    `json:"id"`
	GoalID      string    `json:"goalId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsApproved  bool      `json:"isApproved"`
	CreatedAt   time.Time `json:"createdAt"`
}

type PendingTask struct {
	Task
	GoalTitle    string `json:"goalTitle"`
	EmployeeName string `json:"employeeName"`
}

type Feedback struct {
	ID          string    `json:"id"`
	ManagerID   string    `json:"managerId"`
	GoalID      string    `json:"goalId"`
	ManagerName string    `json:"managerName,omitempty"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

type GoalStats struct {
	TotalGoals      int      `json:"totalGoals"`
	DraftGoals      int      `json:"draftGoals"`
	InProgressGoals int      `json:"inProgressGoals"`
	CompletedGoals  int      `json:"completedGoals"`
	CancelledGoals  int      `json:"cancelledGoals"`
	AvgDaysToDue    *float64 `json:"avgDaysToDue"`
}

type TopEmployee struct {
	Username       string `json:"username"`
	CompletedCount int    `json:"completedCount"`
}

type Insights struct {
	Goals           GoalStats   `json:"goals"`
	TopEmployee     TopEmployee `json:"topEmployee"`
	AvgTasksPerGoal *float64    `json:"avgTasksPerGoal"`
	EarliestDueDate *time.Time  `json:"earliestDueDate"`
	LatestDueDate   *time.Time  `json:"latestDueDate"`
}

// insightsRow is the raw aggregate read; Top is nil when nobody has
// completed a goal.
type insightsRow struct {
	Goals    GoalStats
	Top      *TopEmployee
	AvgTasks *float64
	Earliest *time.Time
	Latest   *time.Time
}

type HistoryGoal struct {
	GoalID      string    `json:"goalId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
	Status      string    `json:"status"`
	ManagerName string    `json:"managerName"`
}

type HistoryFeedback struct {
	FeedbackID  string    `json:"feedbackId"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	GoalTitle   string    `json:"goalTitle"`
	ManagerName string    `json:"managerName"`
}

type History struct {
	EmployeeID   string            `json:"employeeId"`
	EmployeeName string            `json:"employeeName"`
	Goals        []HistoryGoal     `json:"goals"`
	Feedback     []HistoryFeedback `json:"feedback"`
}

// GoalTaskRow is one row of the goals LEFT JOIN tasks read; task columns are
// nil for goals without tasks.
type GoalTaskRow struct {
	GoalID          string
	GoalTitle       string
	GoalDescription string
	DueDate         time.Time
	Status          string
	TaskID          *string
	TaskTitle       *string
	TaskDescription *string
	TaskApproved    *bool
}

type GoalWithTasks struct {
	GoalID      string    `json:"goalId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
	Status      string    `json:"status"`
	Tasks       []Task    `json:"tasks"`
}

type Dashboard struct {
	Role             string         `json:"role"`
	Goals            []Goal         `json:"goals"`
	StatusCounts     map[string]int `json:"statusCounts"`
	PendingApprovals int            `json:"pendingApprovals,omitempty"`
}

type ReminderGoal struct {
	GoalID     string
	EmployeeID string
	Title      string
	DueDate    time.Time
}
