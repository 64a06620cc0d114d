package notifications

const (
	TypeGoalCreated      = "goal_created"
	TypeTaskLogged       = "task_logged"
	TypeTaskApproved     = "task_approved"
	TypeFeedbackReceived = "feedback_received"
	TypeGoalDueSoon      = "goal_due_soon"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)
