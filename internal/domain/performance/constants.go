package performance

const (
	StatusDraft      = "Draft"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
)

// Statuses lists every goal status. Any status may follow any other.
var Statuses = []string{StatusDraft, StatusInProgress, StatusCompleted, StatusCancelled}

func ValidStatus(status string) bool {
	switch status {
	case StatusDraft, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

const insightsPlaceholder = "N/A"
