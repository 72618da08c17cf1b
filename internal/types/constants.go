package types

const ContextUserKey = "user"

// Project statuses.
const (
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusArchived  = "archived"
)

// Task statuses.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// DateLayout is the wire format of project and task dates.
const DateLayout = "2006-01-02"

var (
	ProjectStatuses = []string{ProjectStatusActive, ProjectStatusCompleted, ProjectStatusArchived}
	TaskStatuses    = []string{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}
	Priorities      = []string{PriorityLow, PriorityMedium, PriorityHigh}
)

func IsProjectStatus(s string) bool { return contains(ProjectStatuses, s) }

func IsTaskStatus(s string) bool { return contains(TaskStatuses, s) }

func IsPriority(s string) bool { return contains(Priorities, s) }

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
