package types

import "time"

type UserResponse struct {
	ID        uint      `json:"id"`
	Handle    string    `json:"handle"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ProjectResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	StartDate   string    `json:"start_date"`
	EndDate     *string   `json:"end_date"`
	OwnerID     uint      `json:"owner_id"`
	MemberIDs   []uint    `json:"member_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TaskResponse struct {
	ID                   uint              `json:"id"`
	ProjectID            uint              `json:"project_id"`
	Title                string            `json:"title"`
	Description          string            `json:"description"`
	Status               string            `json:"status"`
	Priority             string            `json:"priority"`
	DueDate              *string           `json:"due_date"`
	AssigneeID           *uint             `json:"assignee_id"`
	CreatedByID          uint              `json:"created_by_id"`
	CompletedAt          *time.Time        `json:"completed_at"`
	CompletionPercentage int               `json:"completion_percentage"`
	Subtasks             []SubtaskResponse `json:"subtasks"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

type SubtaskResponse struct {
	ID        uint      `json:"id"`
	TaskID    uint      `json:"task_id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Remember  bool         `json:"remember"`
}

type SummaryResponse struct {
	TotalProjects   int64 `json:"total_projects"`
	ActiveProjects  int64 `json:"active_projects"`
	TotalTasks      int64 `json:"total_tasks"`
	DoneTasks       int64 `json:"done_tasks"`
	InProgressTasks int64 `json:"in_progress_tasks"`
	TodoTasks       int64 `json:"todo_tasks"`
	OverdueTasks    int64 `json:"overdue_tasks"`
	AssignedToMe    int64 `json:"assigned_to_me"`
}

type ProjectSummaryResponse struct {
	Project              ProjectResponse  `json:"project"`
	TotalTasks           int64            `json:"total_tasks"`
	TasksByStatus        map[string]int64 `json:"tasks_by_status"`
	TasksByPriority      map[string]int64 `json:"tasks_by_priority"`
	OverdueTasks         int64            `json:"overdue_tasks"`
	CompletionPercentage int              `json:"completion_percentage"`
	RecentlyCompleted    []TaskResponse   `json:"recently_completed"`
}
