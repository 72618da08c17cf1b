package handlers

import (
	"time"

	"github.com/monocle-dev/taskdeck/internal/models"
	"github.com/monocle-dev/taskdeck/internal/services"
	"github.com/monocle-dev/taskdeck/internal/types"
	"gorm.io/datatypes"
)

func newUserResponse(user *models.User) types.UserResponse {
	response := types.UserResponse{
		ID:        user.ID,
		Handle:    user.Handle,
		CreatedAt: user.CreatedAt,
	}

	if user.Email != nil {
		response.Email = *user.Email
	}

	return response
}

// newMemberResponse leaves out the email of other users.
func newMemberResponse(user *models.User) types.UserResponse {
	return types.UserResponse{
		ID:        user.ID,
		Handle:    user.Handle,
		CreatedAt: user.CreatedAt,
	}
}

func newProjectResponse(project *models.Project) types.ProjectResponse {
	return types.ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		StartDate:   formatDate(project.StartDate),
		EndDate:     formatOptionalDate(project.EndDate),
		OwnerID:     project.OwnerID,
		MemberIDs:   project.MemberIDs(),
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

func newTaskResponse(task *models.Task) types.TaskResponse {
	subtasks := make([]types.SubtaskResponse, 0, len(task.Subtasks))
	for i := range task.Subtasks {
		subtasks = append(subtasks, newSubtaskResponse(&task.Subtasks[i]))
	}

	return types.TaskResponse{
		ID:                   task.ID,
		ProjectID:            task.ProjectID,
		Title:                task.Title,
		Description:          task.Description,
		Status:               task.Status,
		Priority:             task.Priority,
		DueDate:              formatOptionalDate(task.DueDate),
		AssigneeID:           task.AssigneeID,
		CreatedByID:          task.CreatedByID,
		CompletedAt:          task.CompletedAt,
		CompletionPercentage: task.CompletionPercentage(),
		Subtasks:             subtasks,
		CreatedAt:            task.CreatedAt,
		UpdatedAt:            task.UpdatedAt,
	}
}

func newSubtaskResponse(subtask *models.Subtask) types.SubtaskResponse {
	return types.SubtaskResponse{
		ID:        subtask.ID,
		TaskID:    subtask.TaskID,
		Title:     subtask.Title,
		Completed: subtask.Completed,
		CreatedAt: subtask.CreatedAt,
	}
}

func newSummaryResponse(summary *services.Summary) types.SummaryResponse {
	return types.SummaryResponse{
		TotalProjects:   summary.TotalProjects,
		ActiveProjects:  summary.ActiveProjects,
		TotalTasks:      summary.TotalTasks,
		DoneTasks:       summary.DoneTasks,
		InProgressTasks: summary.InProgressTasks,
		TodoTasks:       summary.TodoTasks,
		OverdueTasks:    summary.OverdueTasks,
		AssignedToMe:    summary.AssignedOpen,
	}
}

func newProjectSummaryResponse(summary *services.ProjectSummary) types.ProjectSummaryResponse {
	recent := make([]types.TaskResponse, 0, len(summary.RecentlyCompleted))
	for i := range summary.RecentlyCompleted {
		recent = append(recent, newTaskResponse(&summary.RecentlyCompleted[i]))
	}

	return types.ProjectSummaryResponse{
		Project:              newProjectResponse(summary.Project),
		TotalTasks:           summary.TotalTasks,
		TasksByStatus:        summary.ByStatus,
		TasksByPriority:      summary.ByPriority,
		OverdueTasks:         summary.OverdueTasks,
		CompletionPercentage: summary.CompletionPercentage,
		RecentlyCompleted:    recent,
	}
}

func formatDate(d datatypes.Date) string {
	return time.Time(d).Format(types.DateLayout)
}

func formatOptionalDate(d *datatypes.Date) *string {
	if d == nil {
		return nil
	}

	formatted := formatDate(*d)
	return &formatted
}
