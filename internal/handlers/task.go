package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskdeck/internal/services"
	"github.com/monocle-dev/taskdeck/internal/types"
	"github.com/monocle-dev/taskdeck/internal/utils"
)

type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
	AssigneeID  *uint   `json:"assignee_id"`
}

type UpdateTaskRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Status        *string `json:"status"`
	Priority      *string `json:"priority"`
	DueDate       *string `json:"due_date"`
	ClearDueDate  bool    `json:"clear_due_date"`
	AssigneeID    *uint   `json:"assignee_id"`
	ClearAssignee bool    `json:"clear_assignee"`
}

type CreateSubtaskRequest struct {
	Title string `json:"title" binding:"required"`
}

func (h *Handler) CreateTask(ctx *gin.Context) {
	userID, projectID, ok := userAndProject(ctx)
	if !ok {
		return
	}

	var body CreateTaskRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		abortInvalidRequest(ctx)
		return
	}

	params := services.CreateTaskParams{
		Title:       body.Title,
		Description: body.Description,
		Priority:    body.Priority,
		AssigneeID:  body.AssigneeID,
	}

	if body.DueDate != nil {
		due, ok := parseDateField(ctx, *body.DueDate, "due_date")
		if !ok {
			return
		}
		params.DueDate = &due
	}

	task, err := h.tasks.CreateTask(ctx.Request.Context(), userID, projectID, params)

	if err != nil {
		h.respondError(ctx, err, "failed to create task")
		return
	}

	ctx.JSON(http.StatusCreated, newTaskResponse(task))
}

func (h *Handler) ListTasks(ctx *gin.Context) {
	userID, projectID, ok := userAndProject(ctx)
	if !ok {
		return
	}

	filter := services.TaskFilter{
		Status:   ctx.Query("status"),
		Priority: ctx.Query("priority"),
	}

	if raw := ctx.Query("assignee_id"); raw != "" {
		assigneeID, err := utils.ParseID(raw)
		if err != nil {
			abort(ctx, http.StatusBadRequest, "Invalid assignee_id")
			return
		}
		filter.AssigneeID = &assigneeID
	}

	tasks, err := h.tasks.ListTasks(ctx.Request.Context(), userID, projectID, filter)

	if err != nil {
		h.respondError(ctx, err, "failed to retrieve tasks")
		return
	}

	response := make([]types.TaskResponse, 0, len(tasks))

	for i := range tasks {
		response = append(response, newTaskResponse(&tasks[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) GetTask(ctx *gin.Context) {
	userID, taskID, ok := userAndTask(ctx)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(ctx.Request.Context(), userID, taskID)

	if err != nil {
		h.respondError(ctx, err, "failed to retrieve task")
		return
	}

	ctx.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *Handler) UpdateTask(ctx *gin.Context) {
	userID, taskID, ok := userAndTask(ctx)
	if !ok {
		return
	}

	var body UpdateTaskRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		abortInvalidRequest(ctx)
		return
	}

	params := services.UpdateTaskParams{
		Title:         body.Title,
		Description:   body.Description,
		Status:        body.Status,
		Priority:      body.Priority,
		ClearDueDate:  body.ClearDueDate,
		AssigneeID:    body.AssigneeID,
		ClearAssignee: body.ClearAssignee,
	}

	if body.DueDate != nil {
		due, ok := parseDateField(ctx, *body.DueDate, "due_date")
		if !ok {
			return
		}
		params.DueDate = &due
	}

	task, err := h.tasks.UpdateTask(ctx.Request.Context(), userID, taskID, params)

	if err != nil {
		h.respondError(ctx, err, "failed to update task")
		return
	}

	ctx.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *Handler) ToggleTask(ctx *gin.Context) {
	userID, taskID, ok := userAndTask(ctx)
	if !ok {
		return
	}

	task, err := h.tasks.ToggleCompletion(ctx.Request.Context(), userID, taskID)

	if err != nil {
		h.respondError(ctx, err, "failed to toggle task")
		return
	}

	ctx.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *Handler) DeleteTask(ctx *gin.Context) {
	userID, taskID, ok := userAndTask(ctx)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(ctx.Request.Context(), userID, taskID); err != nil {
		h.respondError(ctx, err, "failed to delete task")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *Handler) CreateSubtask(ctx *gin.Context) {
	userID, taskID, ok := userAndTask(ctx)
	if !ok {
		return
	}

	var body CreateSubtaskRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		abortInvalidRequest(ctx)
		return
	}

	subtask, err := h.tasks.AddSubtask(ctx.Request.Context(), userID, taskID, body.Title)

	if err != nil {
		h.respondError(ctx, err, "failed to create subtask")
		return
	}

	ctx.JSON(http.StatusCreated, newSubtaskResponse(subtask))
}

func (h *Handler) ToggleSubtask(ctx *gin.Context) {
	userID, subtaskID, ok := userAndSubtask(ctx)
	if !ok {
		return
	}

	subtask, err := h.tasks.ToggleSubtask(ctx.Request.Context(), userID, subtaskID)

	if err != nil {
		h.respondError(ctx, err, "failed to toggle subtask")
		return
	}

	ctx.JSON(http.StatusOK, newSubtaskResponse(subtask))
}

func (h *Handler) DeleteSubtask(ctx *gin.Context) {
	userID, subtaskID, ok := userAndSubtask(ctx)
	if !ok {
		return
	}

	if err := h.tasks.DeleteSubtask(ctx.Request.Context(), userID, subtaskID); err != nil {
		h.respondError(ctx, err, "failed to delete subtask")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func userAndTask(ctx *gin.Context) (uint, uint, bool) {
	return userAndParam(ctx, utils.GetTaskID)
}

func userAndSubtask(ctx *gin.Context) (uint, uint, bool) {
	return userAndParam(ctx, utils.GetSubtaskID)
}

func userAndParam(ctx *gin.Context, param func(*gin.Context) (uint, error)) (uint, uint, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		abortUnauthenticated(ctx)
		return 0, 0, false
	}

	id, err := param(ctx)

	if err != nil {
		abort(ctx, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}

	return userID, id, true
}
