package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/monocle-dev/taskdeck/internal/models"
	"github.com/monocle-dev/taskdeck/internal/types"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateTaskParams struct {
	Title       string
	Description string
	// Priority defaults to medium when empty.
	Priority   string
	DueDate    *time.Time
	AssigneeID *uint
}

type UpdateTaskParams struct {
	Title         *string
	Description   *string
	Status        *string
	Priority      *string
	DueDate       *time.Time
	ClearDueDate  bool
	AssigneeID    *uint
	ClearAssignee bool
}

// TaskFilter narrows ListTasks. Zero values match everything.
type TaskFilter struct {
	Status     string
	Priority   string
	AssigneeID *uint
}

type TaskService struct {
	db     *gorm.DB
	logger zerolog.Logger
	access AccessControl
	now    func() time.Time
}

func NewTaskService(db *gorm.DB, logger zerolog.Logger) *TaskService {
	return &TaskService{
		db:     db,
		logger: logger.With().Str("service", "tasks").Logger(),
		now:    utcNow,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, callerID, projectID uint, params CreateTaskParams) (*models.Task, error) {
	var task *models.Task

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := s.access.LockProject(tx, projectID)

		if err != nil {
			return err
		}

		if err := s.access.RequireMember(tx, project, callerID); err != nil {
			return err
		}

		title, err := normalizeName(params.Title, "Title")

		if err != nil {
			return err
		}

		priority := params.Priority
		if priority == "" {
			priority = types.PriorityMedium
		}

		if !types.IsPriority(priority) {
			return validationError("Invalid priority %q", priority)
		}

		if params.AssigneeID != nil {
			if err := s.checkAssignee(tx, project, *params.AssigneeID); err != nil {
				return err
			}
		}

		task = &models.Task{
			ProjectID:   project.ID,
			Title:       title,
			Description: strings.TrimSpace(params.Description),
			Status:      types.TaskStatusTodo,
			Priority:    priority,
			AssigneeID:  params.AssigneeID,
			CreatedByID: callerID,
		}

		if params.DueDate != nil {
			due := toDate(*params.DueDate)
			task.DueDate = &due
		}

		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}

		task.Subtasks = []models.Subtask{}

		return nil
	})

	if err != nil {
		return nil, s.logFailure(err, "failed to create task", 0)
	}

	s.logger.Info().
		Uint("task_id", task.ID).
		Uint("project_id", projectID).
		Uint("user_id", callerID).
		Msg("created task")

	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, callerID, taskID uint) (*models.Task, error) {
	db := s.db.WithContext(ctx)

	task, err := s.loadAccessibleTask(db, callerID, taskID)

	if err != nil {
		return nil, err
	}

	if err := loadSubtasks(db, task); err != nil {
		return nil, err
	}

	return task, nil
}

// UpdateTask applies the given fields. Any status transition is allowed;
// CompletedAt follows the status.
func (s *TaskService) UpdateTask(ctx context.Context, callerID, taskID uint, params UpdateTaskParams) (*models.Task, error) {
	var task *models.Task

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var (
			project *models.Project
			err     error
		)

		task, project, err = s.access.LockTask(tx, taskID)

		if err != nil {
			return err
		}

		if err := s.access.RequireMember(tx, project, callerID); err != nil {
			return err
		}

		if params.Title != nil {
			if task.Title, err = normalizeName(*params.Title, "Title"); err != nil {
				return err
			}
		}

		if params.Description != nil {
			task.Description = strings.TrimSpace(*params.Description)
		}

		if params.Status != nil {
			if !types.IsTaskStatus(*params.Status) {
				return validationError("Invalid task status %q", *params.Status)
			}
			s.setStatus(task, *params.Status)
		}

		if params.Priority != nil {
			if !types.IsPriority(*params.Priority) {
				return validationError("Invalid priority %q", *params.Priority)
			}
			task.Priority = *params.Priority
		}

		switch {
		case params.ClearDueDate:
			task.DueDate = nil
		case params.DueDate != nil:
			due := toDate(*params.DueDate)
			task.DueDate = &due
		}

		switch {
		case params.ClearAssignee:
			task.AssigneeID = nil
		case params.AssigneeID != nil:
			if err := s.checkAssignee(tx, project, *params.AssigneeID); err != nil {
				return err
			}
			assignee := *params.AssigneeID
			task.AssigneeID = &assignee
		}

		if err := tx.Omit(clause.Associations).Save(task).Error; err != nil {
			return err
		}

		return loadSubtasks(tx, task)
	})

	if err != nil {
		return nil, s.logFailure(err, "failed to update task", taskID)
	}

	s.logger.Info().Uint("task_id", taskID).Msg("updated task")

	return task, nil
}

// ToggleCompletion marks an open task done and a done task back to todo.
func (s *TaskService) ToggleCompletion(ctx context.Context, callerID, taskID uint) (*models.Task, error) {
	var task *models.Task

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error

		task, err = s.loadAccessibleTask(tx, callerID, taskID)

		if err != nil {
			return err
		}

		if task.Status == types.TaskStatusDone {
			s.setStatus(task, types.TaskStatusTodo)
		} else {
			s.setStatus(task, types.TaskStatusDone)
		}

		err = tx.Model(task).Updates(map[string]any{
			"status":       task.Status,
			"completed_at": task.CompletedAt,
		}).Error

		if err != nil {
			return err
		}

		return loadSubtasks(tx, task)
	})

	if err != nil {
		return nil, s.logFailure(err, "failed to toggle task", taskID)
	}

	s.logger.Info().
		Uint("task_id", taskID).
		Str("status", task.Status).
		Msg("toggled task")

	return task, nil
}

// DeleteTask is allowed to the project owner and to the task's creator.
func (s *TaskService) DeleteTask(ctx context.Context, callerID, taskID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, project, err := s.access.LoadTask(tx, taskID)

		if err != nil {
			return err
		}

		if err := s.access.RequireMember(tx, project, callerID); err != nil {
			return err
		}

		if callerID != project.OwnerID && callerID != task.CreatedByID {
			return authError("Only the project owner or the task creator can delete this task")
		}

		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Subtask{}).Error; err != nil {
			return err
		}

		return tx.Delete(task).Error
	})

	if err != nil {
		return s.logFailure(err, "failed to delete task", taskID)
	}

	s.logger.Info().
		Uint("task_id", taskID).
		Uint("user_id", callerID).
		Msg("deleted task")

	return nil
}

// ListTasks returns the project's tasks in creation order.
func (s *TaskService) ListTasks(ctx context.Context, callerID, projectID uint, filter TaskFilter) ([]models.Task, error) {
	db := s.db.WithContext(ctx)

	project, err := s.access.LoadProject(db, projectID)

	if err != nil {
		return nil, err
	}

	if err := s.access.RequireMember(db, project, callerID); err != nil {
		return nil, err
	}

	query := db.Where("project_id = ?", project.ID)

	if filter.Status != "" {
		if !types.IsTaskStatus(filter.Status) {
			return nil, validationError("Invalid task status %q", filter.Status)
		}
		query = query.Where("status = ?", filter.Status)
	}

	if filter.Priority != "" {
		if !types.IsPriority(filter.Priority) {
			return nil, validationError("Invalid priority %q", filter.Priority)
		}
		query = query.Where("priority = ?", filter.Priority)
	}

	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}

	var tasks []models.Task

	err = query.Preload("Subtasks", orderByID).
		Order("created_at, id").
		Find(&tasks).Error

	if err != nil {
		s.logger.Error().Err(err).Uint("project_id", projectID).Msg("failed to list tasks")
		return nil, err
	}

	return tasks, nil
}

func (s *TaskService) loadAccessibleTask(tx *gorm.DB, callerID, taskID uint) (*models.Task, error) {
	task, project, err := s.access.LoadTask(tx, taskID)

	if err != nil {
		return nil, err
	}

	if err := s.access.RequireMember(tx, project, callerID); err != nil {
		return nil, err
	}

	return task, nil
}

func (s *TaskService) checkAssignee(tx *gorm.DB, project *models.Project, assigneeID uint) error {
	ok, err := s.access.IsMember(tx, project, assigneeID)

	if err != nil {
		return err
	}

	if !ok {
		return validationError("Assignee must be a member of the project")
	}

	return nil
}

func (s *TaskService) setStatus(task *models.Task, status string) {
	if status == task.Status {
		return
	}

	task.Status = status

	if status == types.TaskStatusDone {
		now := s.now()
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}
}

func (s *TaskService) logFailure(err error, msg string, taskID uint) error {
	var domainErr *Error

	if !errors.As(err, &domainErr) {
		s.logger.Error().Err(err).Uint("task_id", taskID).Msg(msg)
	}

	return err
}

func loadSubtasks(tx *gorm.DB, task *models.Task) error {
	var subtasks []models.Subtask

	if err := tx.Where("task_id = ?", task.ID).Order("id").Find(&subtasks).Error; err != nil {
		return err
	}

	task.Subtasks = subtasks

	return nil
}
