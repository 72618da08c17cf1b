package services

import (
	"context"
	"errors"

	"github.com/monocle-dev/taskdeck/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *TaskService) AddSubtask(ctx context.Context, callerID, taskID uint, title string) (*models.Subtask, error) {
	var subtask *models.Subtask

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := s.loadAccessibleTask(tx, callerID, taskID)

		if err != nil {
			return err
		}

		name, err := normalizeName(title, "Title")

		if err != nil {
			return err
		}

		subtask = &models.Subtask{TaskID: task.ID, Title: name}

		return tx.Omit(clause.Associations).Create(subtask).Error
	})

	if err != nil {
		return nil, s.logFailure(err, "failed to add subtask", taskID)
	}

	s.logger.Info().
		Uint("task_id", taskID).
		Uint("subtask_id", subtask.ID).
		Msg("added subtask")

	return subtask, nil
}

func (s *TaskService) ToggleSubtask(ctx context.Context, callerID, subtaskID uint) (*models.Subtask, error) {
	var subtask *models.Subtask

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error

		subtask, err = s.loadAccessibleSubtask(tx, callerID, subtaskID)

		if err != nil {
			return err
		}

		subtask.Completed = !subtask.Completed

		return tx.Model(subtask).Update("completed", subtask.Completed).Error
	})

	if err != nil {
		return nil, s.logFailure(err, "failed to toggle subtask", 0)
	}

	return subtask, nil
}

func (s *TaskService) DeleteSubtask(ctx context.Context, callerID, subtaskID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subtask, err := s.loadAccessibleSubtask(tx, callerID, subtaskID)

		if err != nil {
			return err
		}

		return tx.Delete(subtask).Error
	})

	if err != nil {
		return s.logFailure(err, "failed to delete subtask", 0)
	}

	s.logger.Info().Uint("subtask_id", subtaskID).Msg("deleted subtask")

	return nil
}

func (s *TaskService) loadAccessibleSubtask(tx *gorm.DB, callerID, subtaskID uint) (*models.Subtask, error) {
	var subtask models.Subtask

	if err := tx.First(&subtask, subtaskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("Subtask not found")
		}
		return nil, err
	}

	if _, err := s.loadAccessibleTask(tx, callerID, subtask.TaskID); err != nil {
		return nil, err
	}

	return &subtask, nil
}
