package services

import (
	"errors"

	"github.com/monocle-dev/taskdeck/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccessControl gates project and task operations on ownership and
// membership. It keeps no state: every lookup goes through the handle
// it is given, normally the caller's transaction.
type AccessControl struct{}

func (AccessControl) LoadProject(tx *gorm.DB, projectID uint) (*models.Project, error) {
	var project models.Project

	if err := tx.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("Project not found")
		}
		return nil, err
	}

	return &project, nil
}

// LockProject is LoadProject holding a row lock on the project until tx
// ends, so membership changes and writes that check membership on the
// same project run one after the other. SQLite drops the clause; its
// transactions already serialise writers.
func (a AccessControl) LockProject(tx *gorm.DB, projectID uint) (*models.Project, error) {
	return a.LoadProject(tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), projectID)
}

// LoadTask returns the task together with the project it belongs to.
func (a AccessControl) LoadTask(tx *gorm.DB, taskID uint) (*models.Task, *models.Project, error) {
	return a.loadTask(tx, taskID, a.LoadProject)
}

// LockTask is LoadTask with the task's project locked as in LockProject.
func (a AccessControl) LockTask(tx *gorm.DB, taskID uint) (*models.Task, *models.Project, error) {
	return a.loadTask(tx, taskID, a.LockProject)
}

func (AccessControl) loadTask(
	tx *gorm.DB,
	taskID uint,
	loadProject func(*gorm.DB, uint) (*models.Project, error),
) (*models.Task, *models.Project, error) {
	var task models.Task

	if err := tx.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, notFoundError("Task not found")
		}
		return nil, nil, err
	}

	project, err := loadProject(tx, task.ProjectID)

	if err != nil {
		return nil, nil, err
	}

	return &task, project, nil
}

func (AccessControl) RequireOwner(project *models.Project, callerID uint) error {
	if project == nil || callerID == 0 || project.OwnerID != callerID {
		return authError("Only the project owner can do this")
	}

	return nil
}

func (a AccessControl) RequireMember(tx *gorm.DB, project *models.Project, callerID uint) error {
	if project == nil || callerID == 0 {
		return authError("Not a member of this project")
	}

	ok, err := a.IsMember(tx, project, callerID)

	if err != nil {
		return err
	}

	if !ok {
		return authError("Not a member of this project")
	}

	return nil
}

// IsMember treats the owner as a member.
func (AccessControl) IsMember(tx *gorm.DB, project *models.Project, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}

	if project.OwnerID == userID {
		return true, nil
	}

	var count int64

	err := tx.Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", project.ID, userID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// visibleProjectIDs selects the ids of every project userID owns or
// belongs to, for use as a subquery.
func visibleProjectIDs(tx *gorm.DB, userID uint) *gorm.DB {
	memberOf := tx.Model(&models.ProjectMembership{}).
		Select("project_id").
		Where("user_id = ?", userID)

	return tx.Model(&models.Project{}).
		Select("id").
		Where("owner_id = ? OR id IN (?)", userID, memberOf)
}
