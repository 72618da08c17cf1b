package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/monocle-dev/taskdeck/internal/models"
	"github.com/monocle-dev/taskdeck/internal/types"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const MaxNameLength = 200

type CreateProjectParams struct {
	Name        string
	Description string
	// StartDate defaults to today when zero.
	StartDate time.Time
	EndDate   *time.Time
}

// UpdateProjectParams holds optional changes; nil fields stay as they are.
type UpdateProjectParams struct {
	Name         *string
	Description  *string
	Status       *string
	StartDate    *time.Time
	EndDate      *time.Time
	ClearEndDate bool
}

type ProjectService struct {
	db     *gorm.DB
	logger zerolog.Logger
	access AccessControl
	now    func() time.Time
}

func NewProjectService(db *gorm.DB, logger zerolog.Logger) *ProjectService {
	return &ProjectService{
		db:     db,
		logger: logger.With().Str("service", "projects").Logger(),
		now:    utcNow,
	}
}

func (s *ProjectService) CreateProject(ctx context.Context, ownerID uint, params CreateProjectParams) (*models.Project, error) {
	if err := requireCaller(ownerID); err != nil {
		return nil, err
	}

	name, err := normalizeName(params.Name, "Project name")

	if err != nil {
		return nil, err
	}

	start := params.StartDate
	if start.IsZero() {
		start = s.now()
	}

	project := models.Project{
		Name:        name,
		Description: strings.TrimSpace(params.Description),
		Status:      types.ProjectStatusActive,
		StartDate:   toDate(start),
		OwnerID:     ownerID,
	}

	if params.EndDate != nil {
		end := toDate(*params.EndDate)
		project.EndDate = &end
	}

	if err := checkDateRange(project.StartDate, project.EndDate); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&project).Error; err != nil {
		s.logger.Error().Err(err).Uint("owner_id", ownerID).Msg("failed to create project")
		return nil, err
	}

	project.ProjectMemberships = []models.ProjectMembership{}

	s.logger.Info().
		Uint("project_id", project.ID).
		Uint("owner_id", ownerID).
		Msg("created project")

	return &project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, callerID, projectID uint) (*models.Project, error) {
	db := s.db.WithContext(ctx)

	project, err := s.access.LoadProject(db, projectID)

	if err != nil {
		return nil, err
	}

	if err := s.access.RequireMember(db, project, callerID); err != nil {
		return nil, err
	}

	if err := loadMemberships(db, project); err != nil {
		return nil, err
	}

	return project, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, callerID, projectID uint, params UpdateProjectParams) (*models.Project, error) {
	var project *models.Project

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error

		project, err = s.access.LockProject(tx, projectID)

		if err != nil {
			return err
		}

		if err := s.access.RequireOwner(project, callerID); err != nil {
			return err
		}

		if params.Name != nil {
			if project.Name, err = normalizeName(*params.Name, "Project name"); err != nil {
				return err
			}
		}

		if params.Description != nil {
			project.Description = strings.TrimSpace(*params.Description)
		}

		if params.Status != nil {
			if !types.IsProjectStatus(*params.Status) {
				return validationError("Invalid project status %q", *params.Status)
			}
			project.Status = *params.Status
		}

		if params.StartDate != nil {
			project.StartDate = toDate(*params.StartDate)
		}

		switch {
		case params.ClearEndDate:
			project.EndDate = nil
		case params.EndDate != nil:
			end := toDate(*params.EndDate)
			project.EndDate = &end
		}

		if err := checkDateRange(project.StartDate, project.EndDate); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(project).Error; err != nil {
			return err
		}

		return loadMemberships(tx, project)
	})

	if err != nil {
		return nil, s.logFailure(err, "failed to update project", projectID)
	}

	s.logger.Info().Uint("project_id", projectID).Msg("updated project")

	return project, nil
}

// DeleteProject removes the project with its subtasks, tasks and
// membership rows in one transaction.
func (s *ProjectService) DeleteProject(ctx context.Context, callerID, projectID uint) error {
	var removedTasks int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := s.access.LockProject(tx, projectID)

		if err != nil {
			return err
		}

		if err := s.access.RequireOwner(project, callerID); err != nil {
			return err
		}

		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", project.ID)

		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Subtask{}).Error; err != nil {
			return err
		}

		result := tx.Where("project_id = ?", project.ID).Delete(&models.Task{})

		if result.Error != nil {
			return result.Error
		}

		removedTasks = result.RowsAffected

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}

		return tx.Delete(project).Error
	})

	if err != nil {
		return s.logFailure(err, "failed to delete project", projectID)
	}

	s.logger.Info().
		Uint("project_id", projectID).
		Int64("removed_tasks", removedTasks).
		Msg("deleted project")

	return nil
}

func (s *ProjectService) AddMember(ctx context.Context, callerID, projectID, userID uint) (*models.Project, error) {
	var project *models.Project

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error

		project, err = s.access.LockProject(tx, projectID)

		if err != nil {
			return err
		}

		if err := s.access.RequireOwner(project, callerID); err != nil {
			return err
		}

		var user models.User

		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("User not found")
			}
			return err
		}

		isMember, err := s.access.IsMember(tx, project, user.ID)

		if err != nil {
			return err
		}

		if isMember {
			return validationError("User is already a member of this project")
		}

		membership := models.ProjectMembership{UserID: user.ID, ProjectID: project.ID}

		if err := tx.Omit(clause.Associations).Create(&membership).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return validationError("User is already a member of this project")
			}
			return err
		}

		return loadMemberships(tx, project)
	})

	if err != nil {
		return nil, s.logFailure(err, "failed to add member", projectID)
	}

	s.logger.Info().
		Uint("project_id", projectID).
		Uint("user_id", userID).
		Msg("added member")

	return project, nil
}

// RemoveMember drops the membership and, in the same transaction,
// unassigns the user from every task of the project.
func (s *ProjectService) RemoveMember(ctx context.Context, callerID, projectID, userID uint) error {
	var unassigned int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := s.access.LockProject(tx, projectID)

		if err != nil {
			return err
		}

		if err := s.access.RequireOwner(project, callerID); err != nil {
			return err
		}

		if userID == project.OwnerID {
			return validationError("The project owner cannot be removed")
		}

		result := tx.Where("project_id = ? AND user_id = ?", project.ID, userID).
			Delete(&models.ProjectMembership{})

		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return notFoundError("User is not a member of this project")
		}

		result = tx.Model(&models.Task{}).
			Where("project_id = ? AND assignee_id = ?", project.ID, userID).
			Update("assignee_id", nil)
		unassigned = result.RowsAffected

		return result.Error
	})

	if err != nil {
		return s.logFailure(err, "failed to remove member", projectID)
	}

	s.logger.Info().
		Uint("project_id", projectID).
		Uint("user_id", userID).
		Int64("unassigned_tasks", unassigned).
		Msg("removed member")

	return nil
}

// ListMembers returns the owner first, then members in the order they joined.
func (s *ProjectService) ListMembers(ctx context.Context, callerID, projectID uint) ([]models.User, error) {
	db := s.db.WithContext(ctx)

	project, err := s.access.LoadProject(db, projectID)

	if err != nil {
		return nil, err
	}

	if err := s.access.RequireMember(db, project, callerID); err != nil {
		return nil, err
	}

	var owner models.User

	if err := db.First(&owner, project.OwnerID).Error; err != nil {
		return nil, err
	}

	var members []models.User

	err = db.Joins("JOIN project_memberships ON project_memberships.user_id = users.id").
		Where("project_memberships.project_id = ?", project.ID).
		Order("project_memberships.id").
		Find(&members).Error

	if err != nil {
		return nil, err
	}

	return append([]models.User{owner}, members...), nil
}

// TransferOwnership hands the project to an existing member. The
// previous owner stays on as a member.
func (s *ProjectService) TransferOwnership(ctx context.Context, callerID, projectID, newOwnerID uint) (*models.Project, error) {
	var project *models.Project

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error

		project, err = s.access.LockProject(tx, projectID)

		if err != nil {
			return err
		}

		if err := s.access.RequireOwner(project, callerID); err != nil {
			return err
		}

		if newOwnerID == project.OwnerID {
			return validationError("User already owns this project")
		}

		result := tx.Where("project_id = ? AND user_id = ?", project.ID, newOwnerID).
			Delete(&models.ProjectMembership{})

		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return validationError("The new owner must be a member of the project")
		}

		previous := models.ProjectMembership{UserID: project.OwnerID, ProjectID: project.ID}

		if err := tx.Omit(clause.Associations).Create(&previous).Error; err != nil {
			return err
		}

		project.OwnerID = newOwnerID

		if err := tx.Model(project).Update("owner_id", newOwnerID).Error; err != nil {
			return err
		}

		return loadMemberships(tx, project)
	})

	if err != nil {
		return nil, s.logFailure(err, "failed to transfer ownership", projectID)
	}

	s.logger.Info().
		Uint("project_id", projectID).
		Uint("previous_owner_id", callerID).
		Uint("owner_id", newOwnerID).
		Msg("transferred ownership")

	return project, nil
}

// ListProjects returns every project the caller owns or belongs to,
// newest first.
func (s *ProjectService) ListProjects(ctx context.Context, callerID uint) ([]models.Project, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var projects []models.Project

	err := db.Where("id IN (?)", visibleProjectIDs(db, callerID)).
		Preload("ProjectMemberships", orderByID).
		Order("created_at DESC, id DESC").
		Find(&projects).Error

	if err != nil {
		s.logger.Error().Err(err).Uint("user_id", callerID).Msg("failed to list projects")
		return nil, err
	}

	return projects, nil
}

// logFailure logs unexpected errors; domain errors pass through quietly.
func (s *ProjectService) logFailure(err error, msg string, projectID uint) error {
	var domainErr *Error

	if !errors.As(err, &domainErr) {
		s.logger.Error().Err(err).Uint("project_id", projectID).Msg(msg)
	}

	return err
}

func loadMemberships(tx *gorm.DB, project *models.Project) error {
	var memberships []models.ProjectMembership

	if err := tx.Where("project_id = ?", project.ID).Order("id").Find(&memberships).Error; err != nil {
		return err
	}

	project.ProjectMemberships = memberships

	return nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func requireCaller(callerID uint) error {
	if callerID == 0 {
		return authError("User not authenticated")
	}

	return nil
}

func normalizeName(name, field string) (string, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return "", validationError("%s is required", field)
	}

	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", validationError("%s must be at most %d characters", field, MaxNameLength)
	}

	return name, nil
}

// toDate truncates t to its UTC calendar day.
func toDate(t time.Time) datatypes.Date {
	y, m, d := t.UTC().Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func checkDateRange(start datatypes.Date, end *datatypes.Date) error {
	if end != nil && time.Time(*end).Before(time.Time(start)) {
		return validationError("End date cannot be before start date")
	}

	return nil
}
