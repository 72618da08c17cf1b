package services

import (
	"context"
	"time"

	"github.com/monocle-dev/taskdeck/internal/models"
	"github.com/monocle-dev/taskdeck/internal/types"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	recentWindow = 7 * 24 * time.Hour
	recentLimit  = 10
)

// Summary aggregates every project the caller owns or belongs to.
type Summary struct {
	TotalProjects   int64
	ActiveProjects  int64
	TotalTasks      int64
	DoneTasks       int64
	InProgressTasks int64
	TodoTasks       int64
	// OverdueTasks counts open tasks whose due date is before today.
	OverdueTasks int64
	AssignedOpen int64
}

type ProjectSummary struct {
	Project              *models.Project
	TotalTasks           int64
	ByStatus             map[string]int64
	ByPriority           map[string]int64
	OverdueTasks         int64
	CompletionPercentage int
	// RecentlyCompleted holds tasks finished in the last week, newest first.
	RecentlyCompleted []models.Task
}

type DashboardService struct {
	db     *gorm.DB
	logger zerolog.Logger
	access AccessControl
	now    func() time.Time
}

func NewDashboardService(db *gorm.DB, logger zerolog.Logger) *DashboardService {
	return &DashboardService{
		db:     db,
		logger: logger.With().Str("service", "dashboard").Logger(),
		now:    utcNow,
	}
}

type countRow struct {
	Label string
	Total int64
}

// GetSummary is recomputed on every call.
func (s *DashboardService) GetSummary(ctx context.Context, callerID uint) (*Summary, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	summary := &Summary{}

	visible := func() *gorm.DB { return visibleProjectIDs(db, callerID) }
	tasks := func() *gorm.DB {
		return db.Model(&models.Task{}).Where("project_id IN (?)", visible())
	}

	if err := db.Model(&models.Project{}).Where("id IN (?)", visible()).Count(&summary.TotalProjects).Error; err != nil {
		return nil, s.fail(err, callerID)
	}

	err := db.Model(&models.Project{}).
		Where("id IN (?) AND status = ?", visible(), types.ProjectStatusActive).
		Count(&summary.ActiveProjects).Error

	if err != nil {
		return nil, s.fail(err, callerID)
	}

	var rows []countRow

	if err := tasks().Select("status AS label, COUNT(*) AS total").Group("status").Scan(&rows).Error; err != nil {
		return nil, s.fail(err, callerID)
	}

	for _, row := range rows {
		summary.TotalTasks += row.Total

		switch row.Label {
		case types.TaskStatusDone:
			summary.DoneTasks = row.Total
		case types.TaskStatusInProgress:
			summary.InProgressTasks = row.Total
		case types.TaskStatusTodo:
			summary.TodoTasks = row.Total
		}
	}

	err = tasks().
		Where("status <> ? AND due_date IS NOT NULL AND due_date < ?", types.TaskStatusDone, toDate(s.now())).
		Count(&summary.OverdueTasks).Error

	if err != nil {
		return nil, s.fail(err, callerID)
	}

	err = tasks().
		Where("status <> ? AND assignee_id = ?", types.TaskStatusDone, callerID).
		Count(&summary.AssignedOpen).Error

	if err != nil {
		return nil, s.fail(err, callerID)
	}

	return summary, nil
}

func (s *DashboardService) GetProjectSummary(ctx context.Context, callerID, projectID uint) (*ProjectSummary, error) {
	db := s.db.WithContext(ctx)

	project, err := s.access.LoadProject(db, projectID)

	if err != nil {
		return nil, err
	}

	if err := s.access.RequireMember(db, project, callerID); err != nil {
		return nil, err
	}

	if err := loadMemberships(db, project); err != nil {
		return nil, s.fail(err, callerID)
	}

	summary := &ProjectSummary{
		Project:    project,
		ByStatus:   make(map[string]int64, len(types.TaskStatuses)),
		ByPriority: make(map[string]int64, len(types.Priorities)),
	}

	for _, status := range types.TaskStatuses {
		summary.ByStatus[status] = 0
	}

	for _, priority := range types.Priorities {
		summary.ByPriority[priority] = 0
	}

	tasks := func() *gorm.DB {
		return db.Model(&models.Task{}).Where("project_id = ?", project.ID)
	}

	var rows []countRow

	if err := tasks().Select("status AS label, COUNT(*) AS total").Group("status").Scan(&rows).Error; err != nil {
		return nil, s.fail(err, callerID)
	}

	for _, row := range rows {
		summary.ByStatus[row.Label] = row.Total
		summary.TotalTasks += row.Total
	}

	rows = nil

	if err := tasks().Select("priority AS label, COUNT(*) AS total").Group("priority").Scan(&rows).Error; err != nil {
		return nil, s.fail(err, callerID)
	}

	for _, row := range rows {
		summary.ByPriority[row.Label] = row.Total
	}

	if summary.TotalTasks > 0 {
		summary.CompletionPercentage = int(summary.ByStatus[types.TaskStatusDone] * 100 / summary.TotalTasks)
	}

	now := s.now()

	err = tasks().
		Where("status <> ? AND due_date IS NOT NULL AND due_date < ?", types.TaskStatusDone, toDate(now)).
		Count(&summary.OverdueTasks).Error

	if err != nil {
		return nil, s.fail(err, callerID)
	}

	err = db.Where("project_id = ? AND status = ? AND completed_at > ?", project.ID, types.TaskStatusDone, now.Add(-recentWindow)).
		Order("completed_at DESC").
		Limit(recentLimit).
		Find(&summary.RecentlyCompleted).Error

	if err != nil {
		return nil, s.fail(err, callerID)
	}

	return summary, nil
}

func (s *DashboardService) fail(err error, callerID uint) error {
	s.logger.Error().Err(err).Uint("user_id", callerID).Msg("failed to build summary")
	return err
}
