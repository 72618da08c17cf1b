package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/monocle-dev/taskdeck/internal/auth"
	"github.com/monocle-dev/taskdeck/internal/models"
	"github.com/monocle-dev/taskdeck/internal/testutil"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	identity  *IdentityService
	projects  *ProjectService
	tasks     *TaskService
	dashboard *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn := testutil.NewDB(t)

	tokens, err := auth.NewTokenIssuer("test-secret", "taskdeck")
	if err != nil {
		t.Fatalf("new token issuer: %v", err)
	}

	logger := zerolog.Nop()

	return &fixture{
		db:        conn,
		identity:  NewIdentityService(conn, logger, tokens, SessionConfig{PasswordCost: bcrypt.MinCost}),
		projects:  NewProjectService(conn, logger),
		tasks:     NewTaskService(conn, logger),
		dashboard: NewDashboardService(conn, logger),
	}
}

func (f *fixture) user(t *testing.T, handle string) *models.User {
	t.Helper()

	user, err := f.identity.Register(context.Background(), RegisterParams{
		Handle:       handle,
		Password:     "secret1",
		Confirmation: "secret1",
	})
	if err != nil {
		t.Fatalf("register %s: %v", handle, err)
	}

	return user
}

func (f *fixture) project(t *testing.T, owner *models.User, name string) *models.Project {
	t.Helper()

	project, err := f.projects.CreateProject(context.Background(), owner.ID, CreateProjectParams{Name: name})
	if err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}

	return project
}

func (f *fixture) member(t *testing.T, owner *models.User, project *models.Project, user *models.User) {
	t.Helper()

	if _, err := f.projects.AddMember(context.Background(), owner.ID, project.ID, user.ID); err != nil {
		t.Fatalf("add member %s: %v", user.Handle, err)
	}
}

func (f *fixture) task(t *testing.T, caller *models.User, project *models.Project, params CreateTaskParams) *models.Task {
	t.Helper()

	task, err := f.tasks.CreateTask(context.Background(), caller.ID, project.ID, params)
	if err != nil {
		t.Fatalf("create task %s: %v", params.Title, err)
	}

	return task
}

func (f *fixture) count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()

	var n int64
	if err := f.db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}

	return n
}

func expectKind(t *testing.T, err, kind error) {
	t.Helper()

	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}
