package services

import (
	"context"
	"testing"
	"time"

	"github.com/monocle-dev/taskdeck/internal/models"
	"github.com/monocle-dev/taskdeck/internal/types"
)

func TestCreateTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")
	project := f.project(t, alice, "Audit")
	f.member(t, alice, project, bob)

	_, err := f.tasks.CreateTask(ctx, alice.ID, 9999, CreateTaskParams{Title: "x"})
	expectKind(t, err, ErrNotFound)

	_, err = f.tasks.CreateTask(ctx, carol.ID, project.ID, CreateTaskParams{Title: "x"})
	expectKind(t, err, ErrAuth)

	_, err = f.tasks.CreateTask(ctx, alice.ID, project.ID, CreateTaskParams{Title: " "})
	expectKind(t, err, ErrValidation)

	_, err = f.tasks.CreateTask(ctx, alice.ID, project.ID, CreateTaskParams{Title: "x", Priority: "urgent"})
	expectKind(t, err, ErrValidation)

	_, err = f.tasks.CreateTask(ctx, alice.ID, project.ID, CreateTaskParams{Title: "x", AssigneeID: &carol.ID})
	expectKind(t, err, ErrValidation)

	if n := f.count(t, &models.Task{}, "1 = 1"); n != 0 {
		t.Fatalf("expected no tasks, got %d", n)
	}

	task, err := f.tasks.CreateTask(ctx, bob.ID, project.ID, CreateTaskParams{
		Title:      "Review logs",
		DueDate:    ptr(date(2024, 2, 1)),
		AssigneeID: &alice.ID,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if task.Status != types.TaskStatusTodo || task.Priority != types.PriorityMedium {
		t.Fatalf("unexpected defaults %+v", task)
	}
	if task.CreatedByID != bob.ID || task.AssigneeID == nil || *task.AssigneeID != alice.ID {
		t.Fatalf("unexpected ownership fields %+v", task)
	}
}

func TestUpdateTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")
	project := f.project(t, alice, "Audit")
	f.member(t, alice, project, bob)
	task := f.task(t, alice, project, CreateTaskParams{Title: "Review logs", DueDate: ptr(date(2024, 2, 1))})

	_, err := f.tasks.UpdateTask(ctx, carol.ID, task.ID, UpdateTaskParams{Title: ptr("x")})
	expectKind(t, err, ErrAuth)

	_, err = f.tasks.UpdateTask(ctx, alice.ID, task.ID, UpdateTaskParams{Status: ptr("blocked")})
	expectKind(t, err, ErrValidation)

	_, err = f.tasks.UpdateTask(ctx, alice.ID, task.ID, UpdateTaskParams{AssigneeID: &carol.ID})
	expectKind(t, err, ErrValidation)

	updated, err := f.tasks.UpdateTask(ctx, bob.ID, task.ID, UpdateTaskParams{
		Status:       ptr(types.TaskStatusDone),
		Priority:     ptr(types.PriorityHigh),
		AssigneeID:   &bob.ID,
		ClearDueDate: true,
	})
	if err != nil {
		t.Fatalf("update task: %v", err)
	}

	if updated.Status != types.TaskStatusDone || updated.CompletedAt == nil {
		t.Fatalf("expected done with completion time, got %+v", updated)
	}
	if updated.Priority != types.PriorityHigh || updated.DueDate != nil {
		t.Fatalf("unexpected fields %+v", updated)
	}

	updated, err = f.tasks.UpdateTask(ctx, bob.ID, task.ID, UpdateTaskParams{
		Status:        ptr(types.TaskStatusInProgress),
		ClearAssignee: true,
	})
	if err != nil {
		t.Fatalf("update task: %v", err)
	}

	if updated.CompletedAt != nil || updated.AssigneeID != nil {
		t.Fatalf("expected cleared completion and assignee, got %+v", updated)
	}
}

func TestToggleCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	project := f.project(t, alice, "Audit")
	task := f.task(t, alice, project, CreateTaskParams{Title: "Review logs"})

	if _, err := f.tasks.UpdateTask(ctx, alice.ID, task.ID, UpdateTaskParams{Status: ptr(types.TaskStatusInProgress)}); err != nil {
		t.Fatalf("update task: %v", err)
	}

	toggled, err := f.tasks.ToggleCompletion(ctx, alice.ID, task.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.Status != types.TaskStatusDone || toggled.CompletedAt == nil {
		t.Fatalf("expected done, got %+v", toggled)
	}

	toggled, err = f.tasks.ToggleCompletion(ctx, alice.ID, task.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.Status != types.TaskStatusTodo || toggled.CompletedAt != nil {
		t.Fatalf("expected back to todo, got %+v", toggled)
	}

	var stored models.Task
	if err := f.db.First(&stored, task.ID).Error; err != nil {
		t.Fatalf("load task: %v", err)
	}
	if stored.Status != types.TaskStatusTodo || stored.CompletedAt != nil {
		t.Fatalf("toggle not persisted: %+v", stored)
	}
}

func TestDeleteTaskPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	dave := f.user(t, "dave")
	project := f.project(t, alice, "Audit")
	f.member(t, alice, project, bob)
	f.member(t, alice, project, dave)

	byOwner := f.task(t, alice, project, CreateTaskParams{Title: "Owner's"})
	byBob := f.task(t, bob, project, CreateTaskParams{Title: "Bob's"})
	another := f.task(t, bob, project, CreateTaskParams{Title: "Also Bob's"})

	expectKind(t, f.tasks.DeleteTask(ctx, bob.ID, byOwner.ID), ErrAuth)
	expectKind(t, f.tasks.DeleteTask(ctx, dave.ID, byBob.ID), ErrAuth)
	expectKind(t, f.tasks.DeleteTask(ctx, alice.ID, 9999), ErrNotFound)

	if _, err := f.tasks.AddSubtask(ctx, bob.ID, byBob.ID, "step"); err != nil {
		t.Fatalf("add subtask: %v", err)
	}

	if err := f.tasks.DeleteTask(ctx, bob.ID, byBob.ID); err != nil {
		t.Fatalf("creator delete: %v", err)
	}
	if err := f.tasks.DeleteTask(ctx, alice.ID, another.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}

	if n := f.count(t, &models.Subtask{}, "task_id = ?", byBob.ID); n != 0 {
		t.Fatalf("expected subtasks removed, %d left", n)
	}

	_, err := f.tasks.GetTask(ctx, alice.ID, byBob.ID)
	expectKind(t, err, ErrNotFound)
}

func TestListTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	project := f.project(t, alice, "Audit")
	f.member(t, alice, project, bob)

	first := f.task(t, alice, project, CreateTaskParams{Title: "First", Priority: types.PriorityHigh})
	second := f.task(t, alice, project, CreateTaskParams{Title: "Second", AssigneeID: &bob.ID})
	third := f.task(t, bob, project, CreateTaskParams{Title: "Third", Priority: types.PriorityHigh})

	if _, err := f.tasks.ToggleCompletion(ctx, alice.ID, third.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	tests := []struct {
		name   string
		filter TaskFilter
		want   []uint
	}{
		{"all", TaskFilter{}, []uint{first.ID, second.ID, third.ID}},
		{"status", TaskFilter{Status: types.TaskStatusTodo}, []uint{first.ID, second.ID}},
		{"priority", TaskFilter{Priority: types.PriorityHigh}, []uint{first.ID, third.ID}},
		{"assignee", TaskFilter{AssigneeID: &bob.ID}, []uint{second.ID}},
		{"combined", TaskFilter{Status: types.TaskStatusDone, Priority: types.PriorityHigh}, []uint{third.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := f.tasks.ListTasks(ctx, bob.ID, project.ID, tt.filter)
			if err != nil {
				t.Fatalf("list tasks: %v", err)
			}

			if len(tasks) != len(tt.want) {
				t.Fatalf("expected %d tasks, got %d", len(tt.want), len(tasks))
			}
			for i, task := range tasks {
				if task.ID != tt.want[i] {
					t.Fatalf("position %d: expected task %d, got %d", i, tt.want[i], task.ID)
				}
			}
		})
	}

	_, err := f.tasks.ListTasks(ctx, alice.ID, project.ID, TaskFilter{Status: "blocked"})
	expectKind(t, err, ErrValidation)
}

func TestSubtasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	carol := f.user(t, "carol")
	project := f.project(t, alice, "Audit")
	task := f.task(t, alice, project, CreateTaskParams{Title: "Review logs"})

	_, err := f.tasks.AddSubtask(ctx, carol.ID, task.ID, "step")
	expectKind(t, err, ErrAuth)

	_, err = f.tasks.AddSubtask(ctx, alice.ID, task.ID, "")
	expectKind(t, err, ErrValidation)

	var ids []uint
	for _, title := range []string{"one", "two", "three"} {
		subtask, err := f.tasks.AddSubtask(ctx, alice.ID, task.ID, title)
		if err != nil {
			t.Fatalf("add subtask: %v", err)
		}
		ids = append(ids, subtask.ID)
	}

	toggled, err := f.tasks.ToggleSubtask(ctx, alice.ID, ids[0])
	if err != nil {
		t.Fatalf("toggle subtask: %v", err)
	}
	if !toggled.Completed {
		t.Fatal("expected subtask completed")
	}

	_, err = f.tasks.ToggleSubtask(ctx, carol.ID, ids[1])
	expectKind(t, err, ErrAuth)

	loaded, err := f.tasks.GetTask(ctx, alice.ID, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got := loaded.CompletionPercentage(); got != 33 {
		t.Fatalf("expected 33%%, got %d", got)
	}

	if err := f.tasks.DeleteSubtask(ctx, alice.ID, ids[2]); err != nil {
		t.Fatalf("delete subtask: %v", err)
	}
	expectKind(t, f.tasks.DeleteSubtask(ctx, alice.ID, ids[2]), ErrNotFound)

	loaded, err = f.tasks.GetTask(ctx, alice.ID, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got := loaded.CompletionPercentage(); got != 50 {
		t.Fatalf("expected 50%%, got %d", got)
	}
}

func TestCompletedAtUsesServiceClock(t *testing.T) {
	f := newFixture(t)
	fixed := time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)
	f.tasks.now = func() time.Time { return fixed }
	alice := f.user(t, "alice")
	project := f.project(t, alice, "Audit")
	task := f.task(t, alice, project, CreateTaskParams{Title: "Review logs"})

	toggled, err := f.tasks.ToggleCompletion(context.Background(), alice.ID, task.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.CompletedAt == nil || !toggled.CompletedAt.Equal(fixed) {
		t.Fatalf("expected completion at %s, got %v", fixed, toggled.CompletedAt)
	}
}
