package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskdeck/internal/middleware"
	"github.com/monocle-dev/taskdeck/internal/types"
)

func newContext(params gin.Params) *gin.Context {
	gin.SetMode(gin.TestMode)

	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	ctx.Params = params

	return ctx
}

func TestGetIDs(t *testing.T) {
	tests := []struct {
		name    string
		params  gin.Params
		get     func(*gin.Context) (uint, error)
		want    uint
		wantErr string
	}{
		{"project", gin.Params{{Key: "project_id", Value: "12"}}, GetProjectID, 12, ""},
		{"task", gin.Params{{Key: "task_id", Value: "3"}}, GetTaskID, 3, ""},
		{"subtask", gin.Params{{Key: "subtask_id", Value: "9"}}, GetSubtaskID, 9, ""},
		{"user", gin.Params{{Key: "user_id", Value: "4"}}, GetUserID, 4, ""},
		{"missing", nil, GetProjectID, 0, "Project ID not found"},
		{"not a number", gin.Params{{Key: "task_id", Value: "abc"}}, GetTaskID, 0, "Invalid Task ID"},
		{"zero", gin.Params{{Key: "task_id", Value: "0"}}, GetTaskID, 0, "Invalid Task ID"},
		{"negative", gin.Params{{Key: "user_id", Value: "-1"}}, GetUserID, 0, "Invalid User ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.get(newContext(tt.params))

			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("expected error %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-01-01")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %s", got)
	}

	if _, err := ParseDate("01/02/2024"); err == nil {
		t.Fatal("expected error for wrong layout")
	}
}

func TestGetCurrentUser(t *testing.T) {
	ctx := newContext(nil)

	if _, err := GetCurrentUserID(ctx); err != ErrNotAuthenticated {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	ctx.Set(types.ContextUserKey, "not a user")
	if _, err := GetCurrentUser(ctx); err != ErrNotAuthenticated {
		t.Fatalf("expected ErrNotAuthenticated for wrong type, got %v", err)
	}

	ctx.Set(types.ContextUserKey, middleware.AuthenticatedUser{ID: 5, Handle: "alice"})
	id, err := GetCurrentUserID(ctx)
	if err != nil {
		t.Fatalf("get current user: %v", err)
	}
	if id != 5 {
		t.Fatalf("expected 5, got %d", id)
	}
}
