package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskdeck/internal/types"
)

func GetProjectID(ctx *gin.Context) (uint, error) {
	return getID(ctx, "project_id", "Project")
}

func GetTaskID(ctx *gin.Context) (uint, error) {
	return getID(ctx, "task_id", "Task")
}

func GetSubtaskID(ctx *gin.Context) (uint, error) {
	return getID(ctx, "subtask_id", "Subtask")
}

func GetUserID(ctx *gin.Context) (uint, error) {
	return getID(ctx, "user_id", "User")
}

func getID(ctx *gin.Context, param, label string) (uint, error) {
	raw := ctx.Param(param)

	if raw == "" {
		return 0, errors.New(label + " ID not found")
	}

	id, err := ParseID(raw)

	if err != nil {
		return 0, errors.New("Invalid " + label + " ID")
	}

	return id, nil
}

// ParseID parses a positive database id.
func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, err
	}

	if id == 0 {
		return 0, errors.New("id must be positive")
	}

	return uint(id), nil
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(types.DateLayout, raw, time.UTC)
}
