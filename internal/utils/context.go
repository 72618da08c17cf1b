package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskdeck/internal/middleware"
	"github.com/monocle-dev/taskdeck/internal/types"
)

var ErrNotAuthenticated = errors.New("User not authenticated")

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, ErrNotAuthenticated
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok || authenticatedUser.ID == 0 {
		return middleware.AuthenticatedUser{}, ErrNotAuthenticated
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}
