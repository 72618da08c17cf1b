package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskdeck/internal/services"
	"gorm.io/gorm"
)

func abort(ctx *gin.Context, status int, message string) {
	ctx.AbortWithStatusJSON(status, gin.H{"error": message})
}

func abortInvalidRequest(ctx *gin.Context) {
	abort(ctx, http.StatusBadRequest, "Invalid request")
}

func abortUnauthenticated(ctx *gin.Context) {
	abort(ctx, http.StatusUnauthorized, "User not authenticated")
}

// respondError maps service errors to HTTP statuses. Anything outside
// the service taxonomy is logged and hidden behind a 500.
func (h *Handler) respondError(ctx *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		abort(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAuth):
		abort(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		abort(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, gorm.ErrDuplicatedKey):
		abort(ctx, http.StatusBadRequest, "Resource already exists")
	default:
		h.logger.Error().
			Err(err).
			Str("route", ctx.FullPath()).
			Msg(action)
		_ = ctx.Error(err)
		abort(ctx, http.StatusInternalServerError, "Internal server error")
	}
}
