package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskdeck/internal/utils"
)

func (h *Handler) GetDashboard(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		abortUnauthenticated(ctx)
		return
	}

	summary, err := h.dashboard.GetSummary(ctx.Request.Context(), userID)

	if err != nil {
		h.respondError(ctx, err, "failed to build dashboard")
		return
	}

	ctx.JSON(http.StatusOK, newSummaryResponse(summary))
}

func (h *Handler) GetProjectDashboard(ctx *gin.Context) {
	userID, projectID, ok := userAndProject(ctx)
	if !ok {
		return
	}

	summary, err := h.dashboard.GetProjectSummary(ctx.Request.Context(), userID, projectID)

	if err != nil {
		h.respondError(ctx, err, "failed to build project dashboard")
		return
	}

	ctx.JSON(http.StatusOK, newProjectSummaryResponse(summary))
}
