package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskdeck/internal/services"
	"github.com/monocle-dev/taskdeck/internal/types"
	"github.com/monocle-dev/taskdeck/internal/utils"
)

type CreateProjectRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

type UpdateProjectRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Status       *string `json:"status"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	ClearEndDate bool    `json:"clear_end_date"`
}

// AddMemberRequest names the user either by id or by handle.
type AddMemberRequest struct {
	UserID *uint  `json:"user_id"`
	Handle string `json:"handle"`
}

type TransferOwnershipRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

func (h *Handler) CreateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		abortUnauthenticated(ctx)
		return
	}

	var body CreateProjectRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		abortInvalidRequest(ctx)
		return
	}

	params := services.CreateProjectParams{
		Name:        body.Name,
		Description: body.Description,
	}

	if body.StartDate != nil {
		start, ok := parseDateField(ctx, *body.StartDate, "start_date")
		if !ok {
			return
		}
		params.StartDate = start
	}

	if body.EndDate != nil {
		end, ok := parseDateField(ctx, *body.EndDate, "end_date")
		if !ok {
			return
		}
		params.EndDate = &end
	}

	project, err := h.projects.CreateProject(ctx.Request.Context(), userID, params)

	if err != nil {
		h.respondError(ctx, err, "failed to create project")
		return
	}

	ctx.JSON(http.StatusCreated, newProjectResponse(project))
}

func (h *Handler) ListProjects(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		abortUnauthenticated(ctx)
		return
	}

	projects, err := h.projects.ListProjects(ctx.Request.Context(), userID)

	if err != nil {
		h.respondError(ctx, err, "failed to retrieve projects")
		return
	}

	response := make([]types.ProjectResponse, 0, len(projects))

	for i := range projects {
		response = append(response, newProjectResponse(&projects[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) GetProject(ctx *gin.Context) {
	userID, projectID, ok := userAndProject(ctx)
	if !ok {
		return
	}

	project, err := h.projects.GetProject(ctx.Request.Context(), userID, projectID)

	if err != nil {
		h.respondError(ctx, err, "failed to retrieve project")
		return
	}

	ctx.JSON(http.StatusOK, newProjectResponse(project))
}

func (h *Handler) UpdateProject(ctx *gin.Context) {
	userID, projectID, ok := userAndProject(ctx)
	if !ok {
		return
	}

	var body UpdateProjectRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		abortInvalidRequest(ctx)
		return
	}

	params := services.UpdateProjectParams{
		Name:         body.Name,
		Description:  body.Description,
		Status:       body.Status,
		ClearEndDate: body.ClearEndDate,
	}

	if body.StartDate != nil {
		start, ok := parseDateField(ctx, *body.StartDate, "start_date")
		if !ok {
			return
		}
		params.StartDate = &start
	}

	if body.EndDate != nil {
		end, ok := parseDateField(ctx, *body.EndDate, "end_date")
		if !ok {
			return
		}
		params.EndDate = &end
	}

	project, err := h.projects.UpdateProject(ctx.Request.Context(), userID, projectID, params)

	if err != nil {
		h.respondError(ctx, err, "failed to update project")
		return
	}

	ctx.JSON(http.StatusOK, newProjectResponse(project))
}

func (h *Handler) DeleteProject(ctx *gin.Context) {
	userID, projectID, ok := userAndProject(ctx)
	if !ok {
		return
	}

	if err := h.projects.DeleteProject(ctx.Request.Context(), userID, projectID); err != nil {
		h.respondError(ctx, err, "failed to delete project")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *Handler) ListMembers(ctx *gin.Context) {
	userID, projectID, ok := userAndProject(ctx)
	if !ok {
		return
	}

	members, err := h.projects.ListMembers(ctx.Request.Context(), userID, projectID)

	if err != nil {
		h.respondError(ctx, err, "failed to retrieve members")
		return
	}

	response := make([]types.UserResponse, 0, len(members))

	for i := range members {
		response = append(response, newMemberResponse(&members[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) AddMember(ctx *gin.Context) {
	userID, projectID, ok := userAndProject(ctx)
	if !ok {
		return
	}

	var body AddMemberRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		abortInvalidRequest(ctx)
		return
	}

	var memberID uint

	switch {
	case body.UserID != nil:
		memberID = *body.UserID
	case body.Handle != "":
		user, err := h.identity.FindUserByHandle(ctx.Request.Context(), body.Handle)
		if err != nil {
			h.respondError(ctx, err, "failed to look up member")
			return
		}
		memberID = user.ID
	default:
		abort(ctx, http.StatusBadRequest, "user_id or handle is required")
		return
	}

	project, err := h.projects.AddMember(ctx.Request.Context(), userID, projectID, memberID)

	if err != nil {
		h.respondError(ctx, err, "failed to add member")
		return
	}

	ctx.JSON(http.StatusCreated, newProjectResponse(project))
}

func (h *Handler) RemoveMember(ctx *gin.Context) {
	userID, projectID, ok := userAndProject(ctx)
	if !ok {
		return
	}

	memberID, err := utils.GetUserID(ctx)

	if err != nil {
		abort(ctx, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.projects.RemoveMember(ctx.Request.Context(), userID, projectID, memberID); err != nil {
		h.respondError(ctx, err, "failed to remove member")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *Handler) TransferOwnership(ctx *gin.Context) {
	userID, projectID, ok := userAndProject(ctx)
	if !ok {
		return
	}

	var body TransferOwnershipRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		abortInvalidRequest(ctx)
		return
	}

	project, err := h.projects.TransferOwnership(ctx.Request.Context(), userID, projectID, body.UserID)

	if err != nil {
		h.respondError(ctx, err, "failed to transfer ownership")
		return
	}

	ctx.JSON(http.StatusOK, newProjectResponse(project))
}

// userAndProject reads the caller and the :project_id param, aborting
// the request when either is missing.
func userAndProject(ctx *gin.Context) (uint, uint, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		abortUnauthenticated(ctx)
		return 0, 0, false
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		abort(ctx, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}

	return userID, projectID, true
}

func parseDateField(ctx *gin.Context, raw, field string) (time.Time, bool) {
	parsed, err := utils.ParseDate(raw)

	if err != nil {
		abort(ctx, http.StatusBadRequest, "Invalid "+field+", expected YYYY-MM-DD")
		return time.Time{}, false
	}

	return parsed, true
}
