package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskdeck/internal/middleware"
	"github.com/monocle-dev/taskdeck/internal/services"
	"github.com/monocle-dev/taskdeck/internal/types"
	"github.com/monocle-dev/taskdeck/internal/utils"
)

type RegisterRequest struct {
	Handle               string `json:"handle" binding:"required"`
	Email                string `json:"email" binding:"omitempty,email"`
	Password             string `json:"password" binding:"required"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type LoginRequest struct {
	Handle   string `json:"handle" binding:"required"`
	Password string `json:"password" binding:"required"`
	Remember bool   `json:"remember"`
}

type ChangePasswordRequest struct {
	CurrentPassword      string `json:"current_password" binding:"required"`
	NewPassword          string `json:"new_password" binding:"required"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (h *Handler) Register(ctx *gin.Context) {
	var body RegisterRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		abortInvalidRequest(ctx)
		return
	}

	user, err := h.identity.Register(ctx.Request.Context(), services.RegisterParams{
		Handle:       body.Handle,
		Email:        body.Email,
		Password:     body.Password,
		Confirmation: body.PasswordConfirmation,
	})

	if err != nil {
		h.respondError(ctx, err, "failed to register user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"user": newUserResponse(user)})
}

func (h *Handler) Login(ctx *gin.Context) {
	var body LoginRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		abortInvalidRequest(ctx)
		return
	}

	result, err := h.identity.Authenticate(ctx.Request.Context(), services.LoginParams{
		Handle:   body.Handle,
		Password: body.Password,
		Remember: body.Remember,
	})

	if err != nil {
		if errors.Is(err, services.ErrAuth) {
			abort(ctx, http.StatusUnauthorized, err.Error())
			return
		}
		h.respondError(ctx, err, "failed to log in")
		return
	}

	maxAge := 0
	if result.Remember {
		maxAge = int(time.Until(result.ExpiresAt).Seconds())
	}

	h.setTokenCookie(ctx, result.Token, maxAge)

	ctx.JSON(http.StatusOK, types.SessionResponse{
		User:      newUserResponse(result.User),
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Remember:  result.Remember,
	})
}

// Logout always succeeds: ending an unknown or expired session is a no-op.
func (h *Handler) Logout(ctx *gin.Context) {
	token, _ := middleware.TokenFromRequest(ctx)

	if err := h.identity.EndSession(ctx.Request.Context(), token); err != nil {
		h.respondError(ctx, err, "failed to end session")
		return
	}

	h.setTokenCookie(ctx, "", -1)

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) Me(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		abortUnauthenticated(ctx)
		return
	}

	user, err := h.identity.GetUser(ctx.Request.Context(), userID)

	if err != nil {
		h.respondError(ctx, err, "failed to fetch user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

func (h *Handler) ChangePassword(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		abortUnauthenticated(ctx)
		return
	}

	var body ChangePasswordRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		abortInvalidRequest(ctx)
		return
	}

	err = h.identity.ChangePassword(ctx.Request.Context(), currentUser.ID, services.ChangePasswordParams{
		Current:       body.CurrentPassword,
		New:           body.NewPassword,
		Confirmation:  body.PasswordConfirmation,
		KeepSessionID: currentUser.SessionID,
	})

	if err != nil {
		h.respondError(ctx, err, "failed to change password")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// setTokenCookie writes the session cookie. maxAge 0 makes it a browser
// session cookie; a negative maxAge deletes it.
func (h *Handler) setTokenCookie(ctx *gin.Context, token string, maxAge int) {
	sameSite := http.SameSiteLaxMode
	if h.cookie.Secure {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   maxAge,
		Secure:   h.cookie.Secure,
		HttpOnly: true,
		SameSite: sameSite,
	})
}
