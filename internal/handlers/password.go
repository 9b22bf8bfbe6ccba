package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-credit-sum/internal/models"
	"github.com/sbilibin2017/gw-credit-sum/internal/utils"
)

//go:generate mockgen -source=password.go -destination=password_mock.go -package=handlers

// PasswordForgetter starts the password reset flow.
type PasswordForgetter interface {
	ForgotPassword(ctx context.Context, email string) error
}

// PasswordResetter completes the password reset flow.
type PasswordResetter interface {
	ResetPassword(ctx context.Context, token, password string) error
}

// PasswordChanger changes the password of an authenticated user.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, user *models.User, currentPassword, newPassword string) error
}

// ForgotPasswordRequest represents the JSON body for a reset request
// swagger:model ForgotPasswordRequest
type ForgotPasswordRequest struct {
	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`
}

// ResetPasswordRequest represents the JSON body for a password reset
// swagger:model ResetPasswordRequest
type ResetPasswordRequest struct {
	// Reset token from the email
	// required: true
	Token string `json:"token"`

	// New password
	// required: true
	// default: NewSecret123
	Password string `json:"password"`
}

// ChangePasswordRequest represents the JSON body for a self password change
// swagger:model ChangePasswordRequest
type ChangePasswordRequest struct {
	// Current password
	// required: true
	CurrentPassword string `json:"current_password"`

	// New password
	// required: true
	Password string `json:"password"`
}

// NewForgotPasswordHandler returns an HTTP handler that mails a reset link.
// @Summary Request a password reset
// @Description Always answers 202 so that registered addresses cannot be probed.
// @Tags auth
// @Accept json
// @Produce json
// @Param forgotPasswordRequest body handlers.ForgotPasswordRequest true "Email"
// @Success 202 "Accepted"
// @Failure 422 {object} handlers.ErrorResponse "Invalid email"
// @Router /auth/forgot-password [post]
func NewForgotPasswordHandler(svc PasswordForgetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ForgotPasswordRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, detailInvalidBody)
			return
		}

		if err := svc.ForgotPassword(r.Context(), req.Email); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusAccepted, nil)
	}
}

// NewResetPasswordHandler returns an HTTP handler that sets a new password
// using a one-time reset token.
// @Summary Reset password
// @Tags auth
// @Accept json
// @Produce json
// @Param resetPasswordRequest body handlers.ResetPasswordRequest true "Token and new password"
// @Success 200 "Password changed"
// @Failure 400 {object} handlers.ErrorResponse "RESET_PASSWORD_BAD_TOKEN or password policy violation"
// @Router /auth/reset-password [post]
func NewResetPasswordHandler(svc PasswordResetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResetPasswordRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, detailInvalidBody)
			return
		}

		if err := svc.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, nil)
	}
}

// NewChangePasswordHandler returns an HTTP handler for PATCH /users/me/password.
// @Summary Change own password
// @Tags users
// @Accept json
// @Produce json
// @Param changePasswordRequest body handlers.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} handlers.MessageResponse "Password updated"
// @Failure 400 {object} handlers.ErrorResponse "Password policy violation"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Current password is incorrect"
// @Router /users/me/password [patch]
// @Security BearerAuth
func NewChangePasswordHandler(svc PasswordChanger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := utils.GetUserFromContext(r.Context())
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req ChangePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, detailInvalidBody)
			return
		}

		if err := svc.ChangePassword(r.Context(), user, req.CurrentPassword, req.Password); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Password updated successfully"})
	}
}
