package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-credit-sum/internal/models"
	"github.com/sbilibin2017/gw-credit-sum/internal/services"
	"github.com/sbilibin2017/gw-credit-sum/internal/utils"
)

//go:generate mockgen -source=users.go -destination=users_mock.go -package=handlers

// MeGetter loads the profile of the authenticated user.
type MeGetter interface {
	Me(ctx context.Context, user *models.User) (*models.UserWithCredits, error)
}

// UserLister lists users page by page.
type UserLister interface {
	List(ctx context.Context, limit, offset int) ([]models.UserWithCredits, error)
}

// UserGetter loads a single user.
type UserGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*models.UserWithCredits, error)
}

// UserUpdater applies an administrative change to a user.
type UserUpdater interface {
	Update(ctx context.Context, id uuid.UUID, patch services.UserPatch) (*models.UserWithCredits, error)
}

// UserDeleter removes a user.
type UserDeleter interface {
	Delete(ctx context.Context, actorID, id uuid.UUID) error
}

// UserUpdateRequest represents the JSON body of an administrative user update
// swagger:model UserUpdateRequest
type UserUpdateRequest struct {
	Email       *string `json:"email,omitempty"`
	Password    *string `json:"password,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsVerified  *bool   `json:"is_verified,omitempty"`
	IsSuperuser *bool   `json:"is_superuser,omitempty"`
}

// NewMeHandler returns an HTTP handler for GET /users/me.
// @Summary Current user
// @Description Returns the authenticated user with its credit balance. The balance is created on first access.
// @Tags users
// @Produce json
// @Success 200 {object} models.UserWithCredits "Current user"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /users/me [get]
// @Security BearerAuth
func NewMeHandler(svc MeGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := utils.GetUserFromContext(r.Context())
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		me, err := svc.Me(r.Context(), user)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, me)
	}
}

// NewUpdateMeHandler returns an HTTP handler that rejects PATCH /users/me.
// Profile fields are managed by superusers; passwords have their own endpoint.
// @Summary Update current user (disabled)
// @Tags users
// @Produce json
// @Failure 403 {object} handlers.ErrorResponse "Not allowed"
// @Router /users/me [patch]
// @Security BearerAuth
func NewUpdateMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, services.ErrSelfUpdate)
	}
}

// NewListUsersHandler returns an HTTP handler for GET /users.
// @Summary List users
// @Tags users
// @Produce json
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.UserWithCredits "Users"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Not a superuser"
// @Failure 422 {object} handlers.ErrorResponse "Invalid pagination"
// @Router /users [get]
// @Security BearerAuth
func NewListUsersHandler(svc UserLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, okLimit := queryInt(r, "limit", services.DefaultPageLimit)
		offset, okOffset := queryInt(r, "offset", 0)
		if !okLimit || !okOffset {
			writeError(w, services.ErrInvalidPagination)
			return
		}

		users, err := svc.List(r.Context(), limit, offset)
		if err != nil {
			writeError(w, err)
			return
		}
		if users == nil {
			users = []models.UserWithCredits{}
		}

		writeJSON(w, http.StatusOK, users)
	}
}

// NewGetUserHandler returns an HTTP handler for GET /users/{id}.
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.UserWithCredits "User"
// @Failure 403 {object} handlers.ErrorResponse "Not a superuser"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Router /users/{id} [get]
// @Security BearerAuth
func NewGetUserHandler(svc UserGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := userIDParam(r)
		if !ok {
			writeError(w, services.ErrUserNotFound)
			return
		}

		user, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

// NewUpdateUserHandler returns an HTTP handler for PATCH /users/{id}.
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param userUpdateRequest body handlers.UserUpdateRequest true "Fields to change"
// @Success 200 {object} models.UserWithCredits "Updated user"
// @Failure 400 {object} handlers.ErrorResponse "Password policy violation"
// @Failure 403 {object} handlers.ErrorResponse "Not a superuser"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Failure 409 {object} handlers.ErrorResponse "UPDATE_USER_EMAIL_ALREADY_EXISTS"
// @Router /users/{id} [patch]
// @Security BearerAuth
func NewUpdateUserHandler(svc UserUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := userIDParam(r)
		if !ok {
			writeError(w, services.ErrUserNotFound)
			return
		}

		var req UserUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, detailInvalidBody)
			return
		}

		user, err := svc.Update(r.Context(), id, services.UserPatch{
			Email:       req.Email,
			Password:    req.Password,
			IsActive:    req.IsActive,
			IsVerified:  req.IsVerified,
			IsSuperuser: req.IsSuperuser,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

// NewDeleteUserHandler returns an HTTP handler for DELETE /users/{id}.
// @Summary Delete user
// @Tags users
// @Param id path string true "User ID"
// @Success 204 "Deleted"
// @Failure 403 {object} handlers.ErrorResponse "Not a superuser"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Failure 409 {object} handlers.ErrorResponse "Cannot delete your own account"
// @Router /users/{id} [delete]
// @Security BearerAuth
func NewDeleteUserHandler(svc UserDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := utils.GetUserFromContext(r.Context())
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		id, ok := userIDParam(r)
		if !ok {
			writeError(w, services.ErrUserNotFound)
			return
		}

		if err := svc.Delete(r.Context(), actor.ID, id); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func userIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

func queryInt(r *http.Request, key string, def int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}
