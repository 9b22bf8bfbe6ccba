package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-credit-sum/internal/services"
)

//go:generate mockgen -source=credits.go -destination=credits_mock.go -package=handlers

// CreditSetter overwrites a user's credit balance.
type CreditSetter interface {
	Set(ctx context.Context, userID uuid.UUID, amount int) (int, error)
}

// SetCreditsRequest represents the JSON body for setting a balance
// swagger:model SetCreditsRequest
type SetCreditsRequest struct {
	// New balance
	// required: true
	// default: 10
	Credits *int `json:"credits"`
}

// CreditsResponse represents a user's balance
// swagger:model CreditsResponse
type CreditsResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Credits int       `json:"credits"`
}

// NewSetCreditsHandler returns an HTTP handler for PATCH /api/users/{id}/credits.
// @Summary Set user credits
// @Tags credits
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param setCreditsRequest body handlers.SetCreditsRequest true "New balance"
// @Success 200 {object} handlers.CreditsResponse "New balance"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Not a superuser"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Failure 422 {object} handlers.ErrorResponse "credits must be greater than or equal to 0"
// @Router /api/users/{id}/credits [patch]
// @Security BearerAuth
func NewSetCreditsHandler(svc CreditSetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := userIDParam(r)
		if !ok {
			writeError(w, services.ErrUserNotFound)
			return
		}

		var req SetCreditsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Credits == nil {
			writeDetail(w, http.StatusUnprocessableEntity, detailInvalidBody)
			return
		}

		balance, err := svc.Set(r.Context(), id, *req.Credits)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, CreditsResponse{UserID: id, Credits: balance})
	}
}
