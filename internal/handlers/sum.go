package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-credit-sum/internal/services"
	"github.com/sbilibin2017/gw-credit-sum/internal/utils"
)

//go:generate mockgen -source=sum.go -destination=sum_mock.go -package=handlers

// Summer defines the interface that the sum service must implement.
type Summer interface {
	Sum(ctx context.Context, userID uuid.UUID, a, b int) (int, error)
}

// SumRequest represents the JSON body for the sum operation
// swagger:model SumRequest
type SumRequest struct {
	// First operand, 0..1023
	// required: true
	// default: 10
	A *int `json:"a"`

	// Second operand, 0..1023
	// required: true
	// default: 20
	B *int `json:"b"`
}

// SumResponse represents the result of the sum operation
// swagger:model SumResponse
type SumResponse struct {
	// default: 30
	Result int `json:"result"`
}

// NewSumHandler returns an HTTP handler for POST /api/sum. Each successful
// call costs one credit.
// @Summary Add two integers
// @Tags sum
// @Accept json
// @Produce json
// @Param sumRequest body handlers.SumRequest true "Operands"
// @Success 200 {object} handlers.SumResponse "Sum"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Insufficient credits"
// @Failure 422 {object} handlers.ErrorResponse "Invalid operands"
// @Router /api/sum [post]
// @Security BearerAuth
func NewSumHandler(svc Summer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := utils.GetUserFromContext(r.Context())
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req SumRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.A == nil || req.B == nil {
			writeError(w, services.ErrOperandOutOfRange)
			return
		}

		result, err := svc.Sum(r.Context(), user.ID, *req.A, *req.B)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, SumResponse{Result: result})
	}
}
