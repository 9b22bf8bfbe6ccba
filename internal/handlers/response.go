package handlers

import (
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-credit-sum/internal/logger"
	"github.com/sbilibin2017/gw-credit-sum/internal/services"
	"github.com/sbilibin2017/gw-credit-sum/internal/utils"
)

// ErrorResponse is the body of every failed request
type ErrorResponse = utils.ErrorResponse

const (
	detailInvalidBody    = "invalid request body"
	detailInternalServer = "Internal server error"
)

var (
	writeJSON   = utils.WriteJSON
	writeDetail = utils.WriteDetail
)

// writeError maps a service error to its HTTP status. Errors outside the
// service taxonomy are logged and reported as 500.
func writeError(w http.ResponseWriter, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		logger.Log.Errorw("internal server error", "err", err)
		writeDetail(w, http.StatusInternalServerError, detailInternalServer)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", "Bearer")
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	}
	writeDetail(w, status, svcErr.Message)
}
