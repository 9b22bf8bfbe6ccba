package handlers

import "net/http"

// MessageResponse carries a human readable message
// swagger:model MessageResponse
type MessageResponse struct {
	// default: Hello World
	Message string `json:"message"`
}

// NewRootHandler returns the hello endpoint.
// @Summary Hello
// @Tags meta
// @Produce json
// @Success 200 {object} handlers.MessageResponse
// @Router / [get]
func NewRootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Hello World"})
	}
}
