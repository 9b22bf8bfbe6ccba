package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteDetail(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteDetail(rr, http.StatusTooManyRequests, "Too many requests")

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"detail":"Too many requests"}`, rr.Body.String())
}
