package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-credit-sum/internal/models"
	"github.com/sbilibin2017/gw-credit-sum/internal/services"
	"github.com/sbilibin2017/gw-credit-sum/internal/utils"
	"github.com/stretchr/testify/assert"
)

func TestForgotPasswordHandler(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		mockSetup    func(m *MockPasswordForgetter)
		expectedCode int
	}{
		{
			name: "known or unknown address",
			body: `{"email":"john@example.com"}`,
			mockSetup: func(m *MockPasswordForgetter) {
				m.EXPECT().ForgotPassword(gomock.Any(), "john@example.com").Return(nil)
			},
			expectedCode: http.StatusAccepted,
		},
		{
			name: "malformed email",
			body: `{"email":"nope"}`,
			mockSetup: func(m *MockPasswordForgetter) {
				m.EXPECT().ForgotPassword(gomock.Any(), "nope").Return(services.ErrInvalidEmail)
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name:         "invalid JSON",
			body:         `{`,
			mockSetup:    func(m *MockPasswordForgetter) {},
			expectedCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockSvc := NewMockPasswordForgetter(ctrl)
			tt.mockSetup(mockSvc)

			req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			NewForgotPasswordHandler(mockSvc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestResetPasswordHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockSetup      func(m *MockPasswordResetter)
		expectedCode   int
		expectedDetail string
	}{
		{
			name: "success",
			body: `{"token":"tok","password":"NewSecret123"}`,
			mockSetup: func(m *MockPasswordResetter) {
				m.EXPECT().ResetPassword(gomock.Any(), "tok", "NewSecret123").Return(nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "bad token",
			body: `{"token":"used","password":"NewSecret123"}`,
			mockSetup: func(m *MockPasswordResetter) {
				m.EXPECT().ResetPassword(gomock.Any(), "used", "NewSecret123").Return(services.ErrResetTokenInvalid)
			},
			expectedCode:   http.StatusBadRequest,
			expectedDetail: "RESET_PASSWORD_BAD_TOKEN",
		},
		{
			name: "weak password",
			body: `{"token":"tok","password":"alllowercase1"}`,
			mockSetup: func(m *MockPasswordResetter) {
				m.EXPECT().ResetPassword(gomock.Any(), "tok", "alllowercase1").Return(services.ErrPasswordNoUpper)
			},
			expectedCode:   http.StatusBadRequest,
			expectedDetail: "Password must contain at least one uppercase letter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockSvc := NewMockPasswordResetter(ctrl)
			tt.mockSetup(mockSvc)

			req := httptest.NewRequest(http.MethodPost, "/auth/reset-password", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			NewResetPasswordHandler(mockSvc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedDetail != "" {
				var resp ErrorResponse
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedDetail, resp.Detail)
			}
		})
	}
}

func TestChangePasswordHandler(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "john@example.com", IsActive: true}

	tests := []struct {
		name           string
		withUser       bool
		body           string
		mockSetup      func(m *MockPasswordChanger)
		expectedCode   int
		expectedDetail string
	}{
		{
			name:     "success",
			withUser: true,
			body:     `{"current_password":"Secret123","password":"NewSecret123"}`,
			mockSetup: func(m *MockPasswordChanger) {
				m.EXPECT().ChangePassword(gomock.Any(), user, "Secret123", "NewSecret123").Return(nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:     "wrong current password",
			withUser: true,
			body:     `{"current_password":"nope","password":"NewSecret123"}`,
			mockSetup: func(m *MockPasswordChanger) {
				m.EXPECT().ChangePassword(gomock.Any(), user, "nope", "NewSecret123").Return(services.ErrWrongCurrentPassword)
			},
			expectedCode:   http.StatusForbidden,
			expectedDetail: "Current password is incorrect",
		},
		{
			name:     "store failure",
			withUser: true,
			body:     `{"current_password":"Secret123","password":"NewSecret123"}`,
			mockSetup: func(m *MockPasswordChanger) {
				m.EXPECT().ChangePassword(gomock.Any(), user, "Secret123", "NewSecret123").Return(errors.New("db down"))
			},
			expectedCode:   http.StatusInternalServerError,
			expectedDetail: "Internal server error",
		},
		{
			name:           "no user in context",
			body:           `{}`,
			mockSetup:      func(m *MockPasswordChanger) {},
			expectedCode:   http.StatusUnauthorized,
			expectedDetail: "Unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockSvc := NewMockPasswordChanger(ctrl)
			tt.mockSetup(mockSvc)

			req := httptest.NewRequest(http.MethodPatch, "/users/me/password", bytes.NewBufferString(tt.body))
			if tt.withUser {
				req = req.WithContext(utils.WithUser(req.Context(), user))
			}
			w := httptest.NewRecorder()
			NewChangePasswordHandler(mockSvc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedDetail != "" {
				var resp ErrorResponse
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedDetail, resp.Detail)
			}
		})
	}
}
