package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-credit-sum/internal/models"
	"github.com/sbilibin2017/gw-credit-sum/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestGuardService(t *testing.T) {
	userID := uuid.New()
	regular := &models.User{ID: userID, IsActive: true}
	admin := &models.User{ID: userID, IsActive: true, IsSuperuser: true}
	inactiveAdmin := &models.User{ID: userID, IsSuperuser: true}

	tests := []struct {
		name          string
		setup         func(tokens *services.MockTokenVerifier, users *services.MockUserReader)
		wantAuthErr   error
		wantSuperErr  error
		wantSuperUser bool
	}{
		{
			name: "invalid token",
			setup: func(tokens *services.MockTokenVerifier, users *services.MockUserReader) {
				tokens.EXPECT().GetUserID(gomock.Any(), "tok").Return(uuid.Nil, errors.New("expired")).Times(2)
			},
			wantAuthErr:  services.ErrUnauthenticated,
			wantSuperErr: services.ErrUnauthenticated,
		},
		{
			name: "unknown subject",
			setup: func(tokens *services.MockTokenVerifier, users *services.MockUserReader) {
				tokens.EXPECT().GetUserID(gomock.Any(), "tok").Return(userID, nil).Times(2)
				users.EXPECT().GetByID(gomock.Any(), userID).Return(nil, nil).Times(2)
			},
			wantAuthErr:  services.ErrUnauthenticated,
			wantSuperErr: services.ErrUnauthenticated,
		},
		{
			name: "inactive superuser",
			setup: func(tokens *services.MockTokenVerifier, users *services.MockUserReader) {
				tokens.EXPECT().GetUserID(gomock.Any(), "tok").Return(userID, nil).Times(2)
				users.EXPECT().GetByID(gomock.Any(), userID).Return(inactiveAdmin, nil).Times(2)
			},
			wantAuthErr:  services.ErrUnauthenticated,
			wantSuperErr: services.ErrUnauthenticated,
		},
		{
			name: "regular user",
			setup: func(tokens *services.MockTokenVerifier, users *services.MockUserReader) {
				tokens.EXPECT().GetUserID(gomock.Any(), "tok").Return(userID, nil).Times(2)
				users.EXPECT().GetByID(gomock.Any(), userID).Return(regular, nil).Times(2)
			},
			wantSuperErr: services.ErrForbidden,
		},
		{
			name: "superuser",
			setup: func(tokens *services.MockTokenVerifier, users *services.MockUserReader) {
				tokens.EXPECT().GetUserID(gomock.Any(), "tok").Return(userID, nil).Times(2)
				users.EXPECT().GetByID(gomock.Any(), userID).Return(admin, nil).Times(2)
			},
			wantSuperUser: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			tokens := services.NewMockTokenVerifier(ctrl)
			users := services.NewMockUserReader(ctrl)
			tt.setup(tokens, users)
			guard := services.NewGuardService(tokens, users)

			user, err := guard.RequireAuthenticated(context.Background(), "tok")
			if tt.wantAuthErr != nil {
				assert.ErrorIs(t, err, tt.wantAuthErr)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, userID, user.ID)
			}

			user, err = guard.RequireSuperuser(context.Background(), "tok")
			if tt.wantSuperErr != nil {
				assert.ErrorIs(t, err, tt.wantSuperErr)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantSuperUser, user.IsSuperuser)
			}
		})
	}
}
