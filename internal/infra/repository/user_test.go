//go:build unit

package repository

import (
	"context"
	"testing"

	"affiliate-notify/internal/infra"
	"affiliate-notify/internal/infra/sqlstore"
	"affiliate-notify/tests/common/builder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserWriteQueries struct {
	mock.Mock
}

func (m *MockUserWriteQueries) CreateUser(ctx context.Context, db sqlstore.DBTX, arg sqlstore.CreateUserParams) (sqlstore.Users, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).(sqlstore.Users), args.Error(1)
}

func (m *MockUserWriteQueries) UpdateUserLastLogin(ctx context.Context, db sqlstore.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, db, id)
	return args.Error(0)
}

func TestCreateUser(t *testing.T) {
	u, err := builder.NewUserBuilder().WithRole("curator").BuildDomain()
	require.NoError(t, err)

	tests := []struct {
		name      string
		mockError error
		wantKind  infra.RepositoryErrorKind
	}{
		{name: "success"},
		{name: "duplicate email", mockError: &pgconn.PgError{Code: "23505"}, wantKind: infra.KindDuplicateKey},
		{name: "database error", mockError: assert.AnError, wantKind: infra.KindDBFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockQueries := new(MockUserWriteQueries)
			mockQueries.On("CreateUser", mock.Anything, mock.Anything, mock.MatchedBy(func(p sqlstore.CreateUserParams) bool {
				return p.Email == "test@example.com" && p.Role == "curator" && p.IsActive
			})).Return(sqlstore.Users{ID: u.ID()}, tt.mockError)

			id, err := NewUserRepository(mockQueries, nil).Create(context.Background(), nil, u)

			if tt.wantKind != "" {
				assert.True(t, infra.IsKind(err, tt.wantKind))
				assert.Equal(t, uuid.Nil, id)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, u.ID(), id)
			}
			mockQueries.AssertExpectations(t)
		})
	}
}

func TestUpdateLastLogin(t *testing.T) {
	testUserID := uuid.New()

	tests := []struct {
		name      string
		mockError error
		wantError bool
	}{
		{name: "success"},
		{name: "database error", mockError: assert.AnError, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockQueries := new(MockUserWriteQueries)
			mockQueries.On("UpdateUserLastLogin", mock.Anything, mock.Anything, testUserID).Return(tt.mockError)

			err := NewUserRepository(mockQueries, nil).UpdateLastLogin(context.Background(), nil, testUserID)

			if tt.wantError {
				assert.True(t, infra.IsKind(err, infra.KindDBFailure))
			} else {
				assert.NoError(t, err)
			}
			mockQueries.AssertExpectations(t)
		})
	}
}
