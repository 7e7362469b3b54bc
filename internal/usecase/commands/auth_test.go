//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"affiliate-notify/internal/domain/user"
	"affiliate-notify/internal/infra"
	"affiliate-notify/internal/infra/sqlstore"
	"affiliate-notify/internal/pkg/errs"
	"affiliate-notify/internal/pkg/jwt"
	"affiliate-notify/internal/pkg/password"
	"affiliate-notify/internal/usecase/commands"
	"affiliate-notify/internal/usecase/shared"
	"affiliate-notify/tests/common/builder"
	queriesmock "affiliate-notify/tests/mock/queries"
	sharedmock "affiliate-notify/tests/mock/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	uow       *sharedmock.MockUnitOfWork
	tx        *sharedmock.MockTx
	users     *sharedmock.MockUserRepository
	readStore *queriesmock.MockUserReadStore
	jwt       *jwt.Service
	cmds      commands.AuthCommands
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &authFixture{
		uow:       sharedmock.NewMockUnitOfWork(ctrl),
		tx:        sharedmock.NewMockTx(ctrl),
		users:     sharedmock.NewMockUserRepository(ctrl),
		readStore: queriesmock.NewMockUserReadStore(ctrl),
		jwt:       jwt.NewService("unit-test-secret", 15*time.Minute, 24*time.Hour),
	}
	f.uow.EXPECT().Within(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, shared.Tx) error) error {
			return fn(ctx, f.tx)
		}).AnyTimes()
	f.tx.EXPECT().Users().Return(f.users).AnyTimes()
	f.tx.EXPECT().DB().Return(nil).AnyTimes()
	f.cmds = commands.NewAuthCommandsWithCost(f.uow, f.readStore, f.jwt, bcrypt.MinCost)
	return f
}

func TestRegister(t *testing.T) {
	t.Run("creates a shopper and issues tokens", func(t *testing.T) {
		f := newAuthFixture(t)
		newID := uuid.New()
		f.users.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ sqlstore.DBTX, u *user.User) (uuid.UUID, error) {
				assert.Equal(t, "new@example.com", u.Email().Value())
				assert.Equal(t, user.RoleShopper, u.Role())
				assert.NoError(t, password.ComparePassword(u.PasswordHash(), "password123"))
				return newID, nil
			})

		res, err := f.cmds.Register(context.Background(), builder.NewAuthBuilder().With(func(b *builder.AuthBuilder) {
			b.Email = "New@Example.com"
		}).BuildRegisterDTO())

		require.NoError(t, err)
		assert.Equal(t, newID, res.UserID)
		assert.Equal(t, user.RoleShopper, res.Role)
		claims, err := f.jwt.ValidateToken(res.TokenPair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, newID, claims.UserID)
		assert.Equal(t, jwt.TokenTypeAccess, claims.TokenType)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(uuid.Nil, infra.WrapRepoErr("insert user", nil, infra.KindDuplicateKey))

		_, err := f.cmds.Register(context.Background(), builder.NewAuthBuilder().BuildRegisterDTO())

		assert.ErrorIs(t, err, commands.ErrEmailTaken)
	})

	t.Run("invalid email is rejected before touching storage", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.cmds.Register(context.Background(), builder.NewAuthBuilder().With(func(b *builder.AuthBuilder) {
			b.Email = "not-an-email"
		}).BuildRegisterDTO())

		assert.True(t, errs.Is(err, commands.ErrInvalidRegistration))
	})
}

func TestLogin(t *testing.T) {
	hash, err := password.HashPasswordWithCost("password123", bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		f := newAuthFixture(t)
		view := builder.NewUserBuilder().BuildReadModel()
		f.readStore.EXPECT().FindByEmail(gomock.Any(), "test@example.com").Return(view, hash, nil)
		f.users.EXPECT().UpdateLastLogin(gomock.Any(), gomock.Any(), view.ID).Return(nil)

		res, err := f.cmds.Login(context.Background(), builder.NewAuthBuilder().BuildDTO())

		require.NoError(t, err)
		assert.Equal(t, view.ID, res.UserID)
		assert.NotEmpty(t, res.TokenPair.RefreshToken)
	})

	t.Run("last login failure does not fail the login", func(t *testing.T) {
		f := newAuthFixture(t)
		view := builder.NewUserBuilder().BuildReadModel()
		f.readStore.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(view, hash, nil)
		f.users.EXPECT().UpdateLastLogin(gomock.Any(), gomock.Any(), view.ID).Return(errors.New("timeout"))

		_, err := f.cmds.Login(context.Background(), builder.NewAuthBuilder().BuildDTO())

		assert.NoError(t, err)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		f := newAuthFixture(t)
		view := builder.NewUserBuilder().BuildReadModel()
		f.readStore.EXPECT().FindByEmail(gomock.Any(), "test@example.com").Return(view, hash, nil)
		f.readStore.EXPECT().FindByEmail(gomock.Any(), "nobody@example.com").
			Return(nil, "", infra.WrapRepoErr("user not found", nil, infra.KindNotFound))

		_, wrongPassword := f.cmds.Login(context.Background(), builder.NewAuthBuilder().With(func(b *builder.AuthBuilder) {
			b.Password = "password124"
		}).BuildDTO())
		_, unknown := f.cmds.Login(context.Background(), builder.NewAuthBuilder().With(func(b *builder.AuthBuilder) {
			b.Email = "nobody@example.com"
		}).BuildDTO())

		assert.ErrorIs(t, wrongPassword, commands.ErrInvalidCredentials)
		assert.ErrorIs(t, unknown, commands.ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		f := newAuthFixture(t)
		view := builder.NewUserBuilder().AsInactive().BuildReadModel()
		f.readStore.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(view, hash, nil)

		_, err := f.cmds.Login(context.Background(), builder.NewAuthBuilder().BuildDTO())

		assert.ErrorIs(t, err, commands.ErrUserInactive)
	})
}

func TestRefreshToken(t *testing.T) {
	t.Run("rotates the pair with the stored role", func(t *testing.T) {
		f := newAuthFixture(t)
		view := builder.NewUserBuilder().WithRole("curator").BuildReadModel()
		refresh, err := f.jwt.GenerateRefreshToken(view.ID, user.RoleShopper)
		require.NoError(t, err)
		f.readStore.EXPECT().FindByID(gomock.Any(), view.ID).Return(view, nil)

		pair, err := f.cmds.RefreshToken(context.Background(), refresh)

		require.NoError(t, err)
		claims, err := f.jwt.ValidateToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "curator", claims.Role)
	})

	t.Run("access token is not accepted", func(t *testing.T) {
		f := newAuthFixture(t)
		access, err := f.jwt.GenerateAccessToken(uuid.New(), user.RoleShopper)
		require.NoError(t, err)

		_, err = f.cmds.RefreshToken(context.Background(), access)

		assert.True(t, errs.Is(err, commands.ErrTokenValidation), err)
	})

	t.Run("garbage token", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.cmds.RefreshToken(context.Background(), "not.a.jwt")

		assert.True(t, errs.Is(err, commands.ErrTokenValidation))
	})

	t.Run("deactivated user", func(t *testing.T) {
		f := newAuthFixture(t)
		view := builder.NewUserBuilder().AsInactive().BuildReadModel()
		refresh, err := f.jwt.GenerateRefreshToken(view.ID, user.RoleShopper)
		require.NoError(t, err)
		f.readStore.EXPECT().FindByID(gomock.Any(), view.ID).Return(view, nil)

		_, err = f.cmds.RefreshToken(context.Background(), refresh)

		assert.ErrorIs(t, err, commands.ErrUserInactive)
	})
}
