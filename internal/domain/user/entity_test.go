//go:build unit

package user_test

import (
	"testing"

	"affiliate-notify/internal/domain/user"
	"affiliate-notify/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cmpOpts = []cmp.Option{
	cmpopts.IgnoreUnexported(user.User{}),
	cmpopts.EquateEmpty(),
}

type testCase struct {
	name   string
	mutate func(*builder.UserBuilder)
	errIs  error
}

func TestUser(t *testing.T) {
	t.Run("new user is an active shopper", func(t *testing.T) {
		actual, err := builder.NewUserBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		email, _ := user.NewEmail("test@example.com")
		expected := user.NewUser(email, "hashed_password", user.RoleShopper)

		if diff := cmp.Diff(expected, actual, cmpOpts...); diff != "" {
			t.Errorf("User mismatch (-want +got):\n%s", diff)
		}

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, user.RoleShopper, actual.Role())
		assert.True(t, actual.IsActive())
		assert.Nil(t, actual.LastLogin())
	})

	t.Run("email is normalized", func(t *testing.T) {
		actual, err := builder.NewUserBuilder().WithEmail("  Mixed.Case@Example.COM ").BuildDomain()

		require.NoError(t, err)
		assert.Equal(t, "mixed.case@example.com", actual.Email().Value())
	})

	t.Run("email validation", func(t *testing.T) {
		runCases(t, []testCase{
			{name: "valid email", mutate: func(b *builder.UserBuilder) { b.WithEmail("valid@example.com") }},
			{name: "plus addressing", mutate: func(b *builder.UserBuilder) { b.WithEmail("deals+laptops@example.in") }},
			{name: "empty", mutate: func(b *builder.UserBuilder) { b.WithEmail("") }, errIs: user.ErrInvalidEmail},
			{name: "no at sign", mutate: func(b *builder.UserBuilder) { b.WithEmail("invalidemail.com") }, errIs: user.ErrInvalidEmail},
			{name: "no tld", mutate: func(b *builder.UserBuilder) { b.WithEmail("user@localhost") }, errIs: user.ErrInvalidEmail},
		})
	})

	t.Run("role validation", func(t *testing.T) {
		runCases(t, []testCase{
			{name: "shopper", mutate: func(b *builder.UserBuilder) { b.WithRole("shopper") }},
			{name: "curator", mutate: func(b *builder.UserBuilder) { b.WithRole("curator") }},
			{name: "admin", mutate: func(b *builder.UserBuilder) { b.WithRole("admin") }},
			{name: "unknown role", mutate: func(b *builder.UserBuilder) { b.WithRole("operator") }, errIs: user.ErrInvalidRole},
			{name: "case matters", mutate: func(b *builder.UserBuilder) { b.WithRole("Admin") }, errIs: user.ErrInvalidRole},
			{name: "empty role", mutate: func(b *builder.UserBuilder) { b.WithRole("") }, errIs: user.ErrInvalidRole},
		})
	})
}

func TestPassword(t *testing.T) {
	_, err := user.NewPassword("short")
	assert.ErrorIs(t, err, user.ErrPasswordTooWeak)

	p, err := user.NewPassword("longenough")
	require.NoError(t, err)
	assert.Equal(t, "longenough", p.Value())
}

func TestMaskEmail(t *testing.T) {
	email, err := user.NewEmail("Shopper@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "s***@example.com", email.Masked())

	assert.Equal(t, "***", user.MaskEmail("not-an-address"))
	assert.Equal(t, "***", user.MaskEmail("@example.com"))
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewUserBuilder().With(c.mutate).BuildDomain()

			if c.errIs == nil {
				require.NotNil(t, actual)
				require.NoError(t, err)
			} else {
				require.Nil(t, actual)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}
