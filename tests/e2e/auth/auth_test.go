//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	"affiliate-notify/internal/domain/user"
	"affiliate-notify/internal/handler/dto/request"
	resdto "affiliate-notify/internal/handler/dto/response"
	"affiliate-notify/internal/usecase/queries"
	"affiliate-notify/tests/common/authtest"
	"affiliate-notify/tests/common/dbtest"
	"affiliate-notify/tests/common/httptest"
	"affiliate-notify/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	registerURL = "/api/auth/register"
	loginURL    = "/api/auth/login"
	logoutURL   = "/api/auth/logout"
	refreshURL  = "/api/auth/refresh"
	meURL       = "/api/auth/me"

	password = "password123"
)

type authSuite struct {
	e2e.SharedSuite
	jwt *authtest.JWTHelper
}

func TestAuthSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(authSuite))
}

func (s *authSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.jwt = authtest.NewJWTHelper(s.Config.JWT)
}

func (s *authSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()

	dbtest.CreateTestUser(s.T(), s.DB, "admin@example.com", string(user.RoleAdmin))
	dbtest.CreateTestUser(s.T(), s.DB, "curator@example.com", string(user.RoleCurator))
	dbtest.CreateTestUser(s.T(), s.DB, "shopper@example.com", string(user.RoleShopper))
	dbtest.CreateTestUser(s.T(), s.DB, "inactive@example.com", string(user.RoleShopper))

	_, err := s.DB.Exec(s.T().Context(), "UPDATE users SET is_active = false WHERE email = 'inactive@example.com'")
	require.NoError(s.T(), err)
}

func (s *authSuite) TestRegister() {
	s.Run("new account starts as shopper", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, registerURL,
			request.RegisterRequest{Email: "new@example.com", Password: password}, "")

		require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())
		body := httptest.DecodeJSON[resdto.LoginResponse](s.T(), w)
		s.NotEmpty(body.AccessToken)
		s.Equal(string(user.RoleShopper), body.User.Role)
		s.NotNil(httptest.ExtractCookie(w, "access_token"))
	})

	s.Run("duplicate email is rejected", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, registerURL,
			request.RegisterRequest{Email: "shopper@example.com", Password: password}, "")

		httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "Email already registered")
	})

	s.Run("short password fails validation", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, registerURL,
			map[string]string{"email": "short@example.com", "password": "abc"}, "")

		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *authSuite) TestLogin() {
	tests := []struct {
		name     string
		email    string
		password string
		want     int
	}{
		{name: "admin", email: "admin@example.com", password: password, want: http.StatusOK},
		{name: "curator", email: "curator@example.com", password: password, want: http.StatusOK},
		{name: "shopper", email: "shopper@example.com", password: password, want: http.StatusOK},
		{name: "unknown email", email: "nobody@example.com", password: password, want: http.StatusUnauthorized},
		{name: "wrong password", email: "shopper@example.com", password: "wrongpassword", want: http.StatusUnauthorized},
		{name: "inactive account", email: "inactive@example.com", password: password, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, loginURL,
				request.LoginRequest{Email: tt.email, Password: tt.password}, "")

			require.Equal(s.T(), tt.want, w.Code, w.Body.String())
			if tt.want != http.StatusOK {
				return
			}
			body := httptest.DecodeJSON[resdto.LoginResponse](s.T(), w)
			s.Equal(tt.email, body.User.Email)
			access := httptest.ExtractCookie(w, "access_token")
			refresh := httptest.ExtractCookie(w, "refresh_token")
			require.NotNil(s.T(), access)
			require.NotNil(s.T(), refresh)
			s.True(access.HttpOnly)
			s.Equal(body.AccessToken, access.Value)
		})
	}
}

func (s *authSuite) TestMe() {
	s.Run("returns the caller", func() {
		token := authtest.LoginUser(s.T(), s.Router, "curator@example.com", password)

		w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, meURL, nil, token)

		require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
		me := httptest.DecodeJSON[queries.CurrentUserView](s.T(), w)
		s.Equal("curator@example.com", me.Email)
		s.Equal(string(user.RoleCurator), me.Role)
		s.NotNil(me.LastLogin)
		s.Zero(me.OpenRequests)
		s.Zero(me.FulfilledRequests)
	})

	s.Run("expired token", func() {
		id := dbtest.CreateTestUser(s.T(), s.DB, "shopper@example.com", string(user.RoleShopper))
		token := s.jwt.CreateExpiredToken(s.T(), id, user.RoleShopper)

		w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, meURL, nil, token)

		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("token for a deleted user", func() {
		token := s.jwt.GenerateToken(s.T(), uuid.New(), user.RoleShopper)

		w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, meURL, nil, token)

		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("no token", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, meURL, nil, "")

		s.Equal(http.StatusUnauthorized, w.Code)
	})
}

func (s *authSuite) TestRefresh() {
	s.Run("cookie issues a new pair", func() {
		login := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, loginURL,
			request.LoginRequest{Email: "shopper@example.com", Password: password}, "")
		require.Equal(s.T(), http.StatusOK, login.Code)

		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, refreshURL, nil, "",
			httptest.WithCookies(httptest.ExtractCookie(login, "refresh_token")))

		require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
		body := httptest.DecodeJSON[resdto.RefreshResponse](s.T(), w)
		s.NotEmpty(body.AccessToken)
		s.NotEmpty(body.RefreshToken)
	})

	s.Run("body token is accepted", func() {
		id := dbtest.CreateTestUser(s.T(), s.DB, "admin@example.com", string(user.RoleAdmin))
		token := s.jwt.GenerateRefreshToken(s.T(), id, user.RoleAdmin)

		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, refreshURL,
			request.RefreshRequest{RefreshToken: token}, "")

		s.Equal(http.StatusOK, w.Code, w.Body.String())
	})

	s.Run("access token cannot refresh", func() {
		id := dbtest.CreateTestUser(s.T(), s.DB, "admin@example.com", string(user.RoleAdmin))
		token := s.jwt.GenerateToken(s.T(), id, user.RoleAdmin)

		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, refreshURL,
			request.RefreshRequest{RefreshToken: token}, "")

		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("inactive account", func() {
		id := dbtest.CreateTestUser(s.T(), s.DB, "inactive@example.com", string(user.RoleShopper))
		token := s.jwt.GenerateRefreshToken(s.T(), id, user.RoleShopper)

		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, refreshURL,
			request.RefreshRequest{RefreshToken: token}, "")

		s.Equal(http.StatusForbidden, w.Code)
	})

	s.Run("missing token", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, refreshURL, nil, "")

		s.Equal(http.StatusUnauthorized, w.Code)
	})
}

func (s *authSuite) TestLogout() {
	s.Run("clears both cookies", func() {
		login := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, loginURL,
			request.LoginRequest{Email: "shopper@example.com", Password: password}, "")
		require.Equal(s.T(), http.StatusOK, login.Code)

		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, logoutURL, nil, "",
			httptest.WithCookies(login.Result().Cookies()...))

		require.Equal(s.T(), http.StatusNoContent, w.Code)
		for _, name := range []string{"access_token", "refresh_token"} {
			c := httptest.ExtractCookie(w, name)
			require.NotNil(s.T(), c, name)
			assert.Empty(s.T(), c.Value)
			assert.Negative(s.T(), c.MaxAge)
		}
	})

	s.Run("requires authentication", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, logoutURL, nil, "")

		s.Equal(http.StatusUnauthorized, w.Code)
	})
}
