//go:build unit

package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"bookmarket/internal/domain/user"
	"bookmarket/internal/handler/api"
	"bookmarket/internal/handler/dto/response"
	"bookmarket/internal/pkg/config"
	"bookmarket/internal/pkg/cookie"
	"bookmarket/internal/usecase/commands"
	"bookmarket/tests/common/builder"
	"bookmarket/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type AuthHandlerTestSuite struct {
	suite.Suite
	router   *gin.Engine
	commands *fakeAuthCommands
}

func (s *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.commands = &fakeAuthCommands{}

	cfg := config.NewTestConfig()
	handler := api.NewAuthHandler(s.commands, cfg.Cookie, cfg.JWT)

	s.router.POST("/auth/register", handler.Register)
	s.router.POST("/auth/login", handler.Login)
	s.router.POST("/auth/logout", handler.Logout)
	s.router.GET("/auth/me", func(c *gin.Context) {
		// Stand-in for the auth middleware.
		if c.GetHeader("Authorization") != "" {
			c.Set("user_id", uuid.New())
		}
		handler.Me(c)
	})
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (s *AuthHandlerTestSuite) buildUser() *user.User {
	u, err := builder.NewUserBuilder().BuildDomain()
	s.Require().NoError(err)
	return u
}

func (s *AuthHandlerTestSuite) TestRegister() {
	url := "/auth/register"
	reqBody := gin.H{
		"email":        "reader@example.com",
		"password":     "correct-horse",
		"display_name": "Reader",
	}

	s.Run("success: returns 201 with the new account", func() {
		u := s.buildUser()
		s.commands.registerFn = func(_ context.Context, input commands.RegisterInput) (*user.User, error) {
			s.Equal("reader@example.com", input.Email)
			s.Equal("Reader", input.DisplayName)
			return u, nil
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		var resp response.UserResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &resp)
		s.Equal(u.Email().Value(), resp.Email)
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		testCases := []struct {
			name string
			body gin.H
		}{
			{name: "missing email", body: gin.H{"password": "correct-horse", "display_name": "Reader"}},
			{name: "invalid email", body: gin.H{"email": "not-an-email", "password": "correct-horse", "display_name": "Reader"}},
			{name: "short password", body: gin.H{"email": "reader@example.com", "password": "short", "display_name": "Reader"}},
			{name: "missing display name", body: gin.H{"email": "reader@example.com", "password": "correct-horse"}},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, tc.body, "")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
			})
		}
	})

	s.Run("error: 409 when the email is taken", func() {
		s.commands.registerFn = func(_ context.Context, _ commands.RegisterInput) (*user.User, error) {
			return nil, commands.ErrEmailTaken
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Email is already registered")
	})
}

func (s *AuthHandlerTestSuite) TestLogin() {
	url := "/auth/login"
	reqBody := gin.H{"email": "reader@example.com", "password": "correct-horse"}

	s.Run("success: returns 200 with token and sets the cookie", func() {
		u := s.buildUser()
		s.commands.loginFn = func(_ context.Context, email, rawPassword string) (string, *user.User, error) {
			s.Equal("reader@example.com", email)
			s.Equal("correct-horse", rawPassword)
			return "signed-token", u, nil
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		var resp response.LoginResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &resp)
		s.Equal("signed-token", resp.Token)
		s.Equal(u.Email().Value(), resp.User.Email)

		c := httptest.ExtractCookie(rec, cookie.AccessTokenCookieName)
		s.Require().NotNil(c)
		s.Equal("signed-token", c.Value)
		s.True(c.HttpOnly)
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name:           "invalid credentials",
				commandsError:  commands.ErrInvalidCredentials,
				expectedStatus: http.StatusUnauthorized,
				expectedMsg:    "Invalid email or password",
			},
			{
				name:           "inactive account",
				commandsError:  commands.ErrUserInactive,
				expectedStatus: http.StatusForbidden,
				expectedMsg:    "Account is inactive",
			},
			{
				name:           "internal error",
				commandsError:  errors.New("connection reset"),
				expectedStatus: http.StatusInternalServerError,
				expectedMsg:    "Internal server error",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.commands.loginFn = func(_ context.Context, _, _ string) (string, *user.User, error) {
					return "", nil, tc.commandsError
				}

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

func (s *AuthHandlerTestSuite) TestLogout() {
	s.Run("success: returns 204 and clears the cookie", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/auth/logout", nil, "token")
		s.Equal(http.StatusNoContent, rec.Code)

		c := httptest.ExtractCookie(rec, cookie.AccessTokenCookieName)
		s.Require().NotNil(c)
		s.Empty(c.Value)
	})
}

func (s *AuthHandlerTestSuite) TestMe() {
	url := "/auth/me"

	s.Run("success: returns 200 with the current user", func() {
		u := s.buildUser()
		s.commands.getCurrentUserFn = func(_ context.Context, _ uuid.UUID) (*user.User, error) {
			return u, nil
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "token")

		var resp response.UserResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &resp)
		s.Equal(u.Email().Value(), resp.Email)
	})

	s.Run("error: 401 without an authenticated user", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "User not authenticated")
	})

	s.Run("error: 404 when the account no longer exists", func() {
		s.commands.getCurrentUserFn = func(_ context.Context, _ uuid.UUID) (*user.User, error) {
			return nil, commands.ErrUserNotFound
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "User not found")
	})
}
