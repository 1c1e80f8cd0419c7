package main

import (
	"net/http"
	"time"

	"github.com/lumenworks/submission-api/cmd/server/internal/tokens"
	"github.com/lumenworks/submission-api/internal/models"
	"github.com/lumenworks/submission-api/internal/types"
)

func (s *ServerTestSuite) Test_Login() {
	status, body := s.doJSON(http.MethodPost, "/api/login/", "", types.LoginRequest{
		Username: adminUsername,
		Password: adminPassword,
	})

	s.Equal(http.StatusOK, status)
	s.Contains(body, "token")
	s.NotEmpty(body["token"])
	s.Contains(body["message"], "login successful")

	// the issued token opens the gated listing
	status, listBody := s.doJSON(
		http.MethodGet,
		"/api/submissions/",
		body["token"].(string),
		nil,
	)
	s.Equal(http.StatusOK, status)
	s.Contains(listBody, "submissions")
}

func (s *ServerTestSuite) Test_Login_Rejections() {
	tests := []struct {
		name           string
		payload        types.LoginRequest
		expectedStatus int
	}{
		{
			name:           "WrongPassword",
			payload:        types.LoginRequest{Username: adminUsername, Password: "nope"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "UnknownUser",
			payload: types.LoginRequest{
				Username: "ghost",
				Password: adminPassword,
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "MissingPassword",
			payload:        types.LoginRequest{Username: adminUsername},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "MissingUsername",
			payload:        types.LoginRequest{Password: adminPassword},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			status, body := s.doJSON(http.MethodPost, "/api/login/", "", tt.payload)

			s.Equal(tt.expectedStatus, status)
			s.Contains(body, "message")
			s.NotContains(body, "token")
		})
	}
}

func (s *ServerTestSuite) Test_BearerGate() {
	expiredToken, err := tokens.NewService(testJWTSecret, -time.Minute).Mint(adminSeed.ID)
	s.Require().NoError(err)

	foreignToken, err := tokens.NewService("some other secret", time.Hour).Mint(adminSeed.ID)
	s.Require().NoError(err)

	unknownAdminToken, err := s.tokens.Mint(999999)
	s.Require().NoError(err)

	tests := []struct {
		name            string
		bearer          string
		messageFragment string
	}{
		{name: "NoToken", bearer: "", messageFragment: "token is missing"},
		{name: "Garbage", bearer: "not-a-jwt", messageFragment: "invalid authentication token"},
		{name: "Expired", bearer: expiredToken, messageFragment: "session has expired"},
		{name: "WrongSecret", bearer: foreignToken, messageFragment: "invalid authentication token"},
		{
			name:            "UnknownAdmin",
			bearer:          unknownAdminToken,
			messageFragment: "invalid authentication token",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			status, body := s.doJSON(http.MethodGet, "/api/submissions/", tt.bearer, nil)

			s.Equal(http.StatusUnauthorized, status)
			s.Contains(body["message"], tt.messageFragment)
		})
	}
}

func (s *ServerTestSuite) Test_Register() {
	status, body := s.doJSON(http.MethodPost, "/api/register/", "", types.RegisterRequest{
		Username: "second-admin",
		Password: "sufficiently long",
	})

	s.Equal(http.StatusCreated, status)
	s.Contains(body["message"], "registered")

	var admin models.AdminUser
	s.Require().NoError(s.tx.Where("username = ?", "second-admin").First(&admin).Error)
	s.NotEqual("sufficiently long", admin.PasswordHash, "password must be stored hashed")

	// the new account can log in straight away
	status, body = s.doJSON(http.MethodPost, "/api/login/", "", types.LoginRequest{
		Username: "second-admin",
		Password: "sufficiently long",
	})
	s.Equal(http.StatusOK, status)
	s.NotEmpty(body["token"])
}

func (s *ServerTestSuite) Test_Register_Rejections() {
	tests := []struct {
		name    string
		payload types.RegisterRequest
	}{
		{
			name:    "DuplicateUsername",
			payload: types.RegisterRequest{Username: adminUsername, Password: "long enough pw"},
		},
		{
			name:    "ShortPassword",
			payload: types.RegisterRequest{Username: "new-admin", Password: "short"},
		},
		{
			name:    "MissingUsername",
			payload: types.RegisterRequest{Password: "long enough pw"},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			status, body := s.doJSON(http.MethodPost, "/api/register/", "", tt.payload)

			s.Equal(http.StatusBadRequest, status)
			s.Contains(body, "message")
		})
	}
}
