package api

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/alexedwards/argon2id"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/lumenworks/submission-api/cmd/server/internal/response"
	"github.com/lumenworks/submission-api/internal/logger"
	"github.com/lumenworks/submission-api/internal/models"
	"github.com/lumenworks/submission-api/internal/types"
)

// Used when doing a fake compare in the error case of Login
var defaultHashForError string

// Generate a hash
func init() {
	var err error

	defaultHashForError, err = argon2id.CreateHash(
		"Vp2kq0S+dD0yjQkcmUH0BW3EOhP1qzhvCW4u/XDKwab11NLQRsiXUpM+vkxw5PuA8HM=",
		argon2id.DefaultParams,
	)
	if err != nil {
		logger.Logger.Error("error creating default hash", "error", err)
		os.Exit(1)
	}
}

// Does a fake hash and compare for a hard coded password. Used when Login
// hits a nonexistent username so the response timing matches a real compare.
func fakePasswordHash(ctx context.Context) {
	_, span := tracer.Start(ctx, "fakePasswordHash")
	defer span.End()

	_, err := argon2id.ComparePasswordAndHash("i am a very real password", defaultHashForError)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to compare fake password with default hash for error")
		return
	}

	span.AddEvent("compared fake password and default hash for error")
}

var invalidCredentialsError = echo.NewHTTPError(
	http.StatusUnauthorized,
	types.StringError("invalid username or password"),
)

// Login exchanges admin credentials for a bearer token.
func (h *Handler) Login(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Login")
	defer span.End()

	var request types.LoginRequest
	if err := c.Bind(&request); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "malformed login request")
		return echo.NewHTTPError(http.StatusBadRequest, types.StringError("malformed request"))
	}

	if err := c.Validate(&request); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "login request failed validation")
		return echo.NewHTTPError(
			http.StatusBadRequest,
			types.StringError("username and password are required"),
		)
	}

	span.SetAttributes(attribute.String("username", request.Username))

	db := h.DB.WithContext(ctx)

	span.AddEvent("resolving admin by username")
	admin, err := models.AdminByUsername(ctx, db, request.Username)
	if err != nil {
		span.RecordError(err)

		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Ok, "admin not found")

			// Keep unknown usernames on the same timing as bad passwords
			fakePasswordHash(ctx)
			return invalidCredentialsError
		}

		span.SetStatus(codes.Error, "db error resolving admin")
		return response.InternalServerError
	}

	span.AddEvent("checking password hash")
	match, err := argon2id.ComparePasswordAndHash(request.Password, admin.PasswordHash)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to compare password with stored hash")
		return response.InternalServerError
	}

	if !match {
		span.SetStatus(codes.Ok, "password mismatch")
		return invalidCredentialsError
	}

	token, err := h.tokens.Mint(admin.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to mint token")
		return response.InternalServerError
	}

	span.SetStatus(codes.Ok, "authenticated")
	logger.Logger.InfoContext(ctx, "admin logged in", "username", admin.Username)

	return c.JSON(http.StatusOK, types.LoginResponse{
		Token:   token,
		Message: "login successful",
	})
}

// Register creates a new admin account.
func (h *Handler) Register(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Register")
	defer span.End()

	var request types.RegisterRequest
	if err := c.Bind(&request); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "malformed register request")
		return echo.NewHTTPError(http.StatusBadRequest, types.StringError("malformed request"))
	}

	if err := c.Validate(&request); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "register request failed validation")
		return echo.NewHTTPError(http.StatusBadRequest, types.ValidationError(err))
	}

	span.SetAttributes(attribute.String("username", request.Username))

	db := h.DB.WithContext(ctx)

	taken, err := models.Exists[models.AdminUser](ctx, db, "username = ?", request.Username)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "db error checking username")
		return response.InternalServerError
	}

	if taken {
		span.SetStatus(codes.Ok, "username already exists")
		return echo.NewHTTPError(
			http.StatusBadRequest,
			types.StringError("username already exists"),
		)
	}

	hash, err := argon2id.CreateHash(request.Password, argon2id.DefaultParams)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to hash password")
		return response.InternalServerError
	}

	admin := models.AdminUser{
		Username:     request.Username,
		PasswordHash: hash,
	}
	if err := db.Create(&admin).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert admin")
		return response.InternalServerError
	}

	span.SetAttributes(attribute.Int64("admin.id", admin.ID))
	span.SetStatus(codes.Ok, "admin created")
	logger.Logger.InfoContext(ctx, "admin account created", "username", admin.Username)

	return c.JSON(http.StatusCreated, types.StringError("user registered successfully"))
}
