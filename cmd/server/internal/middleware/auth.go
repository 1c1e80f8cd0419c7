package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/lumenworks/submission-api/cmd/server/internal/response"
	"github.com/lumenworks/submission-api/cmd/server/internal/tokens"
	"github.com/lumenworks/submission-api/internal/models"
	"github.com/lumenworks/submission-api/internal/types"
)

const name string = "github.com/lumenworks/submission-api/server/middleware"

var tracer = otel.Tracer(name)

type Handler struct {
	DB     *gorm.DB
	Tokens *tokens.Service
}

// Queries a nonexistent admin from the database. Used to keep the invalid
// token path from timing differently than the unknown admin path.
func fakeDBQuery(ctx context.Context, db *gorm.DB) {
	ctx, span := tracer.Start(ctx, "fakeDBQuery")
	defer span.End()

	_, err := models.ByID[models.AdminUser](ctx, db, -1)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make fake db query")
		return
	}

	span.AddEvent("completed database query for fake id")
}

func authErrorResponse(kind types.AuthErrorKind) *echo.HTTPError {
	switch kind {
	case types.AuthMissing:
		return echo.NewHTTPError(http.StatusUnauthorized, types.StringError("token is missing"))
	case types.AuthExpired:
		return echo.NewHTTPError(
			http.StatusUnauthorized,
			types.StringError("your session has expired, please log in again"),
		)
	default:
		return echo.NewHTTPError(
			http.StatusUnauthorized,
			types.StringError("invalid authentication token"),
		)
	}
}

// BearerAuth verifies the Authorization bearer token and resolves the admin
// it was minted for. The admin is made available under the "admin" key; the
// gate is binary and does not authorize specific actions.
func (h *Handler) BearerAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, span := tracer.Start(c.Request().Context(), "BearerAuth")
			defer span.End()

			db := h.DB.WithContext(ctx)

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				span.RecordError(nil)
				span.SetStatus(codes.Ok, "no bearer token provided")
				return authErrorResponse(types.AuthMissing)
			}

			span.AddEvent("verifying bearer token")
			adminID, err := h.Tokens.Verify(token)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Ok, "token failed verification")

				// Keep rejected tokens on the same timing as unknown admins
				fakeDBQuery(ctx, db)

				var authErr *types.AuthError
				if errors.As(err, &authErr) {
					return authErrorResponse(authErr.Kind)
				}
				return authErrorResponse(types.AuthInvalid)
			}

			span.SetAttributes(attribute.Int64("admin.id", adminID))

			span.AddEvent("resolving admin identity")
			admin, err := models.ByID[models.AdminUser](ctx, db, adminID)
			if err != nil {
				span.RecordError(err)

				if errors.Is(err, gorm.ErrRecordNotFound) {
					// valid signature but no such admin
					span.SetStatus(codes.Ok, "admin not found")
					return authErrorResponse(types.AuthInvalid)
				}

				span.SetStatus(codes.Error, "db error resolving admin")
				return response.InternalServerError
			}

			span.AddEvent("successful authentication", trace.WithAttributes(
				attribute.String("admin.username", admin.Username),
			))
			c.Set("admin", admin)

			span.RecordError(nil)
			span.SetStatus(codes.Ok, "authenticated")
			return next(c)
		}
	}
}
