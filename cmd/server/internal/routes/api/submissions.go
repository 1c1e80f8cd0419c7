package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lumenworks/submission-api/cmd/server/internal/response"
	"github.com/lumenworks/submission-api/internal/models"
	"github.com/lumenworks/submission-api/internal/types"
)

// ListSubmissions is the authenticated admin listing.
func (h *Handler) ListSubmissions(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "ListSubmissions")
	defer span.End()

	if admin, ok := c.Get("admin").(*models.AdminUser); ok {
		span.SetAttributes(attribute.String("admin.username", admin.Username))
	}

	return h.listSubmissions(ctx, c)
}

// ListPublicSubmissions serves the same listing without authentication. Kept
// as its own handler so the public projection can diverge without touching
// the admin path.
func (h *Handler) ListPublicSubmissions(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "ListPublicSubmissions")
	defer span.End()

	return h.listSubmissions(ctx, c)
}

func (h *Handler) listSubmissions(ctx context.Context, c echo.Context) error {
	span := trace.SpanFromContext(ctx)

	var params models.ListParams
	if err := c.Bind(&params); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "malformed query parameters")
		return echo.NewHTTPError(
			http.StatusBadRequest,
			types.StringError("malformed query parameters"),
		)
	}

	db := h.DB.WithContext(ctx)

	items, pagination, err := models.ListSubmissions(ctx, db, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query submissions")
		return response.InternalServerError
	}

	views := make([]types.SubmissionView, 0, len(items))
	for i := range items {
		views = append(views, items[i].View())
	}

	span.SetAttributes(
		attribute.Int("submissions.page_count", len(views)),
		attribute.Int64("submissions.total", pagination.Total),
	)
	span.SetStatus(codes.Ok, "listed submissions")

	return c.JSON(http.StatusOK, types.SubmissionListResponse{
		Submissions: views,
		Pagination:  pagination,
	})
}
