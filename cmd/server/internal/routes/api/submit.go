package api

import (
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lumenworks/submission-api/cmd/server/internal/response"
	"github.com/lumenworks/submission-api/cmd/server/internal/submit"
	"github.com/lumenworks/submission-api/internal/intake"
	"github.com/lumenworks/submission-api/internal/logger"
	"github.com/lumenworks/submission-api/internal/types"
)

const submitSuccessMessage = "Submission received. You are responsible for the accuracy of the details provided."

// Form field names accepted by SubmitEntry.
const (
	formScreenshot = "screenshot"
	formProject    = "project"
	formAdditional = "additional_screenshots"
)

func uploadFromHeader(header *multipart.FileHeader) (*intake.Upload, multipart.File, error) {
	file, err := header.Open()
	if err != nil {
		return nil, nil, err
	}

	return &intake.Upload{
		Content:     file,
		Name:        header.Filename,
		ContentType: header.Header.Get(echo.HeaderContentType),
	}, file, nil
}

// SubmitEntry ingests one multipart submission: metadata fields, a primary
// attachment in either the screenshot or the project slot, and any number of
// optional additional screenshots.
func (h *Handler) SubmitEntry(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "SubmitEntry")
	defer span.End()

	req := submit.Request{
		Fields: submit.Fields{
			LumenName:    c.FormValue("lumen_name"),
			PromptText:   c.FormValue("prompt_text"),
			AIUsed:       c.FormValue("ai_used"),
			AIAgent:      c.FormValue("ai_agent"),
			RewardAmount: c.FormValue("reward_amount"),
		},
	}

	var openFiles []multipart.File
	defer func() {
		for _, file := range openFiles {
			file.Close()
		}
	}()

	if header, err := c.FormFile(formScreenshot); err == nil && header.Filename != "" {
		up, file, err := uploadFromHeader(header)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to open screenshot part")
			return response.InternalServerError
		}

		openFiles = append(openFiles, file)
		req.Screenshot = up
	}

	if header, err := c.FormFile(formProject); err == nil && header.Filename != "" {
		up, file, err := uploadFromHeader(header)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to open project part")
			return response.InternalServerError
		}

		openFiles = append(openFiles, file)
		req.Project = up
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, header := range form.File[formAdditional] {
			up, file, err := uploadFromHeader(header)
			if err != nil {
				// secondary attachments are best effort, skip unreadable parts
				span.AddEvent("skipping unreadable additional screenshot", trace.WithAttributes(
					attribute.String("file.name", header.Filename),
				))
				continue
			}

			openFiles = append(openFiles, file)
			req.Additional = append(req.Additional, *up)
		}
	}

	created, err := h.submitter.Submit(ctx, req)
	if err != nil {
		if fieldErr, ok := types.AsFieldError(err); ok {
			span.RecordError(err)
			span.SetStatus(codes.Ok, "submission rejected")

			fields := map[string]string{fieldErr.Field: fieldErr.Reason}
			return echo.NewHTTPError(
				http.StatusBadRequest,
				types.Error{Message: fieldErr.Reason, Fields: &fields},
			)
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to store submission")
		logger.Logger.ErrorContext(ctx, "failed to store submission", "error", err)
		return response.InternalServerError
	}

	span.SetAttributes(attribute.Int64("submission.id", created.ID))
	span.SetStatus(codes.Ok, "submission stored")

	return c.JSON(http.StatusCreated, types.SubmitResponse{
		Message:      submitSuccessMessage,
		SubmissionID: created.ID,
	})
}
