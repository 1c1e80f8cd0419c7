// Package submit orchestrates field validation, file intake and record
// creation for one submission. All validation failures are reported before
// any file is written; the tolerant secondary-screenshot path is the single
// intentional exception.
package submit

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/lumenworks/submission-api/internal/intake"
	"github.com/lumenworks/submission-api/internal/logger"
	"github.com/lumenworks/submission-api/internal/models"
	"github.com/lumenworks/submission-api/internal/types"
)

var tracer = otel.Tracer("github.com/lumenworks/submission-api/cmd/server/internal/submit")

const minRewardAmount = 0.01

type Fields struct {
	LumenName    string
	PromptText   string
	AIUsed       string
	AIAgent      string
	RewardAmount string
}

type Request struct {
	// Exactly one of Screenshot and Project must be present. When both
	// slots are somehow populated the screenshot wins.
	Screenshot *intake.Upload
	Project    *intake.Upload
	Additional []intake.Upload
	Fields     Fields
}

type Service struct {
	DB     *gorm.DB
	Intake *intake.Intake
}

func NewService(db *gorm.DB, in *intake.Intake) *Service {
	return &Service{DB: db, Intake: in}
}

// requiredFields in reporting order; all must be non-blank after trimming.
func (f *Fields) requiredFields() []struct{ name, value string } {
	return []struct{ name, value string }{
		{"lumen_name", f.LumenName},
		{"prompt_text", f.PromptText},
		{"ai_used", f.AIUsed},
		{"ai_agent", f.AIAgent},
		{"reward_amount", f.RewardAmount},
	}
}

func validateFields(fields *Fields) (float64, error) {
	for _, field := range fields.requiredFields() {
		if strings.TrimSpace(field.value) == "" {
			return 0, types.NewFieldError(field.name, "is required")
		}
	}

	reward, err := strconv.ParseFloat(strings.TrimSpace(fields.RewardAmount), 64)
	if err != nil {
		return 0, types.NewFieldError("reward_amount", "invalid reward amount")
	}
	if reward < minRewardAmount {
		return 0, types.NewFieldError("reward_amount", "reward amount must be at least 0.01")
	}

	if !types.IsAcceptedAITool(fields.AIUsed) {
		return 0, types.NewFieldError("ai_used", "invalid AI option selected")
	}

	return reward, nil
}

// Submit validates the payload, stores the attachments and persists one
// record. Returns the new record on success. Files written before a failed
// insert are not cleaned up; stored names are timestamped so the orphans
// cannot collide with later submissions.
func (s *Service) Submit(ctx context.Context, req Request) (*models.Submission, error) {
	ctx, span := tracer.Start(ctx, "Submit")
	defer span.End()

	span.AddEvent("validating submission fields")
	reward, err := validateFields(&req.Fields)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "rejected submission fields")
		return nil, err
	}

	primary := req.Screenshot
	category := intake.CategoryImage
	if primary == nil || strings.TrimSpace(primary.Name) == "" {
		primary = req.Project
		category = intake.CategoryArchive
	}
	if primary == nil || strings.TrimSpace(primary.Name) == "" {
		err := types.NewFieldError("attachment", "either a screenshot or project file is required")
		span.RecordError(err)
		span.SetStatus(codes.Ok, "no primary attachment provided")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("primary.name", primary.Name),
		attribute.String("primary.category", string(category)),
		attribute.Int("secondary.candidates", len(req.Additional)),
	)

	span.AddEvent("storing primary attachment")
	primaryPath, err := s.Intake.StorePrimary(ctx, *primary, category)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "primary attachment rejected or failed to store")
		return nil, err
	}

	span.AddEvent("storing secondary attachments")
	additionalPaths, err := s.Intake.StoreSecondary(ctx, req.Additional)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to store secondary attachments")
		return nil, err
	}

	submission := models.Submission{
		LumenName:             strings.TrimSpace(req.Fields.LumenName),
		PromptText:            req.Fields.PromptText,
		AIUsed:                req.Fields.AIUsed,
		AIAgent:               models.NewNullFromData(strings.TrimSpace(req.Fields.AIAgent)),
		RewardAmount:          reward,
		ScreenshotPath:        primaryPath,
		AdditionalScreenshots: models.JoinScreenshots(additionalPaths),
	}

	span.AddEvent("inserting submission record")
	err = s.DB.WithContext(ctx).Create(&submission).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert submission")
		return nil, fmt.Errorf("%w: failed to insert submission: %w", types.ErrPersistence, err)
	}

	span.SetAttributes(attribute.Int64("submission.id", submission.ID))
	logger.Logger.InfoContext(ctx, "new submission received",
		"submitter", submission.LumenName,
		"category", string(category),
		"submission_id", submission.ID,
	)

	span.AddEvent("submission accepted", trace.WithAttributes(
		attribute.Int("secondary.stored", len(additionalPaths)),
	))
	span.RecordError(nil)
	span.SetStatus(codes.Ok, "accepted submission")
	return &submission, nil
}
