package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lumenworks/submission-api/internal/types"
)

// Submission is one accepted entry. Append-only: no update path exists once a
// row is written.
type Submission struct {
	LumenName      string `gorm:"column:lumen_name"`
	PromptText     string `gorm:"column:prompt_text"`
	AIUsed         string `gorm:"column:ai_used"`
	ScreenshotPath string `gorm:"column:screenshot_path"`
	Model
	AIAgent               datatypes.Null[string] `gorm:"column:ai_agent"`
	AdditionalScreenshots datatypes.Null[string] `gorm:"column:additional_screenshots"`
	RewardAmount          float64                `gorm:"column:reward_amount"`
}

func (Submission) TableName() string {
	return "submissions"
}

func (s Submission) GetID() int64 {
	return s.ID
}

// Delimiter for the additional_screenshots column.
const screenshotDelimiter = ","

// SplitScreenshots expands the delimited column into an ordered list,
// trimming blanks and dropping empties.
func SplitScreenshots(joined string) []string {
	paths := []string{}
	for _, part := range strings.Split(joined, screenshotDelimiter) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		paths = append(paths, part)
	}

	return paths
}

func JoinScreenshots(paths []string) datatypes.Null[string] {
	if len(paths) == 0 {
		return datatypes.Null[string]{}
	}

	return NewNullFromData(strings.Join(paths, screenshotDelimiter))
}

// View renders the full record projection served by both listing endpoints.
func (s *Submission) View() types.SubmissionView {
	return types.SubmissionView{
		ID:                    s.ID,
		LumenName:             s.LumenName,
		PromptText:            s.PromptText,
		AIUsed:                s.AIUsed,
		AIAgent:               StringFromNull(s.AIAgent),
		RewardAmount:          s.RewardAmount,
		ScreenshotPath:        s.ScreenshotPath,
		AdditionalScreenshots: SplitScreenshots(StringFromNull(s.AdditionalScreenshots)),
		Timestamp:             s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

type ListParams struct {
	Search  string `query:"search"`
	SortBy  string `query:"sort_by"`
	Order   string `query:"order"`
	Page    int    `query:"page"`
	PerPage int    `query:"per_page"`
}

// Whitelisted sort keys; anything else falls back to timestamp.
var sortColumns = map[string]string{
	"reward_amount": "reward_amount",
	"lumen_name":    "lumen_name",
	"ai_agent":      "ai_agent",
	"timestamp":     "created_at",
}

func (p *ListParams) normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	if _, ok := sortColumns[p.SortBy]; !ok {
		p.SortBy = "timestamp"
	}
	if p.Order != "asc" {
		p.Order = "desc"
	}
}

// ListSubmissions runs the search/sort/paginate query. Pages past the end
// return an empty slice, not an error.
func ListSubmissions(
	ctx context.Context,
	db *gorm.DB,
	params ListParams,
) ([]Submission, types.Pagination, error) {
	ctx, span := tracer.Start(ctx, "ListSubmissions")
	defer span.End()

	params.normalize()

	span.SetAttributes(
		attribute.Int("page", params.Page),
		attribute.Int("per_page", params.PerPage),
		attribute.String("search", params.Search),
		attribute.String("sort_by", params.SortBy),
		attribute.String("order", params.Order),
	)

	query := db.WithContext(ctx).Model(&Submission{})

	if params.Search != "" {
		// Case sensitive substring match; a record matches when any of
		// the three fields contains the needle.
		needle := "%" + params.Search + "%"
		query = query.Where(
			"lumen_name LIKE ? OR ai_used LIKE ? OR ai_agent LIKE ?",
			needle, needle, needle,
		)
	}

	var total int64
	span.AddEvent("counting matching submissions")
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to count submissions")
		return nil, types.Pagination{}, fmt.Errorf("failed to count submissions: %w", err)
	}

	pages := int((total + int64(params.PerPage) - 1) / int64(params.PerPage))

	var submissions []Submission
	span.AddEvent("fetching submission page")
	err := query.
		Order(fmt.Sprintf("%s %s", sortColumns[params.SortBy], params.Order)).
		Limit(params.PerPage).
		Offset((params.Page - 1) * params.PerPage).
		Find(&submissions).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch submissions")
		return nil, types.Pagination{}, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("total", total),
		attribute.Int("returned", len(submissions)),
	)
	span.RecordError(nil)
	span.SetStatus(codes.Ok, "listed submissions")

	return submissions, types.Pagination{
		Page:    params.Page,
		Pages:   pages,
		PerPage: params.PerPage,
		Total:   total,
	}, nil
}
