package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/stretchr/testify/assert"

	servermiddleware "github.com/lumenworks/submission-api/cmd/server/internal/middleware"
	"github.com/lumenworks/submission-api/cmd/server/internal/routes"
	"github.com/lumenworks/submission-api/cmd/server/internal/routes/api"
	"github.com/lumenworks/submission-api/cmd/server/internal/submit"
	"github.com/lumenworks/submission-api/internal/intake"
	"github.com/lumenworks/submission-api/internal/logger"
	"github.com/lumenworks/submission-api/internal/models"
)

func (s *ServerTestSuite) lastSubmission() models.Submission {
	s.T().Helper()

	var submission models.Submission
	s.Require().
		NoError(s.tx.Order("id DESC").First(&submission).Error, "failed to fetch inserted submission")
	return submission
}

func (s *ServerTestSuite) Test_Submit_Screenshot() {
	status, body := s.doMultipart("/api/submit/", validSubmissionFields(), []filePart{
		pngPart("screenshot", "my screenshot.png"),
	})

	s.Equal(http.StatusCreated, status)
	s.Contains(body, "message")
	s.Contains(body, "submission_id")

	submission := s.lastSubmission()
	s.Equal("frank", submission.LumenName)
	s.Equal("Claude", submission.AIUsed)
	s.True(submission.AIAgent.Valid)
	s.Equal("Claude Code", submission.AIAgent.V)
	s.InDelta(9.99, submission.RewardAmount, 0.0001)
	s.Contains(submission.ScreenshotPath, "_screenshot_my_screenshot.png")
	s.False(submission.AdditionalScreenshots.Valid)

	// the blob should exist on disk under the configured upload dir
	stored := filepath.Join(s.config.Upload.Dir, filepath.Base(submission.ScreenshotPath))
	_, err := os.Stat(stored)
	s.NoError(err, "stored screenshot missing on disk")
}

func (s *ServerTestSuite) Test_Submit_Project() {
	status, body := s.doMultipart("/api/submit/", validSubmissionFields(), []filePart{
		{
			field:       "project",
			filename:    "demo.zip",
			contentType: "application/zip",
			content:     "PK\x03\x04",
		},
	})

	s.Equal(http.StatusCreated, status)
	s.Contains(body, "submission_id")

	submission := s.lastSubmission()
	s.Contains(submission.ScreenshotPath, "_project_demo.zip")
}

// The screenshot slot wins when both attachments are provided.
func (s *ServerTestSuite) Test_Submit_ScreenshotPrecedence() {
	status, _ := s.doMultipart("/api/submit/", validSubmissionFields(), []filePart{
		pngPart("screenshot", "shot.png"),
		{
			field:       "project",
			filename:    "demo.zip",
			contentType: "application/zip",
			content:     "PK\x03\x04",
		},
	})

	s.Equal(http.StatusCreated, status)
	s.Contains(s.lastSubmission().ScreenshotPath, "_screenshot_shot.png")
}

func (s *ServerTestSuite) Test_Submit_AdditionalScreenshots() {
	status, _ := s.doMultipart("/api/submit/", validSubmissionFields(), []filePart{
		pngPart("screenshot", "primary.png"),
		pngPart("additional_screenshots", "extra one.png"),
		{
			field:       "additional_screenshots",
			filename:    "malware.exe",
			contentType: "application/octet-stream",
			content:     "MZ",
		},
		{
			field:       "additional_screenshots",
			filename:    "extra2.jpg",
			contentType: "image/jpeg",
			content:     "fake jpg",
		},
	})

	s.Equal(http.StatusCreated, status)

	submission := s.lastSubmission()
	s.Require().True(submission.AdditionalScreenshots.Valid)

	// invalid secondaries are skipped, valid ones land in order
	paths := models.SplitScreenshots(submission.AdditionalScreenshots.V)
	s.Require().Len(paths, 2)
	s.Contains(paths[0], "_additional_1_extra_one.png")
	s.Contains(paths[1], "_additional_3_extra2.jpg")
}

func (s *ServerTestSuite) Test_Submit_Rejections() {
	tests := []struct {
		name   string
		mutate func(fields map[string]string)
		files  []filePart
		field  string
	}{
		{
			name:   "MissingLumenName",
			mutate: func(f map[string]string) { f["lumen_name"] = "   " },
			files:  []filePart{pngPart("screenshot", "a.png")},
			field:  "lumen_name",
		},
		{
			name:   "MissingPromptText",
			mutate: func(f map[string]string) { delete(f, "prompt_text") },
			files:  []filePart{pngPart("screenshot", "a.png")},
			field:  "prompt_text",
		},
		{
			name:   "MissingAIAgent",
			mutate: func(f map[string]string) { delete(f, "ai_agent") },
			files:  []filePart{pngPart("screenshot", "a.png")},
			field:  "ai_agent",
		},
		{
			name:   "RewardNotANumber",
			mutate: func(f map[string]string) { f["reward_amount"] = "abc" },
			files:  []filePart{pngPart("screenshot", "a.png")},
			field:  "reward_amount",
		},
		{
			name:   "RewardZero",
			mutate: func(f map[string]string) { f["reward_amount"] = "0.00" },
			files:  []filePart{pngPart("screenshot", "a.png")},
			field:  "reward_amount",
		},
		{
			name:   "RewardNegative",
			mutate: func(f map[string]string) { f["reward_amount"] = "-1" },
			files:  []filePart{pngPart("screenshot", "a.png")},
			field:  "reward_amount",
		},
		{
			name:   "UnknownAITool",
			mutate: func(f map[string]string) { f["ai_used"] = "SkyNet" },
			files:  []filePart{pngPart("screenshot", "a.png")},
			field:  "ai_used",
		},
		{
			name:   "NoAttachment",
			mutate: func(_ map[string]string) {},
			files:  nil,
			field:  "attachment",
		},
		{
			name:   "ScreenshotWrongExtension",
			mutate: func(_ map[string]string) {},
			files: []filePart{
				{
					field:       "screenshot",
					filename:    "anim.gif",
					contentType: "image/gif",
					content:     "GIF89a",
				},
			},
			field: "screenshot",
		},
		{
			name:   "ProjectWrongExtension",
			mutate: func(_ map[string]string) {},
			files: []filePart{
				{
					field:       "project",
					filename:    "src.rar",
					contentType: "application/octet-stream",
					content:     "Rar!",
				},
			},
			field: "project",
		},
		{
			name:   "ScreenshotContentTypeMismatch",
			mutate: func(_ map[string]string) {},
			files: []filePart{
				{
					field:       "screenshot",
					filename:    "fake.png",
					contentType: "text/html",
					content:     "<html>",
				},
			},
			field: "screenshot",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			fields := validSubmissionFields()
			tt.mutate(fields)

			status, body := s.doMultipart("/api/submit/", fields, tt.files)

			s.Equal(http.StatusBadRequest, status)
			s.Require().Contains(body, "fields")
			assert.Contains(s.T(), body["fields"].(map[string]any), tt.field)
		})
	}
}

func (s *ServerTestSuite) Test_Submit_TrimsLumenName() {
	fields := validSubmissionFields()
	fields["lumen_name"] = "  grace  "

	status, _ := s.doMultipart("/api/submit/", fields, []filePart{pngPart("screenshot", "g.png")})

	s.Equal(http.StatusCreated, status)
	s.Equal("grace", s.lastSubmission().LumenName)
}

func (s *ServerTestSuite) Test_Submit_BodyLimit() {
	// second server with a tight limit so the test body stays small
	e, err := routes.BuildEcho(logger.Logger, "1K")
	s.Require().NoError(err, "failed to construct router")

	submitService := submit.NewService(s.tx, intake.New(intake.NewDiskStore(s.config.Upload.Dir)))
	middlewareHandler := servermiddleware.Handler{DB: s.tx, Tokens: s.tokens}
	apiHandler := api.NewHandler(s.tx, submitService, s.tokens, s.config)
	apiHandler.AddRoutes(e, &middlewareHandler)

	server := httptest.NewServer(e)
	defer server.Close()

	body, contentType := multipartBody(s.T(), validSubmissionFields(), []filePart{
		{
			field:       "screenshot",
			filename:    "big.png",
			contentType: "image/png",
			content:     strings.Repeat("x", 4096),
		},
	})

	req, err := http.NewRequestWithContext(
		s.T().Context(),
		http.MethodPost,
		server.URL+"/api/submit/",
		body,
	)
	s.Require().NoError(err, "failed to build request")
	req.Header.Set("Content-Type", contentType)

	resp, err := server.Client().Do(req)
	s.Require().NoError(err, "request failed")
	defer resp.Body.Close()

	s.Equal(http.StatusRequestEntityTooLarge, resp.StatusCode)
}
