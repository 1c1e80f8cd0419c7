package main

import (
	"net/http"
)

func (s *ServerTestSuite) listSubmissions(path string) ([]any, map[string]any) {
	s.T().Helper()

	status, body := s.doJSON(http.MethodGet, path, s.adminToken(), nil)
	s.Require().Equal(http.StatusOK, status, "unexpected status: %v", body)

	s.Require().Contains(body, "submissions")
	s.Require().Contains(body, "pagination")

	return body["submissions"].([]any), body["pagination"].(map[string]any)
}

func lumenNames(rows []any) []string {
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.(map[string]any)["lumen_name"].(string))
	}
	return names
}

func (s *ServerTestSuite) Test_ListSubmissions_Defaults() {
	rows, pagination := s.listSubmissions("/api/submissions/")

	// newest first
	s.Equal([]string{"erin", "dave", "carol", "bob", "alice"}, lumenNames(rows))

	s.EqualValues(1, pagination["page"])
	s.EqualValues(1, pagination["pages"])
	s.EqualValues(10, pagination["per_page"])
	s.EqualValues(5, pagination["total"])

	first := rows[0].(map[string]any)
	s.Equal("Other", first["ai_used"])
	s.Equal("", first["ai_agent"])
	s.InDelta(0.01, first["reward_amount"].(float64), 0.0001)
	s.NotEmpty(first["timestamp"])
	s.NotEmpty(first["screenshot_path"])

	second := rows[1].(map[string]any)
	s.Equal("Copilot", second["ai_agent"])
}

func (s *ServerTestSuite) Test_ListSubmissions_Search() {
	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{name: "ByLumenName", search: "alice", want: []string{"alice"}},
		{name: "ByAITool", search: "Gemini", want: []string{"carol"}},
		{name: "ByAgent", search: "Copilot", want: []string{"dave"}},
		{name: "NoMatch", search: "zzz", want: []string{}},
		{name: "CaseSensitive", search: "ALICE", want: []string{}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rows, pagination := s.listSubmissions("/api/submissions/?search=" + tt.search)

			s.Equal(tt.want, lumenNames(rows))
			s.EqualValues(len(tt.want), pagination["total"])
		})
	}
}

func (s *ServerTestSuite) Test_ListSubmissions_Sort() {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "RewardAscending",
			query: "?sort_by=reward_amount&order=asc",
			want:  []string{"erin", "carol", "alice", "bob", "dave"},
		},
		{
			name:  "RewardDefaultsDescending",
			query: "?sort_by=reward_amount",
			want:  []string{"dave", "bob", "alice", "carol", "erin"},
		},
		{
			name:  "LumenNameAscending",
			query: "?sort_by=lumen_name&order=asc",
			want:  []string{"alice", "bob", "carol", "dave", "erin"},
		},
		{
			name:  "UnknownKeyFallsBackToTimestamp",
			query: "?sort_by=password_hash",
			want:  []string{"erin", "dave", "carol", "bob", "alice"},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rows, _ := s.listSubmissions("/api/submissions/" + tt.query)
			s.Equal(tt.want, lumenNames(rows))
		})
	}
}

func (s *ServerTestSuite) Test_ListSubmissions_Pagination() {
	rows, pagination := s.listSubmissions("/api/submissions/?per_page=2")
	s.Equal([]string{"erin", "dave"}, lumenNames(rows))
	s.EqualValues(3, pagination["pages"])
	s.EqualValues(5, pagination["total"])

	rows, _ = s.listSubmissions("/api/submissions/?per_page=2&page=2")
	s.Equal([]string{"carol", "bob"}, lumenNames(rows))

	// beyond the last page is empty, not an error
	rows, pagination = s.listSubmissions("/api/submissions/?per_page=2&page=99")
	s.Empty(rows)
	s.EqualValues(5, pagination["total"])

	// nonsense values are normalized instead of rejected
	rows, pagination = s.listSubmissions("/api/submissions/?per_page=500&page=0")
	s.Len(rows, 5)
	s.EqualValues(1, pagination["page"])
	s.EqualValues(100, pagination["per_page"])
}

func (s *ServerTestSuite) Test_PublicSubmissions_NoAuthRequired() {
	status, body := s.doJSON(http.MethodGet, "/api/public/submissions/", "", nil)

	s.Equal(http.StatusOK, status)
	s.Require().Contains(body, "submissions")
	s.Len(body["submissions"].([]any), 5)
}

// Rows written before the optional columns existed still list cleanly with
// zero values in those fields.
func (s *ServerTestSuite) Test_ListSubmissions_LegacySchema() {
	s.Require().NoError(
		s.tx.Exec("ALTER TABLE submissions DROP COLUMN ai_agent, DROP COLUMN additional_screenshots").Error,
	)
	s.Require().NoError(
		s.tx.Exec(
			`INSERT INTO submissions (lumen_name, prompt_text, ai_used, reward_amount, screenshot_path, created_at)
			 VALUES ('legacy', 'old row', 'Claude', 3.50, 'uploads/legacy.png', '2020-01-01T00:00:00Z')`,
		).Error,
	)

	rows, pagination := s.listSubmissions("/api/submissions/")
	s.EqualValues(6, pagination["total"])

	var legacy map[string]any
	for _, row := range rows {
		if row.(map[string]any)["lumen_name"] == "legacy" {
			legacy = row.(map[string]any)
		}
	}

	s.Require().NotNil(legacy, "legacy row missing from listing")
	s.Equal("", legacy["ai_agent"])
	s.Empty(legacy["additional_screenshots"])
}
