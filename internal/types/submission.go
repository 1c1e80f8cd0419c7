package types

type (
	// SubmissionView is the projection returned by both the admin and the
	// public listing. The two endpoints render identical fields today; the
	// split call sites exist so redaction can land on the public one later.
	SubmissionView struct {
		ID                    int64    `json:"id"                     validate:"required"`
		LumenName             string   `json:"lumen_name"             validate:"required"`
		PromptText            string   `json:"prompt_text"            validate:"required"`
		AIUsed                string   `json:"ai_used"                validate:"required"`
		AIAgent               string   `json:"ai_agent"`
		RewardAmount          float64  `json:"reward_amount"          validate:"required"`
		ScreenshotPath        string   `json:"screenshot_path"        validate:"required"`
		AdditionalScreenshots []string `json:"additional_screenshots"`
		Timestamp             string   `json:"timestamp"              validate:"required"`
	}

	Pagination struct {
		Page    int   `json:"page"     validate:"required,min=1"`
		Pages   int   `json:"pages"    validate:"min=0"`
		PerPage int   `json:"per_page" validate:"required,min=1,max=100"`
		Total   int64 `json:"total"    validate:"min=0"`
	}

	SubmissionListResponse struct {
		Submissions []SubmissionView `json:"submissions" validate:"required"`
		Pagination  Pagination       `json:"pagination"  validate:"required"`
	}

	SubmitResponse struct {
		Message      string `json:"message"       validate:"required"`
		SubmissionID int64  `json:"submission_id" validate:"required"`
	}

	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token   string `json:"token"   validate:"required"`
		Message string `json:"message" validate:"required"`
	}

	RegisterRequest struct {
		Username string `json:"username" validate:"required,max=80"`
		Password string `json:"password" validate:"required,min=8"`
	}
)

// Accepted values for the ai_used field.
var AcceptedAITools = []string{"GPT-5", "Claude", "LLaMA", "Gemini", "Perplexity", "Other"}

func IsAcceptedAITool(tool string) bool {
	for _, t := range AcceptedAITools {
		if tool == t {
			return true
		}
	}

	return false
}
