package entity

// CreateSubmissionRequest - запрос на создание заявки
type CreateSubmissionRequest struct {
	FieldValues map[string]string `json:"field_values" validate:"required"`
}

// BeginReviewRequest - запрос на начало ревью
type BeginReviewRequest struct {
	SubmissionID string `json:"submission_id" validate:"required,uuid4"`
	Resume       bool   `json:"resume"` // Возобновить существующий черновик вместо ошибки конфликта
}

// SetScoreRequest - запрос на выставление оценки текущей категории.
// Диапазон значения проверяется мастером против конфигурации сообщества
type SetScoreRequest struct {
	CategoryID string `json:"category_id" validate:"required"`
	Value      *int   `json:"value" validate:"required"`
}

// AddNoteRequest - запрос на добавление заметки к категории
type AddNoteRequest struct {
	CategoryID string `json:"category_id" validate:"required"`
	Reference  string `json:"reference"`
	Feedback   string `json:"feedback" validate:"required"`
}

// UpdateConfigRequest - запрос на обновление конфигурации сообщества
type UpdateConfigRequest struct {
	Enabled              *bool            `json:"enabled"`
	SubmissionFields     []SubmissionField `json:"submission_fields"`
	ReviewCategories     []ReviewCategory  `json:"review_categories"`
	DMOnComplete         *bool            `json:"dm_on_complete"`
	LeaderboardEnabled   *bool            `json:"leaderboard_enabled"`
	ReviewTimeoutMinutes *int             `json:"review_timeout_minutes" validate:"omitempty,min=1,max=1440"`
}

// DraftStateResponse - текущее состояние мастера для отображения шага
type DraftStateResponse struct {
	SubmissionID  string          `json:"submission_id"`
	CurrentStep   int             `json:"current_step"`
	TotalSteps    int             `json:"total_steps"`
	SummaryStep   bool            `json:"summary_step"`
	Category      *ReviewCategory `json:"category,omitempty"` // nil на шаге Summary
	Scores        map[string]int  `json:"scores"`
	Notes         map[string]Note `json:"notes"`
	Version       int64           `json:"version"`
	LastTouchedAt string          `json:"last_touched_at"`
}

// SummaryRow - одна строка сводки ревью
type SummaryRow struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Score        *int   `json:"score,omitempty"` // nil, если категория не оценена
	Note         *Note  `json:"note,omitempty"`
}

// SummaryResponse - read-only сводка черновика перед публикацией
type SummaryResponse struct {
	SubmissionID string       `json:"submission_id"`
	Rows         []SummaryRow `json:"rows"`
	AverageScore float64      `json:"average_score"`
	ScoredCount  int          `json:"scored_count"`
}

// LeaderboardEntry - одна позиция лидерборда ревьюеров
type LeaderboardEntry struct {
	Rank              int     `json:"rank"`
	UserID            string  `json:"user_id"`
	TotalReviewsGiven int     `json:"total_reviews_given"`
	AverageScore      float64 `json:"average_score"`
}

// LeaderboardResponse - ответ на запрос лидерборда
type LeaderboardResponse struct {
	CommunityID string             `json:"community_id"`
	Entries     []LeaderboardEntry `json:"entries"`
}

// SubmissionListResponse - ответ со списком заявок
type SubmissionListResponse struct {
	Submissions []Submission `json:"submissions"`
	Total       int          `json:"total"`
}

// SessionListResponse - ответ со списком опубликованных ревью
type SessionListResponse struct {
	Sessions []ReviewSession `json:"sessions"`
	Total    int             `json:"total"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
