package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FieldKind определяет тип поля формы заявки
type FieldKind string

const (
	FieldKindShortText FieldKind = "short_text"
	FieldKindParagraph FieldKind = "paragraph"
	FieldKindURL       FieldKind = "url"
)

// SubmissionField описывает одно поле формы заявки
type SubmissionField struct {
	ID                string    `json:"id"`
	Label             string    `json:"label"`
	Kind              FieldKind `json:"kind"`
	Required          bool      `json:"required"`
	Placeholder       string    `json:"placeholder,omitempty"`
	ValidationPattern string    `json:"validation_pattern,omitempty"` // Необязательный regex для значения поля
}

// ReviewCategory описывает одну оцениваемую категорию ревью
type ReviewCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MinScore    int    `json:"min_score"`
	MaxScore    int    `json:"max_score"`
	AllowNotes  bool   `json:"allow_notes"`
}

// ReviewConfig - конфигурация ревью для одного сообщества.
// Черновик снимает себе только таймаут; категории мастер читает
// из живой конфигурации на каждом шаге
type ReviewConfig struct {
	CommunityID          string       `json:"community_id" gorm:"type:varchar(64);primaryKey"`
	Enabled              bool         `json:"enabled" gorm:"not null;default:false"`
	SubmissionFields     FieldList    `json:"submission_fields" gorm:"type:jsonb"`
	ReviewCategories     CategoryList `json:"review_categories" gorm:"type:jsonb"`
	DMOnComplete         bool         `json:"dm_on_complete" gorm:"not null;default:true"`
	LeaderboardEnabled   bool         `json:"leaderboard_enabled" gorm:"not null;default:true"`
	ReviewTimeoutMinutes int          `json:"review_timeout_minutes" gorm:"not null;default:15"`
	CreatedAt            time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt            time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName указывает имя таблицы для GORM
func (ReviewConfig) TableName() string {
	return "review_configs"
}

// CategoryByID находит категорию конфигурации по её идентификатору
func (c *ReviewConfig) CategoryByID(id string) (*ReviewCategory, bool) {
	for i := range c.ReviewCategories {
		if c.ReviewCategories[i].ID == id {
			return &c.ReviewCategories[i], true
		}
	}
	return nil, false
}

// FieldByID находит поле формы по идентификатору
func (c *ReviewConfig) FieldByID(id string) (*SubmissionField, bool) {
	for i := range c.SubmissionFields {
		if c.SubmissionFields[i].ID == id {
			return &c.SubmissionFields[i], true
		}
	}
	return nil, false
}

// Validate проверяет инварианты конфигурации:
// уникальность идентификаторов и min_score <= max_score
func (c *ReviewConfig) Validate() error {
	fieldIDs := make(map[string]struct{}, len(c.SubmissionFields))
	for _, f := range c.SubmissionFields {
		if f.ID == "" {
			return Validationf("submission field id is required")
		}
		if _, dup := fieldIDs[f.ID]; dup {
			return Validationf("duplicate submission field id %q", f.ID)
		}
		fieldIDs[f.ID] = struct{}{}

		switch f.Kind {
		case FieldKindShortText, FieldKindParagraph, FieldKindURL:
		default:
			return Validationf("unknown field kind %q for field %q", f.Kind, f.ID)
		}
	}

	categoryIDs := make(map[string]struct{}, len(c.ReviewCategories))
	for _, cat := range c.ReviewCategories {
		if cat.ID == "" {
			return Validationf("review category id is required")
		}
		if _, dup := categoryIDs[cat.ID]; dup {
			return Validationf("duplicate review category id %q", cat.ID)
		}
		categoryIDs[cat.ID] = struct{}{}

		if cat.MinScore > cat.MaxScore {
			return Validationf("category %q: min_score %d exceeds max_score %d", cat.ID, cat.MinScore, cat.MaxScore)
		}
	}

	if c.ReviewTimeoutMinutes < 0 {
		return Validationf("review_timeout_minutes must not be negative")
	}

	return nil
}

// DefaultConfig создает конфигурацию по умолчанию для нового сообщества
func DefaultConfig(communityID string) *ReviewConfig {
	return &ReviewConfig{
		CommunityID: communityID,
		Enabled:     false,
		SubmissionFields: FieldList{
			{
				ID:          "content_link",
				Label:       "Content Link",
				Kind:        FieldKindURL,
				Required:    true,
				Placeholder: "https://example.com/replay/123",
			},
			{
				ID:          "context",
				Label:       "Context",
				Kind:        FieldKindShortText,
				Required:    false,
				Placeholder: "What would you like feedback on?",
			},
		},
		ReviewCategories: CategoryList{
			{
				ID:          "overall",
				Name:        "Overall",
				Description: "How well does the submission hold up overall?",
				MinScore:    1,
				MaxScore:    5,
				AllowNotes:  true,
			},
		},
		DMOnComplete:         true,
		LeaderboardEnabled:   true,
		ReviewTimeoutMinutes: 15,
	}
}

// SubmissionStatus представляет статусы заявки.
// Переходы строго монотонные: pending -> in_review -> completed
type SubmissionStatus string

const (
	SubmissionStatusPending   SubmissionStatus = "pending"
	SubmissionStatusInReview  SubmissionStatus = "in_review"
	SubmissionStatusCompleted SubmissionStatus = "completed"
)

// Submission представляет заявку на ревью
type Submission struct {
	ID          uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	CommunityID string           `json:"community_id" gorm:"type:varchar(64);not null;index"`
	SubmitterID string           `json:"submitter_id" gorm:"type:varchar(64);not null;index"`
	FieldValues StringMap        `json:"field_values" gorm:"type:jsonb"`
	Status      SubmissionStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	ReviewerID  *string          `json:"reviewer_id,omitempty" gorm:"type:varchar(64)"` // Устанавливается при публикации ревью
	CreatedAt   time.Time        `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (Submission) TableName() string {
	return "submissions"
}

// Note - заметка ревьюера к конкретной категории
type Note struct {
	Reference string `json:"reference"` // Таймкод, раздел или иной контекст
	Feedback  string `json:"feedback"`
}

// DraftKey - составной ключ черновика: ровно один живой черновик
// на пару (ревьюер, заявка) внутри сообщества
type DraftKey struct {
	CommunityID  string
	ReviewerID   string
	SubmissionID string
}

// RedisKey возвращает ключ черновика в Redis
func (k DraftKey) RedisKey() string {
	return fmt.Sprintf("review_draft:%s:%s:%s", k.CommunityID, k.ReviewerID, k.SubmissionID)
}

func (k DraftKey) String() string {
	return k.CommunityID + ":" + k.ReviewerID + ":" + k.SubmissionID
}

// ReviewDraft - эфемерное состояние незавершенного ревью.
// Принадлежит ровно одному ревьюеру, живет в Draft Store до публикации,
// отмены или истечения таймаута
type ReviewDraft struct {
	CommunityID    string          `json:"community_id"`
	ReviewerID     string          `json:"reviewer_id"`
	SubmissionID   string          `json:"submission_id"`
	SubmitterID    string          `json:"submitter_id"`
	CurrentStep    int             `json:"current_step"` // len(categories) означает шаг Summary
	Scores         map[string]int  `json:"scores"`
	Notes          map[string]Note `json:"notes"`
	TimeoutMinutes int             `json:"timeout_minutes"` // Снимок review_timeout_minutes на момент начала
	Version        int64           `json:"version"`         // Оптимистичная версия: каждый мутатор увеличивает на 1
	CreatedAt      time.Time       `json:"created_at"`
	LastTouchedAt  time.Time       `json:"last_touched_at"`
}

// Key возвращает составной ключ черновика
func (d *ReviewDraft) Key() DraftKey {
	return DraftKey{
		CommunityID:  d.CommunityID,
		ReviewerID:   d.ReviewerID,
		SubmissionID: d.SubmissionID,
	}
}

// Timeout возвращает горизонт бездействия черновика
func (d *ReviewDraft) Timeout() time.Duration {
	minutes := d.TimeoutMinutes
	if minutes <= 0 {
		minutes = 15
	}
	return time.Duration(minutes) * time.Minute
}

// Expired сообщает, истек ли черновик к моменту now
func (d *ReviewDraft) Expired(now time.Time) bool {
	return now.Sub(d.LastTouchedAt) >= d.Timeout()
}

// Clone возвращает глубокую копию черновика.
// Мастер работает только с копиями: операция либо возвращает новый
// черновик, либо ошибку, исходный не изменяется
func (d *ReviewDraft) Clone() *ReviewDraft {
	clone := *d
	clone.Scores = make(map[string]int, len(d.Scores))
	for k, v := range d.Scores {
		clone.Scores[k] = v
	}
	clone.Notes = make(map[string]Note, len(d.Notes))
	for k, v := range d.Notes {
		clone.Notes[k] = v
	}
	return &clone
}

// ReviewSession - неизменяемая запись опубликованного ревью
type ReviewSession struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SubmissionID uuid.UUID `json:"submission_id" gorm:"type:uuid;not null;index"`
	CommunityID  string    `json:"community_id" gorm:"type:varchar(64);not null;index"`
	ReviewerID   string    `json:"reviewer_id" gorm:"type:varchar(64);not null;index"`
	SubmitterID  string    `json:"submitter_id" gorm:"type:varchar(64);not null"`
	Scores       ScoreMap  `json:"scores" gorm:"type:jsonb"`
	Notes        NoteMap   `json:"notes" gorm:"type:jsonb"`
	CreatedAt    time.Time `json:"created_at"`
	CompletedAt  time.Time `json:"completed_at"`
}

// TableName указывает имя таблицы для GORM
func (ReviewSession) TableName() string {
	return "review_sessions"
}

// AverageScore возвращает средний балл по всем оцененным категориям
func (s *ReviewSession) AverageScore() float64 {
	if len(s.Scores) == 0 {
		return 0
	}
	var sum int
	for _, v := range s.Scores {
		sum += v
	}
	return float64(sum) / float64(len(s.Scores))
}

// ReviewEvent представляет событие публикации ревью для Kafka
type ReviewEvent struct {
	EventType    string    `json:"event_type"` // REVIEW_PUBLISHED
	SessionID    string    `json:"session_id"`
	SubmissionID string    `json:"submission_id"`
	CommunityID  string    `json:"community_id"`
	ReviewerID   string    `json:"reviewer_id"`
	SubmitterID  string    `json:"submitter_id"`
	AverageScore float64   `json:"average_score"`
	Timestamp    time.Time `json:"timestamp"`
}

// EventReviewPublished - тип события для консьюмеров (уведомления, лидерборд)
const EventReviewPublished = "REVIEW_PUBLISHED"

// SubmissionSummary - краткая запись заявки для истории профиля
type SubmissionSummary struct {
	SubmissionID string    `json:"submission_id"`
	AverageScore float64   `json:"average_score"`
	Date         time.Time `json:"date"`
}

// Пороги наград за количество выданных ревью
const (
	BadgeBronzeReviewer = "bronze_reviewer"
	BadgeSilverReviewer = "silver_reviewer"
	BadgeGoldReviewer   = "gold_reviewer"

	bronzeReviewThreshold = 5
	silverReviewThreshold = 25
	goldReviewThreshold   = 100
)

// UserProfile хранит накопительную статистику пользователя в сообществе.
// Мутируется только внутри транзакции Publish Coordinator
type UserProfile struct {
	UserID            string     `json:"user_id" gorm:"type:varchar(64);primaryKey"`
	CommunityID       string     `json:"community_id" gorm:"type:varchar(64);primaryKey"`
	TotalSubmissions  int        `json:"total_submissions" gorm:"not null;default:0"`
	TotalReviewsGiven int        `json:"total_reviews_given" gorm:"not null;default:0"`
	AverageScore      float64    `json:"average_score" gorm:"not null;default:0"`
	ScoreCount        int        `json:"score_count" gorm:"not null;default:0"` // Знаменатель точного скользящего среднего
	CategoryAverages  FloatMap   `json:"category_averages" gorm:"type:jsonb"`
	CategoryCounts    IntMap     `json:"category_counts" gorm:"type:jsonb"`
	Badges            StringList `json:"badges" gorm:"type:jsonb"`
	FirstReviewAt     *time.Time `json:"first_review_at,omitempty"`
	SubmissionHistory HistoryList `json:"submission_history" gorm:"type:jsonb"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName указывает имя таблицы для GORM
func (UserProfile) TableName() string {
	return "user_profiles"
}

// ApplyScores включает новые оценки во взвешенные скользящие средние.
// Формула (A*n + S) / (n + k) ассоциативна: повторное применение
// эквивалентно агрегации всех оценок за один проход
func (p *UserProfile) ApplyScores(scores map[string]int) {
	if len(scores) == 0 {
		return
	}

	var sum int
	for _, v := range scores {
		sum += v
	}
	n := p.ScoreCount
	k := len(scores)
	p.AverageScore = (p.AverageScore*float64(n) + float64(sum)) / float64(n+k)
	p.ScoreCount = n + k

	if p.CategoryAverages == nil {
		p.CategoryAverages = make(FloatMap)
	}
	if p.CategoryCounts == nil {
		p.CategoryCounts = make(IntMap)
	}
	for catID, score := range scores {
		cn := p.CategoryCounts[catID]
		p.CategoryAverages[catID] = (p.CategoryAverages[catID]*float64(cn) + float64(score)) / float64(cn+1)
		p.CategoryCounts[catID] = cn + 1
	}
}

// RecordReview обновляет статистику ревьюера после публикации
func (p *UserProfile) RecordReview(scores map[string]int, completedAt time.Time) {
	p.TotalReviewsGiven++
	if p.FirstReviewAt == nil {
		t := completedAt
		p.FirstReviewAt = &t
	}
	p.ApplyScores(scores)
	p.awardReviewBadges()
}

// ReceiveReview обновляет статистику автора заявки после публикации ревью.
// total_submissions здесь не трогаем: он увеличивается при создании заявки
func (p *UserProfile) ReceiveReview(session *ReviewSession) {
	p.ApplyScores(session.Scores)
	p.SubmissionHistory = append(p.SubmissionHistory, SubmissionSummary{
		SubmissionID: session.SubmissionID.String(),
		AverageScore: session.AverageScore(),
		Date:         session.CompletedAt,
	})
}

func (p *UserProfile) awardReviewBadges() {
	switch p.TotalReviewsGiven {
	case bronzeReviewThreshold:
		p.addBadge(BadgeBronzeReviewer)
	case silverReviewThreshold:
		p.addBadge(BadgeSilverReviewer)
	case goldReviewThreshold:
		p.addBadge(BadgeGoldReviewer)
	}
}

func (p *UserProfile) addBadge(badge string) {
	for _, b := range p.Badges {
		if b == badge {
			return
		}
	}
	p.Badges = append(p.Badges, badge)
}
