// Package wizard реализует чистую машину состояний пошагового ревью.
// Каждая операция - функция (конфигурация, черновик, ввод) -> (новый черновик | ошибка),
// без какого-либо I/O: хранением черновиков занимается репозиторий
package wizard

import (
	"time"

	"reviewflow/internal/app/review/entity"
)

// Begin создает черновик на шаге Step(0) для пары (ревьюер, заявка).
// Проверку "черновик уже существует" выполняет Draft Store через
// compare-and-create: здесь только инварианты самой заявки
func Begin(cfg *entity.ReviewConfig, submission *entity.Submission, reviewerID string, now time.Time) (*entity.ReviewDraft, error) {
	if len(cfg.ReviewCategories) == 0 {
		return nil, entity.Validationf("no review categories configured for community %s", cfg.CommunityID)
	}
	if submission.Status == entity.SubmissionStatusCompleted {
		return nil, entity.InvalidStatef("submission %s is already completed", submission.ID)
	}
	if submission.SubmitterID == reviewerID {
		return nil, entity.InvalidStatef("reviewers cannot review their own submission")
	}

	return &entity.ReviewDraft{
		CommunityID:    submission.CommunityID,
		ReviewerID:     reviewerID,
		SubmissionID:   submission.ID.String(),
		SubmitterID:    submission.SubmitterID,
		CurrentStep:    0,
		Scores:         make(map[string]int),
		Notes:          make(map[string]entity.Note),
		TimeoutMinutes: cfg.ReviewTimeoutMinutes,
		Version:        1,
		CreatedAt:      now,
		LastTouchedAt:  now,
	}, nil
}

// SetScore выставляет оценку категории. Шаг не меняется
func SetScore(cfg *entity.ReviewConfig, draft *entity.ReviewDraft, categoryID string, value int, now time.Time) (*entity.ReviewDraft, error) {
	category, ok := cfg.CategoryByID(categoryID)
	if !ok {
		return nil, entity.Validationf("unknown review category %q", categoryID)
	}
	if value < category.MinScore || value > category.MaxScore {
		return nil, entity.Validationf("score %d is outside the allowed range %d-%d for %q",
			value, category.MinScore, category.MaxScore, category.ID)
	}

	next := touch(draft, now)
	next.Scores[categoryID] = value
	return next, nil
}

// AddNote добавляет или заменяет заметку категории
func AddNote(cfg *entity.ReviewConfig, draft *entity.ReviewDraft, categoryID string, note entity.Note, now time.Time) (*entity.ReviewDraft, error) {
	category, ok := cfg.CategoryByID(categoryID)
	if !ok {
		return nil, entity.Validationf("unknown review category %q", categoryID)
	}
	if !category.AllowNotes {
		return nil, entity.Validationf("notes are not allowed for category %q", category.ID)
	}
	if note.Feedback == "" {
		return nil, entity.Validationf("note feedback must not be empty")
	}

	next := touch(draft, now)
	next.Notes[categoryID] = note
	return next, nil
}

// Advance переводит Step(i) -> Step(i+1), последний шаг -> Summary.
// Неоцененная категория не блокирует переход: пропуски разрешены,
// публикация требует хотя бы одну оценку
func Advance(cfg *entity.ReviewConfig, draft *entity.ReviewDraft, now time.Time) (*entity.ReviewDraft, error) {
	if IsSummary(cfg, draft) {
		return nil, entity.InvalidStatef("already at the summary step")
	}

	next := touch(draft, now)
	next.CurrentStep++
	return next, nil
}

// Retreat переводит Step(i) -> Step(i-1); на Step(0) ничего не делает.
// Со сводки возвращает на последнюю категорию (действие "Edit")
func Retreat(cfg *entity.ReviewConfig, draft *entity.ReviewDraft, now time.Time) (*entity.ReviewDraft, error) {
	if draft.CurrentStep == 0 {
		return draft, nil
	}

	next := touch(draft, now)
	next.CurrentStep--
	return next, nil
}

// IsSummary сообщает, находится ли черновик на шаге сводки
func IsSummary(cfg *entity.ReviewConfig, draft *entity.ReviewDraft) bool {
	return draft.CurrentStep >= len(cfg.ReviewCategories)
}

// CurrentCategory возвращает категорию текущего шага; nil на шаге Summary
func CurrentCategory(cfg *entity.ReviewConfig, draft *entity.ReviewDraft) *entity.ReviewCategory {
	if draft.CurrentStep < 0 || draft.CurrentStep >= len(cfg.ReviewCategories) {
		return nil
	}
	return &cfg.ReviewCategories[draft.CurrentStep]
}

// Summary собирает read-only сводку черновика по порядку категорий конфигурации
func Summary(cfg *entity.ReviewConfig, draft *entity.ReviewDraft) *entity.SummaryResponse {
	rows := make([]entity.SummaryRow, 0, len(cfg.ReviewCategories))
	var sum, scored int

	for _, category := range cfg.ReviewCategories {
		row := entity.SummaryRow{
			CategoryID:   category.ID,
			CategoryName: category.Name,
		}
		if score, ok := draft.Scores[category.ID]; ok {
			v := score
			row.Score = &v
			sum += score
			scored++
		}
		if note, ok := draft.Notes[category.ID]; ok {
			n := note
			row.Note = &n
		}
		rows = append(rows, row)
	}

	var avg float64
	if scored > 0 {
		avg = float64(sum) / float64(scored)
	}

	return &entity.SummaryResponse{
		SubmissionID: draft.SubmissionID,
		Rows:         rows,
		AverageScore: avg,
		ScoredCount:  scored,
	}
}

// touch возвращает копию черновика с обновленными version и last_touched_at
func touch(draft *entity.ReviewDraft, now time.Time) *entity.ReviewDraft {
	next := draft.Clone()
	next.Version++
	next.LastTouchedAt = now
	return next
}
