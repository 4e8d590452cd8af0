package processor

import (
	"context"
	"log"
	"time"

	"reviewflow/internal/app/review/repository"
	"reviewflow/pkg/logger"
	"reviewflow/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// DraftSweeper периодически удаляет черновики, не тронутые дольше
// их таймаута. Гонки с publish и cancel разрешает Draft Store:
// тронутый конкурентно черновик зачистка молча пропускает
type DraftSweeper struct {
	cron      *cron.Cron
	draftRepo repository.DraftRepository
}

func NewDraftSweeper(draftRepo repository.DraftRepository) *DraftSweeper {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(log.Default())))

	return &DraftSweeper{
		cron:      c,
		draftRepo: draftRepo,
	}
}

func (s *DraftSweeper) Start(ctx context.Context, schedule string) error {
	sweepLog := logger.Component("draft_sweeper")
	sweepLog.Info().Str("schedule", schedule).Msg("Starting draft sweeper")

	_, err := s.cron.AddFunc(schedule, func() {
		s.sweep(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()

	// Первый проход сразу: после рестарта могли накопиться истекшие черновики
	s.sweep(ctx)

	return nil
}

func (s *DraftSweeper) Stop() {
	sweepLog := logger.Component("draft_sweeper")
	sweepLog.Info().Msg("Stopping draft sweeper")
	ctx := s.cron.Stop()
	<-ctx.Done()
	sweepLog.Info().Msg("Draft sweeper stopped")
}

func (s *DraftSweeper) sweep(ctx context.Context) {
	sweepLog := logger.Component("draft_sweeper")

	expired, err := s.draftRepo.Sweep(ctx, time.Now().UTC())
	if err != nil {
		sweepLog.Error().Err(err).Msg("Draft sweep failed")
		return
	}

	if len(expired) == 0 {
		sweepLog.Debug().Msg("Draft sweep completed: nothing expired")
		return
	}

	for _, key := range expired {
		sweepLog.Info().
			Str("draft_key", key.String()).
			Msg("Expired draft removed")
	}

	metrics.DraftsExpired.Add(float64(len(expired)))
	metrics.DraftsActive.Sub(float64(len(expired)))
}
