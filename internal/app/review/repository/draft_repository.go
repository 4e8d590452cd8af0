package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reviewflow/internal/app/review/entity"
	"reviewflow/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

// Индекс всех живых черновиков: имена ключей для обхода в Sweep
const draftIndexKey = "review_draft_keys"

type draftRepository struct {
	client *redis.Client
}

// NewDraftRepository создает Draft Store поверх Redis.
// На ключи ставится страховочный TTL вдвое больше таймаута черновика:
// основным механизмом истечения остается Sweep
func NewDraftRepository(client *redis.Client) DraftRepository {
	return &draftRepository{client: client}
}

// Create создает черновик через SET NX: это и есть compare-and-create
// из модели конкурентности - второй BeginReview по тому же ключу
// получает ErrConflict, а не молча перезаписывает чужие правки
func (r *draftRepository) Create(ctx context.Context, draft *entity.ReviewDraft) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	key := draft.Key().RedisKey()
	ok, err := r.client.SetNX(ctx, key, payload, backstopTTL(draft)).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to create draft in redis: %w", err)
	}
	if !ok {
		return fmt.Errorf("draft already exists for %s: %w", draft.Key(), entity.ErrConflict)
	}

	if err := r.client.SAdd(ctx, draftIndexKey, key).Err(); err != nil {
		return fmt.Errorf("failed to index draft key: %w", err)
	}

	return nil
}

// Get читает черновик по ключу
func (r *draftRepository) Get(ctx context.Context, key entity.DraftKey) (*entity.ReviewDraft, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := r.client.Get(ctx, key.RedisKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("draft %s: %w", key, entity.ErrNotFound)
	}
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get draft from redis: %w", err)
	}

	var draft entity.ReviewDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}

	return &draft, nil
}

// Update применяет новую версию черновика через WATCH/MULTI.
// Запись проходит только если хранимая версия ровно на единицу меньше
// присланной: перекрывающиеся правки одного ревьюера (двойной клик)
// не теряются молча - проигравший получает ErrConflict
func (r *draftRepository) Update(ctx context.Context, draft *entity.ReviewDraft) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	key := draft.Key().RedisKey()

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("draft %s: %w", draft.Key(), entity.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to read draft for update: %w", err)
		}

		var stored entity.ReviewDraft
		if err := json.Unmarshal(data, &stored); err != nil {
			return fmt.Errorf("failed to unmarshal stored draft: %w", err)
		}

		if stored.Version != draft.Version-1 {
			return fmt.Errorf("draft %s version %d is stale: %w", draft.Key(), draft.Version, entity.ErrConflict)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, backstopTTL(draft))
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		// Ключ изменился между чтением и записью
		return fmt.Errorf("concurrent draft update on %s: %w", draft.Key(), entity.ErrConflict)
	}
	if err != nil {
		if !errors.Is(err, entity.ErrNotFound) && !errors.Is(err, entity.ErrConflict) {
			metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		}
		return err
	}

	return nil
}

// Delete удаляет черновик и его запись в индексе.
// Удаление отсутствующего ключа возвращает ErrNotFound: гонки
// publish/cancel/sweep различают "удалил я" и "уже удалили без меня"
func (r *draftRepository) Delete(ctx context.Context, key entity.DraftKey) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	redisKey := key.RedisKey()

	deleted, err := r.client.Del(ctx, redisKey).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete draft from redis: %w", err)
	}

	// Индекс чистим в любом случае
	r.client.SRem(ctx, draftIndexKey, redisKey)

	if deleted == 0 {
		return fmt.Errorf("draft %s: %w", key, entity.ErrNotFound)
	}

	return nil
}

// Sweep обходит индекс и удаляет черновики, не тронутые дольше их таймаута.
// Ключ, исчезнувший или обновленный между чтением и удалением, молча
// пропускается: полусырой черновик не воскресает, eviction не теряется.
// Составной ключ восстанавливается из тела черновика, а не из имени
// Redis ключа: идентификаторы с двоеточиями не ломают разбор
func (r *draftRepository) Sweep(ctx context.Context, now time.Time) ([]entity.DraftKey, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSweep)
	defer timer.ObserveDuration()

	members, err := r.client.SMembers(ctx, draftIndexKey).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSweep)
		return nil, fmt.Errorf("failed to read draft index: %w", err)
	}

	var evicted []entity.DraftKey

	for _, redisKey := range members {
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, redisKey).Bytes()
			if errors.Is(err, redis.Nil) {
				// Черновик уже опубликован или отменен
				tx.SRem(ctx, draftIndexKey, redisKey)
				return nil
			}
			if err != nil {
				return err
			}

			var draft entity.ReviewDraft
			if err := json.Unmarshal(data, &draft); err != nil {
				// Мусор в индексе: убираем и идем дальше
				tx.SRem(ctx, draftIndexKey, redisKey)
				return nil
			}
			if !draft.Expired(now) {
				return nil
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, redisKey)
				pipe.SRem(ctx, draftIndexKey, redisKey)
				return nil
			})
			if err != nil {
				return err
			}

			evicted = append(evicted, draft.Key())
			return nil
		}, redisKey)

		if errors.Is(err, redis.TxFailedErr) {
			// Черновик тронули во время зачистки: не истек, пропускаем
			continue
		}
		if err != nil {
			metrics.RecordRedisError(serviceName, metrics.RedisOpSweep)
			return evicted, fmt.Errorf("failed to sweep draft %s: %w", redisKey, err)
		}
	}

	return evicted, nil
}

// backstopTTL - страховочный TTL ключа на случай выключенного Sweep
func backstopTTL(draft *entity.ReviewDraft) time.Duration {
	return draft.Timeout() * 2
}
