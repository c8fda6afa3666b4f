package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ClassificationStore answers existence and membership questions about
// exam/subject/topic reference data. The workflow never writes through it.
type ClassificationStore interface {
	ExamExists(ctx context.Context, id uint) (bool, error)
	SubjectExists(ctx context.Context, id uint) (bool, error)
	TopicBelongsToSubject(ctx context.Context, topicID, subjectID uint) (bool, error)
}

// CachedClassificationStore memoises positive answers in Redis. Negative
// answers always fall through so newly created reference data is visible at once.
type CachedClassificationStore struct {
	next   ClassificationStore
	cache  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedClassificationStore wraps next with a Redis cache. A nil client disables caching.
func NewCachedClassificationStore(next ClassificationStore, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedClassificationStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedClassificationStore{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "classification_cache").Logger(),
	}
}

func (s *CachedClassificationStore) ExamExists(ctx context.Context, id uint) (bool, error) {
	return s.cached(ctx, fmt.Sprintf("classification:exam:%d", id), func() (bool, error) {
		return s.next.ExamExists(ctx, id)
	})
}

func (s *CachedClassificationStore) SubjectExists(ctx context.Context, id uint) (bool, error) {
	return s.cached(ctx, fmt.Sprintf("classification:subject:%d", id), func() (bool, error) {
		return s.next.SubjectExists(ctx, id)
	})
}

func (s *CachedClassificationStore) TopicBelongsToSubject(ctx context.Context, topicID, subjectID uint) (bool, error) {
	key := fmt.Sprintf("classification:subject:%d:topic:%d", subjectID, topicID)
	return s.cached(ctx, key, func() (bool, error) {
		return s.next.TopicBelongsToSubject(ctx, topicID, subjectID)
	})
}

func (s *CachedClassificationStore) cached(ctx context.Context, key string, load func() (bool, error)) (bool, error) {
	if s.cache != nil {
		if _, err := s.cache.Get(ctx, key).Result(); err == nil {
			s.logger.Debug().Str("key", key).Msg("classification cache hit")
			return true, nil
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read classification cache")
		}
	}

	ok, err := load()
	if err != nil || !ok {
		return ok, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, "1", s.ttl).Err(); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to store classification cache")
		}
	}

	return true, nil
}
