// Package profile resolves a diner's declared restrictions by user id.
package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dinefine-workers/internal/common/logger"
	"dinefine-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

var (
	ErrProfileNotFound     = errors.New("PROFILE_NOT_FOUND")
	ErrProfileLookupFailed = errors.New("PROFILE_LOOKUP_FAILED")
)

const cacheKeyPrefix = "profile:diner:"

// Store reads profiles from the users table with a Redis cache in front.
// A nil Redis client disables the cache.
type Store struct {
	db     *sql.DB
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewStore(db *sql.DB, redisClient *redis.Client, ttl time.Duration, log logger.Logger) *Store {
	return &Store{
		db:     db,
		redis:  redisClient,
		ttl:    ttl,
		logger: logger.ForComponent(log, "profile"),
	}
}

// Get returns the profile of userID. Missing or null restriction columns
// yield empty slices.
func (s *Store) Get(ctx context.Context, userID string) (models.DinerProfile, error) {
	if profile, ok := s.cached(ctx, userID); ok {
		return profile, nil
	}

	var allergies, restrictions []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT allergies, dietary_restrictions FROM users WHERE id = $1`, userID,
	).Scan(&allergies, &restrictions)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DinerProfile{}, ErrProfileNotFound
		}
		return models.DinerProfile{}, fmt.Errorf("%w: %w", ErrProfileLookupFailed, err)
	}

	profile := models.DinerProfile{}
	if profile.Allergies, err = decodeLabels(allergies); err != nil {
		return models.DinerProfile{}, fmt.Errorf("%w: allergies: %w", ErrProfileLookupFailed, err)
	}
	if profile.DietaryRestrictions, err = decodeLabels(restrictions); err != nil {
		return models.DinerProfile{}, fmt.Errorf("%w: dietary restrictions: %w", ErrProfileLookupFailed, err)
	}

	s.store(ctx, userID, profile)
	return profile, nil
}

// Invalidate drops the cached copy of userID's profile.
func (s *Store) Invalidate(ctx context.Context, userID string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, cacheKeyPrefix+userID).Err()
}

func (s *Store) cached(ctx context.Context, userID string) (models.DinerProfile, bool) {
	if s.redis == nil {
		return models.DinerProfile{}, false
	}
	val, err := s.redis.Get(ctx, cacheKeyPrefix+userID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("profile cache read failed", map[string]interface{}{"userId": userID, "error": err})
		}
		return models.DinerProfile{}, false
	}

	var profile models.DinerProfile
	if err := json.Unmarshal([]byte(val), &profile); err != nil {
		s.logger.Warn("discarding unreadable cached profile", map[string]interface{}{"userId": userID, "error": err})
		return models.DinerProfile{}, false
	}
	return profile, true
}

func (s *Store) store(ctx context.Context, userID string, profile models.DinerProfile) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, cacheKeyPrefix+userID, data, s.ttl).Err(); err != nil {
		s.logger.Warn("profile cache write failed", map[string]interface{}{"userId": userID, "error": err})
	}
}

func decodeLabels(raw []byte) ([]string, error) {
	labels := []string{}
	if len(raw) == 0 || string(raw) == "null" {
		return labels, nil
	}
	if err := json.Unmarshal(raw, &labels); err != nil {
		return nil, err
	}
	if labels == nil {
		labels = []string{}
	}
	return labels, nil
}
