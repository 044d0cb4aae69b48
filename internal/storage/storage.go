// Package storage persists the per-profile SeenSet and carries the Redis
// pub/sub channel used for dashboard alerts.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"complaintdesk/dashboard/internal/config"
	"complaintdesk/dashboard/internal/models"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrNoBackend is returned when neither Postgres nor Redis is configured.
var ErrNoBackend = errors.New("storage: no backend configured")

// Storage loads and saves the complaint IDs already shown to a profile.
// Profiles that were never saved load as an empty list.
type Storage interface {
	LoadSeen(ctx context.Context, profile string) ([]string, error)
	// AddSeen merges ids into the stored set. Stored IDs are never dropped,
	// so concurrent writers for one profile cannot lose each other's IDs.
	AddSeen(ctx context.Context, profile string, ids []string) error
}

// Service keeps the durable copy in Postgres and a cache copy in Redis.
// Either may be nil.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Log   *logrus.Entry
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client, log *logrus.Entry) *Service {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{DB: db, Redis: rdb, Log: log.WithField("component", "storage")}
}

// SeenKey is the Redis key of a profile's SeenSet.
func SeenKey(profile string) string {
	return config.SeenSetKey + ":" + profile
}

// LoadSeen reads Redis first and falls back to Postgres, warming the cache
// on a database hit.
func (s *Service) LoadSeen(ctx context.Context, profile string) ([]string, error) {
	if s.Redis != nil {
		raw, err := s.Redis.Get(ctx, SeenKey(profile)).Result()
		switch {
		case err == nil:
			var ids []string
			if jsonErr := json.Unmarshal([]byte(raw), &ids); jsonErr == nil {
				return ids, nil
			}
			s.Log.WithField("profile", profile).Warn("malformed seen set in cache, ignoring")
		case errors.Is(err, redis.Nil):
		default:
			if s.DB == nil {
				return nil, fmt.Errorf("load seen set from redis: %w", err)
			}
			s.Log.WithError(err).Warn("redis unavailable, reading seen set from postgres")
		}
	}

	if s.DB == nil {
		return []string{}, nil
	}

	var rec models.SeenSetRecord
	err := s.DB.WithContext(ctx).Where("profile = ?", profile).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load seen set: %w", err)
	}

	ids := []string(rec.ComplaintIDs)
	if ids == nil {
		ids = []string{}
	}
	s.cache(ctx, profile, ids)
	return ids, nil
}

// mergeSeenSQL adds IDs to a profile's row, keeping existing IDs in their
// first-seen order.
const mergeSeenSQL = `INSERT INTO seen_sets (profile, complaint_ids, updated_at) VALUES (?, ?, ?)
ON CONFLICT (profile) DO UPDATE SET
	complaint_ids = ARRAY(
		SELECT id FROM unnest(seen_sets.complaint_ids || excluded.complaint_ids) WITH ORDINALITY AS t(id, n)
		GROUP BY id ORDER BY min(n)
	),
	updated_at = excluded.updated_at
RETURNING profile, complaint_ids, updated_at`

// maxMergeAttempts bounds the optimistic retries of a Redis merge.
const maxMergeAttempts = 5

// AddSeen merges ids into the profile's set. Postgres merges inside the
// upsert and the merged row is folded into the cache. Without Postgres the
// Redis key is merged under WATCH.
func (s *Service) AddSeen(ctx context.Context, profile string, ids []string) error {
	if s.DB == nil && s.Redis == nil {
		return ErrNoBackend
	}
	ids = MergeSeen(nil, ids)
	if len(ids) == 0 {
		return nil
	}

	if s.DB != nil {
		var rec models.SeenSetRecord
		err := s.DB.WithContext(ctx).Raw(mergeSeenSQL, profile, pq.StringArray(ids), time.Now()).Scan(&rec).Error
		if err != nil {
			return fmt.Errorf("save seen set: %w", err)
		}
		s.cache(ctx, profile, rec.ComplaintIDs)
		return nil
	}

	if err := s.mergeRedis(ctx, profile, ids); err != nil {
		return fmt.Errorf("save seen set to redis: %w", err)
	}
	return nil
}

// MergeSeen appends the IDs of add missing from current, dropping blanks.
func MergeSeen(current, add []string) []string {
	out := make([]string, 0, len(current)+len(add))
	have := make(map[string]struct{}, len(current)+len(add))
	for _, list := range [][]string{current, add} {
		for _, id := range list {
			if id == "" {
				continue
			}
			if _, ok := have[id]; ok {
				continue
			}
			have[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func (s *Service) mergeRedis(ctx context.Context, profile string, ids []string) error {
	key := SeenKey(profile)
	txf := func(tx *redis.Tx) error {
		var current []string
		raw, err := tx.Get(ctx, key).Result()
		switch {
		case err == nil:
			if jsonErr := json.Unmarshal([]byte(raw), &current); jsonErr != nil {
				current = nil
			}
		case errors.Is(err, redis.Nil):
		default:
			return err
		}

		blob, err := json.Marshal(MergeSeen(current, ids))
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, blob, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxMergeAttempts; i++ {
		err := s.Redis.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

// cache folds ids into the Redis copy. The cache only ever grows, so a
// stale warm-up cannot undo a newer save. A failed merge drops the key and
// the next load reads Postgres.
func (s *Service) cache(ctx context.Context, profile string, ids []string) {
	if s.Redis == nil || len(ids) == 0 {
		return
	}
	if err := s.mergeRedis(ctx, profile, ids); err != nil {
		s.Log.WithError(err).WithField("profile", profile).Warn("failed to cache seen set")
		if delErr := s.Redis.Del(ctx, SeenKey(profile)).Err(); delErr != nil {
			s.Log.WithError(delErr).WithField("profile", profile).Warn("failed to drop stale seen set cache")
		}
	}
}

// PublishAlert publishes an alert on the shared dashboard channel.
func (s *Service) PublishAlert(ctx context.Context, msg models.AlertMessage) error {
	if s.Redis == nil {
		return ErrNoBackend
	}
	blob, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.Redis.Publish(ctx, config.AlertChannel, blob).Err()
}

// SubscribeAlerts subscribes to the dashboard alert channel.
func (s *Service) SubscribeAlerts(ctx context.Context) *redis.PubSub {
	return s.Redis.Subscribe(ctx, config.AlertChannel)
}
