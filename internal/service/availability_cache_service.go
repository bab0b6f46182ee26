package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/taherx7/Medi-connect/internal/slot"
)

const (
	availabilityKeyPrefix           = "availability:"
	availabilityVersionKeyPrefix    = "availability:ver:"
	availabilityGenerationKeyPrefix = "availability:gen:"

	// Version keys outlive every data key they can point at.
	availabilityVersionTTL = 48 * time.Hour

	// Past dates still get a short TTL for cleanup.
	pastDateTTL = 1 * time.Minute
)

// AvailabilityCache stores annotated slots per doctor and date.
//
// Dropping a single date bumps the date's generation and deletes its key.
// Dropping a whole doctor bumps the doctor's version counter, which orphans
// every cached date at once; the orphans expire on their own TTL.
//
// Readers take a Stamp before loading from storage and hand it to Set. Set
// discards the write when either counter moved in between, so a computation
// that raced an invalidation never lands in the cache.
type AvailabilityCache interface {
	Get(ctx context.Context, doctorID uuid.UUID, date string) ([]slot.Availability, bool, error)
	Stamp(ctx context.Context, doctorID uuid.UUID, date string) (Stamp, error)
	Set(ctx context.Context, doctorID uuid.UUID, date string, stamp Stamp, dayEnd time.Time, slots []slot.Availability) error
	InvalidateDate(ctx context.Context, doctorID uuid.UUID, date string) error
	InvalidateDoctor(ctx context.Context, doctorID uuid.UUID) error
}

// Stamp is the pair of invalidation counters seen before a storage read.
type Stamp struct {
	Version    int64
	Generation int64
}

type redisAvailabilityCache struct {
	redisClient *redis.Client
	log         *logrus.Logger
	maxTTL      time.Duration
	now         func() time.Time
}

func NewAvailabilityCache(redisClient *redis.Client, log *logrus.Logger, maxTTL time.Duration) AvailabilityCache {
	return &redisAvailabilityCache{
		redisClient: redisClient,
		log:         log,
		maxTTL:      maxTTL,
		now:         time.Now,
	}
}

func (c *redisAvailabilityCache) Get(ctx context.Context, doctorID uuid.UUID, date string) ([]slot.Availability, bool, error) {
	version, err := c.version(ctx, doctorID)
	if err != nil {
		return nil, false, err
	}

	raw, err := c.redisClient.Get(ctx, availabilityKey(doctorID, version, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		c.log.Warnf("Failed to read availability cache for doctor %s on %s: %+v", doctorID, date, err)
		return nil, false, fmt.Errorf("get availability cache: %w", err)
	}

	var slots []slot.Availability
	if err := json.Unmarshal(raw, &slots); err != nil {
		c.log.Warnf("Discarding corrupt availability cache for doctor %s on %s: %+v", doctorID, date, err)
		return nil, false, nil
	}
	if slots == nil {
		slots = []slot.Availability{}
	}
	return slots, true, nil
}

func (c *redisAvailabilityCache) Stamp(ctx context.Context, doctorID uuid.UUID, date string) (Stamp, error) {
	values, err := c.redisClient.MGet(ctx, versionKey(doctorID), generationKey(doctorID, date)).Result()
	if err != nil {
		c.log.Warnf("Failed to read availability counters for doctor %s on %s: %+v", doctorID, date, err)
		return Stamp{}, fmt.Errorf("get availability stamp: %w", err)
	}

	var stamp Stamp
	if stamp.Version, err = counterValue(values[0]); err != nil {
		return Stamp{}, err
	}
	if stamp.Generation, err = counterValue(values[1]); err != nil {
		return Stamp{}, err
	}
	return stamp, nil
}

func (c *redisAvailabilityCache) Set(ctx context.Context, doctorID uuid.UUID, date string, stamp Stamp, dayEnd time.Time, slots []slot.Availability) error {
	raw, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("encode availability: %w", err)
	}
	ttl := availabilityTTL(dayEnd, c.now(), c.maxTTL)

	vKey, gKey := versionKey(doctorID), generationKey(doctorID, date)
	err = c.redisClient.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.MGet(ctx, vKey, gKey).Result()
		if err != nil {
			return err
		}
		version, err := counterValue(current[0])
		if err != nil {
			return err
		}
		generation, err := counterValue(current[1])
		if err != nil {
			return err
		}
		if version != stamp.Version || generation != stamp.Generation {
			return errStaleStamp
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, availabilityKey(doctorID, version, date), raw, ttl)
			return nil
		})
		return err
	}, vKey, gKey)

	if errors.Is(err, errStaleStamp) || errors.Is(err, redis.TxFailedErr) {
		c.log.Debugf("Skipped caching slots for doctor %s on %s: invalidated during load", doctorID, date)
		return nil
	}
	if err != nil {
		c.log.Warnf("Failed to write availability cache for doctor %s on %s: %+v", doctorID, date, err)
		return fmt.Errorf("set availability cache: %w", err)
	}

	c.log.Debugf("Cached %d slots for doctor %s on %s, TTL=%v", len(slots), doctorID, date, ttl)
	return nil
}

func (c *redisAvailabilityCache) InvalidateDate(ctx context.Context, doctorID uuid.UUID, date string) error {
	version, err := c.version(ctx, doctorID)
	if err != nil {
		return err
	}

	gKey := generationKey(doctorID, date)
	pipe := c.redisClient.TxPipeline()
	pipe.Incr(ctx, gKey)
	pipe.Expire(ctx, gKey, availabilityVersionTTL)
	pipe.Del(ctx, availabilityKey(doctorID, version, date))

	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warnf("Failed to invalidate availability for doctor %s on %s: %+v", doctorID, date, err)
		return fmt.Errorf("invalidate availability for %s: %w", date, err)
	}
	return nil
}

func (c *redisAvailabilityCache) InvalidateDoctor(ctx context.Context, doctorID uuid.UUID) error {
	vKey := versionKey(doctorID)

	pipe := c.redisClient.TxPipeline()
	pipe.Incr(ctx, vKey)
	pipe.Expire(ctx, vKey, availabilityVersionTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warnf("Failed to invalidate availability for doctor %s: %+v", doctorID, err)
		return fmt.Errorf("invalidate availability for doctor %s: %w", doctorID, err)
	}
	return nil
}

func (c *redisAvailabilityCache) version(ctx context.Context, doctorID uuid.UUID) (int64, error) {
	version, err := c.redisClient.Get(ctx, versionKey(doctorID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		c.log.Warnf("Failed to read availability version for doctor %s: %+v", doctorID, err)
		return 0, fmt.Errorf("get availability version: %w", err)
	}
	return version, nil
}

var errStaleStamp = errors.New("availability stamp is stale")

// counterValue decodes one MGET result; a missing key counts as zero.
func counterValue(v interface{}) (int64, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected counter value %T", v)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid counter value %q: %w", s, err)
	}
	return n, nil
}

func versionKey(doctorID uuid.UUID) string {
	return availabilityVersionKeyPrefix + doctorID.String()
}

func generationKey(doctorID uuid.UUID, date string) string {
	return availabilityGenerationKeyPrefix + doctorID.String() + ":" + date
}

func availabilityKey(doctorID uuid.UUID, version int64, date string) string {
	return fmt.Sprintf("%s%s:v%d:%s", availabilityKeyPrefix, doctorID.String(), version, date)
}

// availabilityTTL caps the TTL at maxTTL and at the end of the cached day.
func availabilityTTL(dayEnd, now time.Time, maxTTL time.Duration) time.Duration {
	remaining := dayEnd.Sub(now)
	if remaining <= 0 {
		return pastDateTTL
	}
	if remaining < maxTTL {
		return remaining
	}
	return maxTTL
}

// NoopAvailabilityCache never hits. Used when Redis caching is not wanted,
// e.g. in tests.
type NoopAvailabilityCache struct{}

func (NoopAvailabilityCache) Get(context.Context, uuid.UUID, string) ([]slot.Availability, bool, error) {
	return nil, false, nil
}

func (NoopAvailabilityCache) Stamp(context.Context, uuid.UUID, string) (Stamp, error) {
	return Stamp{}, nil
}

func (NoopAvailabilityCache) Set(context.Context, uuid.UUID, string, Stamp, time.Time, []slot.Availability) error {
	return nil
}

func (NoopAvailabilityCache) InvalidateDate(context.Context, uuid.UUID, string) error { return nil }

func (NoopAvailabilityCache) InvalidateDoctor(context.Context, uuid.UUID) error { return nil }
