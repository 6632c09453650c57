package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/strathub/strathub-service/log"
	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/store"
)

const (
	DefaultPrefix = "strathub"
	DefaultTTL    = 10 * time.Minute
)

type (
	Option func(r *Reader)

	// Reader caches the results of another Reader as JSON in redis.
	// Redis failures are logged and answered by the underlying Reader.
	Reader struct {
		next   store.Reader
		client redis.UniversalClient
		ttl    time.Duration
		prefix string
		l      *log.Logger
	}
)

var _ store.Reader = (*Reader)(nil)

func WithTTL(ttl time.Duration) Option {
	return func(r *Reader) {
		r.ttl = ttl
	}
}

func WithPrefix(prefix string) Option {
	return func(r *Reader) {
		r.prefix = prefix
	}
}

func WithLogger(l *log.Logger) Option {
	return func(r *Reader) {
		r.l = l
	}
}

func New(next store.Reader, client redis.UniversalClient, opts ...Option) *Reader {
	ret := &Reader{
		next:   next,
		client: client,
		ttl:    DefaultTTL,
		prefix: DefaultPrefix,
		l:      log.Default().Named("store.redis"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (r *Reader) ListSeasons(ctx context.Context) ([]int, error) {
	return cached(ctx, r, r.seasonsKey(), r.next.ListSeasons)
}

func (r *Reader) ListRaces(ctx context.Context, season int) ([]model.RaceIndexEntry, error) {
	return cached(ctx, r, r.racesKey(season),
		func(ctx context.Context) ([]model.RaceIndexEntry, error) {
			return r.next.ListRaces(ctx, season)
		})
}

//nolint:whitespace // can't make both editor and linter happy
func (r *Reader) LoadRace(
	ctx context.Context,
	id model.RaceID,
) (*model.RaceAnalyticsDocument, error) {
	return cached(ctx, r, r.raceKey(id),
		func(ctx context.Context) (*model.RaceAnalyticsDocument, error) {
			return r.next.LoadRace(ctx, id)
		})
}

// Invalidate removes the cached data of a race and its season
func (r *Reader) Invalidate(ctx context.Context, id model.RaceID) {
	err := r.client.Del(ctx,
		r.raceKey(id), r.racesKey(id.Season), r.seasonsKey()).Err()
	if err != nil {
		r.l.Warn("could not invalidate", log.String("race", id.String()),
			log.ErrorField(err))
	}
}

//nolint:whitespace // can't make both editor and linter happy
func cached[T any](
	ctx context.Context,
	r *Reader,
	key string,
	load func(ctx context.Context) (T, error),
) (T, error) {
	var ret T
	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &ret); err == nil {
			return ret, nil
		}
		r.l.Warn("dropping unreadable cache entry", log.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		r.l.Warn("redis get failed", log.String("key", key), log.ErrorField(err))
	}

	ret, err = load(ctx)
	if err != nil {
		return ret, err
	}
	if data, err := json.Marshal(ret); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			r.l.Warn("redis set failed", log.String("key", key), log.ErrorField(err))
		}
	}
	return ret, nil
}

func (r *Reader) seasonsKey() string {
	return r.prefix + ":seasons"
}

func (r *Reader) racesKey(season int) string {
	return fmt.Sprintf("%s:races:%d", r.prefix, season)
}

func (r *Reader) raceKey(id model.RaceID) string {
	return fmt.Sprintf("%s:race:%d:%d", r.prefix, id.Season, id.Round)
}
