package store

import (
	"context"
	"time"

	"github.com/strathub/strathub-service/log"
	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/utils/cache"
	"github.com/strathub/strathub-service/pkg/utils/cache/loadercache"
)

type seasonsKey struct{}

// CachedReader keeps documents, season indexes and the season list in memory
type CachedReader struct {
	seasons cache.Cache[seasonsKey, []int]
	races   cache.Cache[int, []model.RaceIndexEntry]
	docs    cache.Cache[model.RaceID, model.RaceAnalyticsDocument]
}

var _ Reader = (*CachedReader)(nil)

func NewCachedReader(r Reader, expiration time.Duration) *CachedReader {
	l := log.Default().Named("store.cache")
	return &CachedReader{
		seasons: loadercache.New(
			loadercache.WithLoader[seasonsKey, []int](
				func(ctx context.Context, _ seasonsKey) (*[]int, error) {
					s, err := r.ListSeasons(ctx)
					if err != nil {
						return nil, err
					}
					return &s, nil
				}),
			loadercache.WithExpiration[seasonsKey, []int](expiration),
			loadercache.WithLogger[seasonsKey, []int](l),
		),
		races: loadercache.New(
			loadercache.WithLoader[int, []model.RaceIndexEntry](
				func(ctx context.Context, season int) (*[]model.RaceIndexEntry, error) {
					e, err := r.ListRaces(ctx, season)
					if err != nil {
						return nil, err
					}
					return &e, nil
				}),
			loadercache.WithExpiration[int, []model.RaceIndexEntry](expiration),
			loadercache.WithLogger[int, []model.RaceIndexEntry](l),
		),
		docs: loadercache.New(
			loadercache.WithLoader[model.RaceID, model.RaceAnalyticsDocument](r.LoadRace),
			loadercache.WithExpiration[model.RaceID, model.RaceAnalyticsDocument](expiration),
			loadercache.WithLogger[model.RaceID, model.RaceAnalyticsDocument](l),
		),
	}
}

func (c *CachedReader) ListSeasons(ctx context.Context) ([]int, error) {
	s, err := c.seasons.Get(ctx, seasonsKey{})
	if err != nil {
		return nil, err
	}
	return *s, nil
}

func (c *CachedReader) ListRaces(ctx context.Context, season int) ([]model.RaceIndexEntry, error) {
	e, err := c.races.Get(ctx, season)
	if err != nil {
		return nil, err
	}
	return *e, nil
}

//nolint:whitespace // can't make both editor and linter happy
func (c *CachedReader) LoadRace(
	ctx context.Context,
	id model.RaceID,
) (*model.RaceAnalyticsDocument, error) {
	return c.docs.Get(ctx, id)
}

// Invalidate drops the cached data of a race and its season
func (c *CachedReader) Invalidate(ctx context.Context, id model.RaceID) {
	c.docs.Invalidate(ctx, id)
	c.races.Invalidate(ctx, id.Season)
	c.seasons.Invalidate(ctx, seasonsKey{})
}

func (c *CachedReader) InvalidateAll(ctx context.Context) {
	c.docs.InvalidateAll(ctx)
	c.races.InvalidateAll(ctx)
	c.seasons.InvalidateAll(ctx)
}
