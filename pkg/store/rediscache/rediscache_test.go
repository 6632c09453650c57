package rediscache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/store"
	"github.com/strathub/strathub-service/testsupport/basedata"
	"github.com/strathub/strathub-service/testsupport/tcredis"
)

type countingReader struct {
	calls int
}

func (c *countingReader) ListSeasons(ctx context.Context) ([]int, error) {
	c.calls++
	return []int{2023}, nil
}

//nolint:whitespace // can't make both editor and linter happy
func (c *countingReader) ListRaces(
	ctx context.Context,
	season int,
) ([]model.RaceIndexEntry, error) {
	c.calls++
	if season != 2023 {
		return nil, fmt.Errorf("season %d: %w", season, store.ErrNotFound)
	}
	return basedata.SampleIndex(), nil
}

//nolint:whitespace // can't make both editor and linter happy
func (c *countingReader) LoadRace(
	ctx context.Context,
	id model.RaceID,
) (*model.RaceAnalyticsDocument, error) {
	c.calls++
	return basedata.SampleDocument(id.Season, id.Round, "Bahrain Grand Prix", "Sakhir"), nil
}

func TestReaderUsesRedis(t *testing.T) {
	client := tcredis.SetupTestRedis()
	defer client.Close()
	ctx := context.Background()
	next := &countingReader{}
	r := New(next, client,
		WithTTL(time.Minute),
		WithPrefix(fmt.Sprintf("test%d", time.Now().UnixNano())))

	for range 2 {
		seasons, err := r.ListSeasons(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{2023}, seasons)
		races, err := r.ListRaces(ctx, 2023)
		require.NoError(t, err)
		assert.Equal(t, basedata.SampleIndex(), races)
		doc, err := r.LoadRace(ctx, model.RaceID{Season: 2023, Round: 1})
		require.NoError(t, err)
		assert.Equal(t, "Sakhir", doc.Location)
	}
	assert.Equal(t, 3, next.calls)

	ttl, err := client.TTL(ctx, r.raceKey(model.RaceID{Season: 2023, Round: 1})).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	r.Invalidate(ctx, model.RaceID{Season: 2023, Round: 1})
	_, err = r.LoadRace(ctx, model.RaceID{Season: 2023, Round: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, next.calls)

	// errors are not cached
	_, err = r.ListRaces(ctx, 2019)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	_, err = r.ListRaces(ctx, 2019)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	assert.Equal(t, 6, next.calls)
}

func TestReaderWithoutRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	next := &countingReader{}
	r := New(next, client)

	seasons, err := r.ListSeasons(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2023}, seasons)
	assert.Equal(t, 1, next.calls)
}
