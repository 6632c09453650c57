package loadercache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strathub/strathub-service/pkg/utils/cache"
)

type counter struct {
	calls map[string]int
}

func (c *counter) load(_ context.Context, key string) (*string, error) {
	c.calls[key]++
	if key == "bad" {
		return nil, errors.New("cannot load")
	}
	v := "value-" + key
	return &v, nil
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	cnt := &counter{calls: map[string]int{}}
	now := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)
	c := New(
		WithLoader[string, string](cnt.load),
		WithExpiration[string, string](time.Minute),
		WithClock[string, string](func() time.Time { return now }),
	)

	v, err := c.Get(ctx, "a")
	assert.NoError(t, err)
	assert.Equal(t, "value-a", *v)
	_, _ = c.Get(ctx, "a")
	assert.Equal(t, 1, cnt.calls["a"], "second get served from cache")

	now = now.Add(2 * time.Minute)
	_, _ = c.Get(ctx, "a")
	assert.Equal(t, 2, cnt.calls["a"], "expired entry is reloaded")

	c.Invalidate(ctx, "a")
	_, _ = c.Get(ctx, "a")
	assert.Equal(t, 3, cnt.calls["a"])

	c.InvalidateAll(ctx)
	_, _ = c.Get(ctx, "a")
	assert.Equal(t, 4, cnt.calls["a"])
}

func TestGetError(t *testing.T) {
	ctx := context.Background()
	cnt := &counter{calls: map[string]int{}}
	c := New(WithLoader[string, string](cnt.load))

	_, err := c.Get(ctx, "bad")
	assert.Error(t, err)
	_, err = c.Get(ctx, "bad")
	assert.Error(t, err)
	assert.Equal(t, 2, cnt.calls["bad"], "errors are not cached")
}

func TestNoLoader(t *testing.T) {
	c := New[string, string]()
	_, err := c.Get(context.Background(), "a")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestHitWhileOtherKeyLoads(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	loader := func(_ context.Context, key string) (*string, error) {
		if key == "slow" {
			close(started)
			<-release
		}
		v := "value-" + key
		return &v, nil
	}
	c := New(WithLoader[string, string](loader))
	_, err := c.Get(ctx, "hot")
	require.NoError(t, err)

	go func() { _, _ = c.Get(ctx, "slow") }()
	<-started

	hit := make(chan *string, 1)
	go func() {
		v, _ := c.Get(ctx, "hot")
		hit <- v
	}()
	select {
	case v := <-hit:
		require.NotNil(t, v)
		assert.Equal(t, "value-hot", *v)
	case <-time.After(time.Second):
		t.Fatal("cached entry waited for the loader of another key")
	}
}

func TestConcurrentLoadsShared(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	release := make(chan struct{})
	loader := func(_ context.Context, key string) (*string, error) {
		calls.Add(1)
		<-release
		v := "value-" + key
		return &v, nil
	}
	c := New(WithLoader[string, string](loader))

	results := make([]*string, 5)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = c.Get(ctx, "a")
		}()
	}
	assert.Eventually(t, func() bool { return calls.Load() == 1 },
		time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		require.NotNil(t, v)
		assert.Equal(t, "value-a", *v)
	}
}

func TestInvalidateDuringLoad(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	loader := func(_ context.Context, key string) (*string, error) {
		if calls.Add(1) == 1 {
			started <- struct{}{}
			<-release
		}
		v := "value-" + key
		return &v, nil
	}
	c := New(WithLoader[string, string](loader))

	done := make(chan struct{})
	go func() {
		defer close(done)
		v, err := c.Get(ctx, "a")
		assert.NoError(t, err)
		assert.Equal(t, "value-a", *v)
	}()
	<-started
	c.Invalidate(ctx, "a")
	close(release)
	<-done

	_, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "stale load is not cached")
}
