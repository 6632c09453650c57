//nolint:funlen // ok for tests
package season

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/source"
	"github.com/strathub/strathub-service/testsupport/basedata"
)

type mapSource struct {
	races map[model.RaceID]*model.RaceInput
}

func (m *mapSource) Rounds(ctx context.Context, season int) ([]int, error) {
	if season == 1950 {
		return nil, errors.New("no data")
	}
	// deliberately unordered
	return []int{3, 1, 2}, nil
}

func (m *mapSource) LoadRace(ctx context.Context, id model.RaceID) (*model.RaceInput, error) {
	if r, ok := m.races[id]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%s: %w", id, source.ErrRaceNotFound)
}

type memWriter struct {
	mu    sync.Mutex
	docs  map[model.RaceID]*model.RaceAnalyticsDocument
	index map[int][]model.RaceIndexEntry
}

func newMemWriter() *memWriter {
	return &memWriter{
		docs:  map[model.RaceID]*model.RaceAnalyticsDocument{},
		index: map[int][]model.RaceIndexEntry{},
	}
}

func (m *memWriter) SaveRace(ctx context.Context, doc *model.RaceAnalyticsDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.RaceID()] = doc
	return nil
}

func (m *memWriter) SaveSeasonIndex(ctx context.Context, season int, e []model.RaceIndexEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index[season] = e
	return nil
}

func sampleSource() *mapSource {
	r1 := basedata.SampleRaceInput()
	r2 := basedata.SampleNoFinisherInput()
	return &mapSource{races: map[model.RaceID]*model.RaceInput{
		r1.RaceID: r1,
		r2.RaceID: r2,
	}}
}

func TestRunAllRounds(t *testing.T) {
	out := newMemWriter()
	r := NewRunner(sampleSource(), out, WithWorkers(2))

	res, err := r.Run(context.Background(), 2023)
	require.NoError(t, err)

	assert.Equal(t, 2023, res.Season)
	assert.Equal(t, basedata.SampleIndex(), res.Processed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, model.RaceID{Season: 2023, Round: 3}, res.Failures[0].Race)
	assert.True(t, errors.Is(res.Failures[0].Err, source.ErrRaceNotFound))
	assert.ErrorIs(t, res.Err(), source.ErrRaceNotFound)

	assert.Len(t, out.docs, 2)
	assert.Equal(t, basedata.SampleIndex(), out.index[2023])
	noFinisher := out.docs[model.RaceID{Season: 2023, Round: 2}]
	require.NotNil(t, noFinisher)
	assert.Nil(t, noFinisher.Derived.WinningRecipe)
}

func TestRunSelectedRounds(t *testing.T) {
	out := newMemWriter()
	r := NewRunner(sampleSource(), out)

	res, err := r.Run(context.Background(), 2023, 1)
	require.NoError(t, err)
	assert.Empty(t, res.Failures)
	assert.NoError(t, res.Err())
	assert.Equal(t, basedata.SampleIndex()[:1], out.index[2023])
}

func TestRunRoundsError(t *testing.T) {
	out := newMemWriter()
	r := NewRunner(sampleSource(), out)

	_, err := r.Run(context.Background(), 1950)
	assert.Error(t, err)
	assert.Empty(t, out.index)
}

func TestRunCanceled(t *testing.T) {
	out := newMemWriter()
	r := NewRunner(sampleSource(), out)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.Run(ctx, 2023, 1, 2)
	require.NoError(t, err)
	assert.Empty(t, res.Processed)
	assert.Len(t, res.Failures, 2)
	assert.ErrorIs(t, res.Err(), context.Canceled)
	assert.Empty(t, out.docs)
	assert.Equal(t, []model.RaceIndexEntry{}, out.index[2023])
}

// indexWriter can read back its index, the runner merges into it
type indexWriter struct {
	*memWriter
}

func (w indexWriter) ListRaces(ctx context.Context, season int) ([]model.RaceIndexEntry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index[season], nil
}

func TestRunSelectedRoundsMergesIndex(t *testing.T) {
	out := indexWriter{newMemWriter()}
	r := NewRunner(sampleSource(), out)

	_, err := r.Run(context.Background(), 2023)
	require.NoError(t, err)
	require.Equal(t, basedata.SampleIndex(), out.index[2023])

	res, err := r.Run(context.Background(), 2023, 2)
	require.NoError(t, err)
	assert.Len(t, res.Processed, 1)
	assert.Equal(t, basedata.SampleIndex(), out.index[2023],
		"rerun of a single round keeps the other rounds")
}

type panicSource struct {
	*mapSource
}

func (p panicSource) LoadRace(ctx context.Context, id model.RaceID) (*model.RaceInput, error) {
	if id.Round == 2 {
		panic("broken export")
	}
	return p.mapSource.LoadRace(ctx, id)
}

func TestRunPanicIsolated(t *testing.T) {
	out := newMemWriter()
	r := NewRunner(panicSource{sampleSource()}, out)

	res, err := r.Run(context.Background(), 2023, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, basedata.SampleIndex()[:1], res.Processed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 2, res.Failures[0].Race.Round)
	assert.ErrorIs(t, res.Failures[0].Err, ErrPanic)
	assert.Len(t, out.docs, 1)
}
