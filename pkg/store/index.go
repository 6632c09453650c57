package store

import (
	"context"
	"errors"
	"slices"

	"github.com/strathub/strathub-service/pkg/model"
)

// IndexMerger is implemented by writers which update a season index in place
type IndexMerger interface {
	// MergeSeasonIndex replaces the entries of the given rounds and keeps the others
	MergeSeasonIndex(ctx context.Context, season int, entries []model.RaceIndexEntry) error
}

type indexLister interface {
	ListRaces(ctx context.Context, season int) ([]model.RaceIndexEntry, error)
}

// MergeIndex returns existing with entries of the same round replaced by
// those of updates, ordered by round
func MergeIndex(existing, updates []model.RaceIndexEntry) []model.RaceIndexEntry {
	ret := make([]model.RaceIndexEntry, 0, len(existing)+len(updates))
	for _, e := range existing {
		if !slices.ContainsFunc(updates, func(u model.RaceIndexEntry) bool {
			return u.Round == e.Round
		}) {
			ret = append(ret, e)
		}
	}
	ret = append(ret, updates...)
	slices.SortStableFunc(ret, func(a, b model.RaceIndexEntry) int {
		return a.Round - b.Round
	})
	return ret
}

// MergeSeasonIndex adds entries to the season index of w.
// Writers that can read their index get it merged, others have it replaced.
//
//nolint:whitespace // can't make both editor and linter happy
func MergeSeasonIndex(
	ctx context.Context,
	w Writer,
	season int,
	entries []model.RaceIndexEntry,
) error {
	if m, ok := w.(IndexMerger); ok {
		return m.MergeSeasonIndex(ctx, season, entries)
	}
	lister, ok := w.(indexLister)
	if !ok {
		return w.SaveSeasonIndex(ctx, season, entries)
	}
	existing, err := lister.ListRaces(ctx, season)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return w.SaveSeasonIndex(ctx, season, MergeIndex(existing, entries))
}
