package store

import (
	"context"
	"errors"

	"github.com/strathub/strathub-service/pkg/model"
)

type multiWriter struct {
	writers []Writer
}

// Multi returns a Writer which forwards to all writers.
// Every writer is called, errors are joined.
func Multi(writers ...Writer) Writer {
	return &multiWriter{writers: writers}
}

func (m *multiWriter) SaveRace(ctx context.Context, doc *model.RaceAnalyticsDocument) error {
	errs := make([]error, 0)
	for _, w := range m.writers {
		if err := w.SaveRace(ctx, doc); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

//nolint:whitespace // can't make both editor and linter happy
func (m *multiWriter) SaveSeasonIndex(
	ctx context.Context,
	season int,
	entries []model.RaceIndexEntry,
) error {
	errs := make([]error, 0)
	for _, w := range m.writers {
		if err := w.SaveSeasonIndex(ctx, season, entries); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MergeSeasonIndex merges the entries into the index of every writer
//
//nolint:whitespace // can't make both editor and linter happy
func (m *multiWriter) MergeSeasonIndex(
	ctx context.Context,
	season int,
	entries []model.RaceIndexEntry,
) error {
	errs := make([]error, 0)
	for _, w := range m.writers {
		if err := MergeSeasonIndex(ctx, w, season, entries); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
