package store

import (
	"context"
	"errors"

	"github.com/strathub/strathub-service/pkg/model"
)

var ErrNotFound = errors.New("not found")

// Writer persists computed race documents
type Writer interface {
	SaveRace(ctx context.Context, doc *model.RaceAnalyticsDocument) error
	// SaveSeasonIndex replaces the index of a season
	SaveSeasonIndex(ctx context.Context, season int, entries []model.RaceIndexEntry) error
}

// Reader provides access to stored race documents.
// Missing seasons or races are reported with ErrNotFound.
type Reader interface {
	// ListSeasons returns the available seasons, newest first
	ListSeasons(ctx context.Context) ([]int, error)
	// ListRaces returns the index of a season ordered by round
	ListRaces(ctx context.Context, season int) ([]model.RaceIndexEntry, error)
	LoadRace(ctx context.Context, id model.RaceID) (*model.RaceAnalyticsDocument, error)
}

// ReadWriter combines Reader and Writer
type ReadWriter interface {
	Reader
	Writer
}
