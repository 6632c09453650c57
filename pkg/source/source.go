package source

import (
	"context"
	"errors"

	"github.com/strathub/strathub-service/pkg/model"
)

var (
	ErrRaceNotFound     = errors.New("race not found")
	ErrInvalidTelemetry = errors.New("invalid telemetry")
)

// Source provides the raw telemetry of races
type Source interface {
	// Rounds returns the available rounds of a season in ascending order
	Rounds(ctx context.Context, season int) ([]int, error)
	LoadRace(ctx context.Context, id model.RaceID) (*model.RaceInput, error)
}
