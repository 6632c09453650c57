package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"

	"github.com/strathub/strathub-service/log"
	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/source"
)

var roundFile = regexp.MustCompile(`^round_(\d+)\.json$`)

// Source reads telemetry exports stored as <dir>/<season>/round_<n>.json
type Source struct {
	dir string
	l   *log.Logger
}

type Option func(s *Source)

func WithLogger(l *log.Logger) Option {
	return func(s *Source) {
		s.l = l
	}
}

func New(dir string, opts ...Option) *Source {
	ret := &Source{
		dir: dir,
		l:   log.Default().Named("source.file"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

var _ source.Source = (*Source)(nil)

func (s *Source) Rounds(ctx context.Context, season int) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, strconv.Itoa(season)))
	if errors.Is(err, fs.ErrNotExist) {
		return []int{}, nil
	}
	if err != nil {
		return nil, err
	}
	ret := make([]int, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := roundFile.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if r, err := strconv.Atoi(m[1]); err == nil {
			ret = append(ret, r)
		}
	}
	slices.Sort(ret)
	return ret, nil
}

func (s *Source) LoadRace(ctx context.Context, id model.RaceID) (*model.RaceInput, error) {
	file := s.path(id)
	data, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", id, source.ErrRaceNotFound)
	}
	if err != nil {
		return nil, err
	}
	input, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	if input.RaceID != id {
		return nil, fmt.Errorf("%s: %w: file contains race %s",
			id, source.ErrInvalidTelemetry, input.RaceID)
	}
	s.l.Debug("race loaded",
		log.String("file", file),
		log.Int("drivers", len(input.Results)))
	return input, nil
}

func (s *Source) path(id model.RaceID) string {
	return filepath.Join(s.dir,
		strconv.Itoa(id.Season),
		fmt.Sprintf("round_%d.json", id.Round))
}
