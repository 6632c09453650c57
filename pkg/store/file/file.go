package file

import (
	"context"
	"encoding/json"
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
	"github.com/strathub/strathub-service/pkg/store"
)

const indexFile = "races.json"

var raceFile = regexp.MustCompile(`^race_(\d+)\.json$`)

// Store keeps documents as <dir>/<season>/race_<round>.json and the season
// index as <dir>/<season>/races.json
type Store struct {
	dir string
	l   *log.Logger
}

var _ store.ReadWriter = (*Store)(nil)

type Option func(s *Store)

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		s.l = l
	}
}

func New(dir string, opts ...Option) *Store {
	ret := &Store{
		dir: dir,
		l:   log.Default().Named("store.file"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) SaveRace(ctx context.Context, doc *model.RaceAnalyticsDocument) error {
	file := s.racePath(doc.RaceID())
	if err := writeJSON(file, doc); err != nil {
		return err
	}
	s.l.Debug("race saved", log.String("file", file))
	return nil
}

//nolint:whitespace // can't make both editor and linter happy
func (s *Store) SaveSeasonIndex(
	ctx context.Context,
	season int,
	entries []model.RaceIndexEntry,
) error {
	if entries == nil {
		entries = []model.RaceIndexEntry{}
	}
	return writeJSON(filepath.Join(s.seasonDir(season), indexFile), entries)
}

// ListSeasons returns the numeric directories, newest first
func (s *Store) ListSeasons(ctx context.Context) ([]int, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []int{}, nil
	}
	if err != nil {
		return nil, err
	}
	ret := make([]int, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if season, err := strconv.Atoi(e.Name()); err == nil {
			ret = append(ret, season)
		}
	}
	slices.Sort(ret)
	slices.Reverse(ret)
	return ret, nil
}

//nolint:whitespace // can't make both editor and linter happy
func (s *Store) ListRaces(
	ctx context.Context,
	season int,
) ([]model.RaceIndexEntry, error) {
	var ret []model.RaceIndexEntry
	err := readJSON(filepath.Join(s.seasonDir(season), indexFile), &ret)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("season %d: %w", season, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(ret, func(a, b model.RaceIndexEntry) int {
		return a.Round - b.Round
	})
	return ret, nil
}

//nolint:whitespace // can't make both editor and linter happy
func (s *Store) LoadRace(
	ctx context.Context,
	id model.RaceID,
) (*model.RaceAnalyticsDocument, error) {
	ret := &model.RaceAnalyticsDocument{}
	err := readJSON(s.racePath(id), ret)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("race %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// InsertIfMissing stores doc and adds it to the season index unless the
// race already has a document. The result reports whether doc was stored.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *Store) InsertIfMissing(
	ctx context.Context,
	doc *model.RaceAnalyticsDocument,
) (bool, error) {
	_, err := os.Stat(s.racePath(doc.RaceID()))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	if err := s.SaveRace(ctx, doc); err != nil {
		return false, err
	}
	entries, err := s.ListRaces(ctx, doc.Season)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return true, err
	}
	return true, s.SaveSeasonIndex(ctx, doc.Season,
		store.MergeIndex(entries, []model.RaceIndexEntry{doc.IndexEntry()}))
}

// Rounds returns the rounds of a season having a stored document
func (s *Store) Rounds(season int) ([]int, error) {
	entries, err := os.ReadDir(s.seasonDir(season))
	if errors.Is(err, fs.ErrNotExist) {
		return []int{}, nil
	}
	if err != nil {
		return nil, err
	}
	ret := make([]int, 0, len(entries))
	for _, e := range entries {
		if id, ok := ParseRaceFile(filepath.Join(s.seasonDir(season), e.Name())); ok {
			ret = append(ret, id.Round)
		}
	}
	slices.Sort(ret)
	return ret, nil
}

// ParseRaceFile extracts the race id of a document path
func ParseRaceFile(path string) (model.RaceID, bool) {
	m := raceFile.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return model.RaceID{}, false
	}
	season, err := strconv.Atoi(filepath.Base(filepath.Dir(path)))
	if err != nil {
		return model.RaceID{}, false
	}
	round, err := strconv.Atoi(m[1])
	if err != nil {
		return model.RaceID{}, false
	}
	return model.RaceID{Season: season, Round: round}, true
}

func (s *Store) seasonDir(season int) string {
	return filepath.Join(s.dir, strconv.Itoa(season))
}

func (s *Store) racePath(id model.RaceID) string {
	return filepath.Join(s.seasonDir(id.Season), fmt.Sprintf("race_%d.json", id.Round))
}

// writeJSON writes to a temp file first so readers never see partial content
func writeJSON(file string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(file), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), file)
}

func readJSON(file string, v any) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
