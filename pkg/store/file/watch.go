package file

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fsnotify/fsnotify"

	"github.com/strathub/strathub-service/log"
	"github.com/strathub/strathub-service/pkg/model"
)

// Watch reports changed documents until ctx is done.
// A change of a season index is reported with Round 0.
func (s *Store) Watch(ctx context.Context, onChange func(id model.RaceID)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		watcher.Close()
		return err
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return err
	}
	seasons, err := s.ListSeasons(ctx)
	if err != nil {
		watcher.Close()
		return err
	}
	for _, season := range seasons {
		if err := watcher.Add(s.seasonDir(season)); err != nil {
			s.l.Warn("cannot watch season", log.Int("season", season), log.ErrorField(err))
		}
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				s.handleEvent(watcher, ev, onChange)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.l.Warn("watch error", log.ErrorField(err))
			}
		}
	}()
	return nil
}

//nolint:whitespace // can't make both editor and linter happy
func (s *Store) handleEvent(
	watcher *fsnotify.Watcher,
	ev fsnotify.Event,
	onChange func(id model.RaceID),
) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) {
		return
	}
	// new season directory
	if filepath.Dir(ev.Name) == filepath.Clean(s.dir) {
		if _, err := strconv.Atoi(filepath.Base(ev.Name)); err == nil && ev.Has(fsnotify.Create) {
			if err := watcher.Add(ev.Name); err != nil {
				s.l.Warn("cannot watch season", log.String("dir", ev.Name), log.ErrorField(err))
			}
		}
		return
	}
	if id, ok := ParseRaceFile(ev.Name); ok {
		s.l.Debug("race changed", log.String("race", id.String()))
		onChange(id)
		return
	}
	if filepath.Base(ev.Name) == indexFile {
		if season, err := strconv.Atoi(filepath.Base(filepath.Dir(ev.Name))); err == nil {
			onChange(model.RaceID{Season: season})
		}
	}
}
