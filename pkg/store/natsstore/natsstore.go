package natsstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/strathub/strathub-service/log"
	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/store"
)

const (
	DefaultBucket        = "race_analytics"
	DefaultSubjectPrefix = "strathub.race"
	indexKey             = "index"
)

type (
	Option func(s *Store)

	// Store keeps race documents in a JetStream key value bucket.
	// Documents use the key <season>.<round>, season indexes <season>.index.
	// Each saved race is announced on <prefix>.<season>.<round>.
	Store struct {
		nc            *nats.Conn
		kv            jetstream.KeyValue
		bucket        string
		subjectPrefix string
		l             *log.Logger
	}
)

var _ store.ReadWriter = (*Store)(nil)

func WithBucket(bucket string) Option {
	return func(s *Store) {
		s.bucket = bucket
	}
}

func WithSubjectPrefix(prefix string) Option {
	return func(s *Store) {
		s.subjectPrefix = prefix
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		s.l = l
	}
}

func New(ctx context.Context, nc *nats.Conn, opts ...Option) (*Store, error) {
	ret := &Store{
		nc:            nc,
		bucket:        DefaultBucket,
		subjectPrefix: DefaultSubjectPrefix,
		l:             log.Default().Named("store.nats"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, err
	}
	ret.kv, err = js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      ret.bucket,
		Description: "computed race analytics documents",
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Store) SaveRace(ctx context.Context, doc *model.RaceAnalyticsDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	id := doc.RaceID()
	if _, err := s.kv.Put(ctx, raceKey(id), data); err != nil {
		return fmt.Errorf("put race %s: %w", id, err)
	}
	note, err := json.Marshal(doc.IndexEntry())
	if err != nil {
		return err
	}
	if err := s.nc.Publish(s.Subject(id), note); err != nil {
		s.l.Warn("could not announce race",
			log.String("race", id.String()), log.ErrorField(err))
	}
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
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	_, err = s.kv.Put(ctx, seasonIndexKey(season), data)
	return err
}

// ListSeasons returns the seasons with an index, newest first
func (s *Store) ListSeasons(ctx context.Context) ([]int, error) {
	lister, err := s.kv.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return []int{}, nil
		}
		return nil, err
	}
	ret := make([]int, 0)
	for key := range lister.Keys() {
		season, rest, ok := strings.Cut(key, ".")
		if !ok || rest != indexKey {
			continue
		}
		if v, err := strconv.Atoi(season); err == nil {
			ret = append(ret, v)
		}
	}
	slices.Sort(ret)
	slices.Reverse(ret)
	return ret, nil
}

func (s *Store) ListRaces(ctx context.Context, season int) ([]model.RaceIndexEntry, error) {
	var ret []model.RaceIndexEntry
	if err := s.get(ctx, seasonIndexKey(season), &ret); err != nil {
		return nil, fmt.Errorf("season %d: %w", season, err)
	}
	return ret, nil
}

//nolint:whitespace // can't make both editor and linter happy
func (s *Store) LoadRace(
	ctx context.Context,
	id model.RaceID,
) (*model.RaceAnalyticsDocument, error) {
	ret := &model.RaceAnalyticsDocument{}
	if err := s.get(ctx, raceKey(id), ret); err != nil {
		return nil, fmt.Errorf("race %s: %w", id, err)
	}
	return ret, nil
}

// Subject returns the subject a saved race is announced on
func (s *Store) Subject(id model.RaceID) string {
	return fmt.Sprintf("%s.%d.%d", s.subjectPrefix, id.Season, id.Round)
}

// Watch calls onChange for every race announced on the subject prefix
// until ctx is done
func (s *Store) Watch(ctx context.Context, onChange func(id model.RaceID)) error {
	sub, err := s.nc.Subscribe(s.subjectPrefix+".*.*", func(msg *nats.Msg) {
		id, ok := s.parseSubject(msg.Subject)
		if !ok {
			s.l.Debug("ignoring subject", log.String("subject", msg.Subject))
			return
		}
		onChange(id)
	})
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil {
			s.l.Debug("unsubscribe", log.ErrorField(err))
		}
	}()
	return nil
}

func (s *Store) parseSubject(subject string) (model.RaceID, bool) {
	rest, ok := strings.CutPrefix(subject, s.subjectPrefix+".")
	if !ok {
		return model.RaceID{}, false
	}
	seasonPart, roundPart, ok := strings.Cut(rest, ".")
	if !ok {
		return model.RaceID{}, false
	}
	season, err := strconv.Atoi(seasonPart)
	if err != nil {
		return model.RaceID{}, false
	}
	round, err := strconv.Atoi(roundPart)
	if err != nil {
		return model.RaceID{}, false
	}
	return model.RaceID{Season: season, Round: round}, true
}

func (s *Store) get(ctx context.Context, key string, v any) error {
	kve, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return store.ErrNotFound
		}
		return err
	}
	return json.Unmarshal(kve.Value(), v)
}

func raceKey(id model.RaceID) string {
	return fmt.Sprintf("%d.%d", id.Season, id.Round)
}

func seasonIndexKey(season int) string {
	return fmt.Sprintf("%d.%s", season, indexKey)
}
