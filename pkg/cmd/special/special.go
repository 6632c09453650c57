package special

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/strathub/strathub-service/log"
	"github.com/strathub/strathub-service/pkg/cmd/util"
	"github.com/strathub/strathub-service/pkg/config"
	"github.com/strathub/strathub-service/pkg/model"
	storeFile "github.com/strathub/strathub-service/pkg/store/file"
	storePostgres "github.com/strathub/strathub-service/pkg/store/postgres"
)

// Race describes a race whose standard analytics are not meaningful
type Race struct {
	Season    int      `yaml:"season" validate:"gte=1950"`
	Round     int      `yaml:"round" validate:"gte=1"`
	EventName string   `yaml:"event_name" validate:"required"`
	Location  string   `yaml:"location"`
	Note      string   `yaml:"note" validate:"required"`
	Context   []string `yaml:"context"`
}

type inserter interface {
	InsertIfMissing(ctx context.Context, doc *model.RaceAnalyticsDocument) (bool, error)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func NewSpecialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "special file.yml",
		Short: "stores documents for special case races",
		Long: `Reads a YAML list of special case races and stores a document for
each race that has no document yet. Existing documents are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return insertSpecialRaces(cmd.Context(), args[0])
		},
	}
	return cmd
}

func insertSpecialRaces(ctx context.Context, file string) error {
	races, err := LoadRaces(file)
	if err != nil {
		return err
	}
	var target inserter
	switch config.Store {
	case config.StoreFile:
		target = storeFile.New(config.DataDir)
	case config.StorePostgres:
		if err := util.WaitForDB(); err != nil {
			log.Fatal("database not ready", log.ErrorField(err))
		}
		pool, err := util.OpenPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()
		target = storePostgres.New(pool)
	default:
		return fmt.Errorf("unknown store %q", config.Store)
	}
	return insertAll(ctx, target, races)
}

func insertAll(ctx context.Context, target inserter, races []Race) error {
	for i := range races {
		doc := races[i].Document()
		inserted, err := target.InsertIfMissing(ctx, doc)
		if err != nil {
			return fmt.Errorf("race %s: %w", doc.RaceID(), err)
		}
		if inserted {
			log.Info("special case race inserted", log.String("race", doc.RaceID().String()))
		} else {
			log.Warn("race already exists, skipping", log.String("race", doc.RaceID().String()))
		}
	}
	return nil
}

// LoadRaces reads and validates the races of a YAML file
func LoadRaces(file string) ([]Race, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var ret []Race
	if err := yaml.Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	for i := range ret {
		if err := validate.Struct(&ret[i]); err != nil {
			return nil, fmt.Errorf("%s: entry %d: %w", file, i+1, err)
		}
	}
	return ret, nil
}

// Document returns the stored form of the race. It has no drivers and
// carries the context remarks in the derived block.
func (r *Race) Document() *model.RaceAnalyticsDocument {
	remarks := r.Context
	if remarks == nil {
		remarks = []string{}
	}
	return &model.RaceAnalyticsDocument{
		Season:      r.Season,
		Round:       r.Round,
		EventName:   r.EventName,
		Location:    r.Location,
		SpecialCase: true,
		Note:        r.Note,
		Drivers:     []model.DriverAnalytics{},
		Derived: model.Derived{
			StyleProfile: []string{},
			Context:      remarks,
		},
	}
}
