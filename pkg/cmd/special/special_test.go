package special

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strathub/strathub-service/pkg/model"
	storeFile "github.com/strathub/strathub-service/pkg/store/file"
)

const sampleYAML = `
- season: 2021
  round: 22
  event_name: Abu Dhabi Grand Prix
  location: Abu Dhabi
  note: Standard strategy and stint analytics are intentionally limited.
  context:
    - Late safety car
    - Race director intervention
- season: 2021
  round: 12
  event_name: Belgian Grand Prix
  location: Spa-Francorchamps
  note: No racing laps under green flag.
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "special.yml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	return file
}

func TestLoadRaces(t *testing.T) {
	races, err := LoadRaces(writeFile(t, sampleYAML))
	require.NoError(t, err)
	require.Len(t, races, 2)
	assert.Equal(t, Race{
		Season:    2021,
		Round:     22,
		EventName: "Abu Dhabi Grand Prix",
		Location:  "Abu Dhabi",
		Note:      "Standard strategy and stint analytics are intentionally limited.",
		Context:   []string{"Late safety car", "Race director intervention"},
	}, races[0])

	doc := races[1].Document()
	assert.True(t, doc.SpecialCase)
	assert.Empty(t, doc.Drivers)
	assert.Nil(t, doc.Derived.WinningRecipe)
	assert.Equal(t, []string{}, doc.Derived.Context)
}

func TestLoadRacesInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "no yaml list", content: "season: 2021"},
		{name: "missing note", content: "- {season: 2021, round: 1, event_name: X}"},
		{name: "invalid round", content: "- {season: 2021, round: 0, event_name: X, note: n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRaces(writeFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestInsertAll(t *testing.T) {
	ctx := context.Background()
	fs := storeFile.New(t.TempDir())
	races, err := LoadRaces(writeFile(t, sampleYAML))
	require.NoError(t, err)

	require.NoError(t, insertAll(ctx, fs, races))
	require.NoError(t, insertAll(ctx, fs, races))

	index, err := fs.ListRaces(ctx, 2021)
	require.NoError(t, err)
	assert.Equal(t, []model.RaceIndexEntry{
		{Season: 2021, Round: 12, EventName: "Belgian Grand Prix", Location: "Spa-Francorchamps"},
		{Season: 2021, Round: 22, EventName: "Abu Dhabi Grand Prix", Location: "Abu Dhabi"},
	}, index)

	doc, err := fs.LoadRace(ctx, model.RaceID{Season: 2021, Round: 22})
	require.NoError(t, err)
	assert.True(t, doc.SpecialCase)
	assert.Equal(t, []string{"Late safety car", "Race director intervention"}, doc.Derived.Context)
}
