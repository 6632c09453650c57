package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storeFile "github.com/strathub/strathub-service/pkg/store/file"
	"github.com/strathub/strathub-service/testsupport/basedata"
)

func TestCollectSeason(t *testing.T) {
	ctx := context.Background()
	fs := storeFile.New(t.TempDir())
	require.NoError(t, fs.SaveRace(ctx,
		basedata.SampleDocument(2023, 2, "Saudi Arabian Grand Prix", "Jeddah")))
	require.NoError(t, fs.SaveRace(ctx,
		basedata.SampleDocument(2023, 1, "Bahrain Grand Prix", "Sakhir")))
	require.NoError(t, fs.SaveSeasonIndex(ctx, 2023, basedata.SampleIndex()))

	docs, err := collectSeason(ctx, fs, 2023)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, 1, docs[0].Round)
	assert.Equal(t, 2, docs[1].Round)

	_, err = collectSeason(ctx, fs, 2019)
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestCollectSeasonBrokenDocument(t *testing.T) {
	ctx := context.Background()
	fs := storeFile.New(t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Join(fs.Dir(), "2023"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(fs.Dir(), "2023", "race_1.json"),
		[]byte("{not json"), 0o600))

	_, err := collectSeason(ctx, fs, 2023)
	assert.Error(t, err)
}
