package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinsight/reop/pkg/model"
	"github.com/clinsight/reop/pkg/pipeline"
	"github.com/clinsight/reop/pkg/schema"
)

func testPredictor(t *testing.T) *pipeline.Predictor {
	t.Helper()
	f, err := model.Default(schema.Names())
	require.NoError(t, err)
	return pipeline.New(f)
}

func TestNewApp(t *testing.T) {
	app := newApp()
	require.NotNil(t, app)
	assert.Equal(t, name, app.Name)

	names := make([]string, 0, len(app.Commands))
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"predict", "schema", "server"}, names)
}

func TestLoadForestBundled(t *testing.T) {
	f, err := loadForest("")
	require.NoError(t, err)
	assert.Equal(t, schema.Count, f.NumFeatures())
}

func TestLoadForestMissingPath(t *testing.T) {
	_, err := loadForest("/does/not/exist.json")
	assert.Error(t, err)
}
