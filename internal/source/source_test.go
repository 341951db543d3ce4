package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-agg-engine/internal/model"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadInline(t *testing.T) {
	records, err := Load(model.SourceSpec{
		Type: "inline",
		Records: []model.GenericRecord{
			{"city": "NYC", "temp": 20.0},
		},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "NYC", records[0]["city"])
}

func TestLoadUnknownType(t *testing.T) {
	_, err := Load(model.SourceSpec{Type: "kafka"})
	assert.Error(t, err)
}

func TestLoadCSV(t *testing.T) {
	path := writeTemp(t, "temps.csv", "city,temp,note\nNYC,20,\"cold, wet\"\nSFO,32.5,mild\n")

	records, err := Load(model.SourceSpec{Type: "csv", URL: path})
	require.NoError(t, err)
	require.Len(t, records, 2)

	// cells come back typed: int, float, string
	assert.Equal(t, "NYC", records[0]["city"])
	assert.Equal(t, 20, records[0]["temp"])
	assert.Equal(t, "cold, wet", records[0]["note"])
	assert.Equal(t, 32.5, records[1]["temp"])
}

func TestLoadCSVQuotedHeaders(t *testing.T) {
	path := writeTemp(t, "q.csv", "\"city\", \"temp\"\nNYC,1\n")

	records, err := Load(model.SourceSpec{Type: "csv", URL: path})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records[0], "city")
	assert.Contains(t, records[0], "temp")
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := Load(model.SourceSpec{Type: "csv", URL: filepath.Join(t.TempDir(), "nope.csv")})
	assert.Error(t, err)
}

func TestLoadJSONArray(t *testing.T) {
	path := writeTemp(t, "rows.json", `[{"city":"NYC","temp":20},{"city":"SFO","temp":32}]`)

	records, err := Load(model.SourceSpec{Type: "json", URL: path})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "SFO", records[1]["city"])
}

func TestLoadJSONSingleObject(t *testing.T) {
	path := writeTemp(t, "row.json", `{"city":"NYC","temp":20}`)

	records, err := Load(model.SourceSpec{Type: "json", URL: path})
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestLoadJSONMalformed(t *testing.T) {
	path := writeTemp(t, "bad.json", `"just a string"`)
	_, err := Load(model.SourceSpec{Type: "json", URL: path})
	assert.Error(t, err)
}

func TestLoadRunsValidation(t *testing.T) {
	spec := model.SourceSpec{
		Type: "inline",
		Records: []model.GenericRecord{
			{"city": "NYC", "temp": -300.0},
		},
		Validation: &model.ValidationRules{
			RequiredFields: []string{"city", "temp"},
			MinValues:      map[string]float64{"temp": -273.15},
		},
	}
	_, err := Load(spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below minimum")
}

func TestBuildWrapsRecords(t *testing.T) {
	src, err := Build(model.SourceSpec{
		Type: "inline",
		Records: []model.GenericRecord{
			{"city": "NYC", "temp": 20.0},
			{"city": "SFO", "temp": 32.0},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, src.NumRows())

	v, err := src.Value(0, "city")
	require.NoError(t, err)
	assert.Equal(t, "NYC", v)

	f, err := src.Float64(1, "temp")
	require.NoError(t, err)
	assert.Equal(t, 32.0, f)
}
