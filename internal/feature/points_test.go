package feature

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadPoints_CSV(t *testing.T) {
	path := writeFile(t, "stops.csv", `ID,Name,Lat,Lon,Route
1, Market St & 5th St ,37.784,-122.407,F
2,Geary Blvd & 33rd Ave,37.78,-122.492,38
3,Broken,north,-122.4,1
4,,37.79,-122.41,
`)

	features, err := ReadPoints(path, PointOptions{})
	require.NoError(t, err)
	require.Len(t, features, 3)

	assert.Equal(t, "1", features[0].ID)
	assert.Equal(t, "Market St & 5th St", features[0].Name)
	lat, lon, ok := features[0].Location()
	require.True(t, ok)
	assert.InDelta(t, 37.784, lat, 1e-9)
	assert.InDelta(t, -122.407, lon, 1e-9)
	assert.Equal(t, "F", features[0].Properties["Route"])

	// Missing name falls back to the id.
	assert.Equal(t, "4", features[2].ID)
	assert.Equal(t, "4", features[2].Name)
}

func TestReadPoints_CustomColumns(t *testing.T) {
	path := writeFile(t, "cities.csv", `city,latitude,longitude
"Delhi, India",28.6139,77.209
"Mumbai, India",19.076,72.8777
`)

	features, err := ReadPoints(path, PointOptions{
		NameColumn: "city",
		LatColumn:  "latitude",
		LonColumn:  "longitude",
	})
	require.NoError(t, err)
	require.Len(t, features, 2)

	// No id column: ids are row numbers.
	assert.Equal(t, "1", features[0].ID)
	assert.Equal(t, "Delhi, India", features[0].Name)
	assert.Equal(t, "2", features[1].ID)
}

func TestReadPoints_OutOfRange(t *testing.T) {
	path := writeFile(t, "bad.csv", "id,lat,lon\n1,91,0\n2,0,181\n3,45,45\n")

	features, err := ReadPoints(path, PointOptions{})
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, "3", features[0].ID)
}

func TestReadPoints_MissingCoordinateColumns(t *testing.T) {
	path := writeFile(t, "nocoords.csv", "id,name\n1,a\n")

	_, err := ReadPoints(path, PointOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"lat"`)
}

func TestReadPoints_Empty(t *testing.T) {
	path := writeFile(t, "empty.csv", "")

	_, err := ReadPoints(path, PointOptions{})
	assert.Error(t, err)
}

func TestReadPoints_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, "stops.json", "[]")

	_, err := ReadPoints(path, PointOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestReadPoints_XLSX(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Stops")
	require.NoError(t, err)
	for _, rowData := range [][]string{
		{"id", "name", "lat", "lon"},
		{"7", "Van Ness Ave & Market St", "37.775", "-122.419"},
		{"8", "Mission St & 16th St", "37.765", "-122.42"},
	} {
		row := sheet.AddRow()
		for _, v := range rowData {
			row.AddCell().SetString(v)
		}
	}
	path := filepath.Join(t.TempDir(), "stops.xlsx")
	require.NoError(t, f.Save(path))

	features, err := ReadPoints(path, PointOptions{Sheet: "Stops"})
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, "7", features[0].ID)
	assert.Equal(t, "Mission St & 16th St", features[1].Name)

	_, err = ReadPoints(path, PointOptions{Sheet: "Routes"})
	assert.Error(t, err)
}
