package feature

import (
	"archive/zip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/envmap-cli/internal/fetcher"
)

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestResolve_LocalPassthrough(t *testing.T) {
	path := writeFile(t, "zones.shp", "x")

	got, err := Resolve(context.Background(), path, t.TempDir(), ".shp", fetcher.Router{})
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestResolve_LocalZip(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "counties.zip")
	require.NoError(t, os.WriteFile(archive, zipBytes(t, map[string]string{
		"README.txt":            "counties",
		"counties/Counties.SHP": "shape",
		"counties/Counties.dbf": "attrs",
	}), 0o644))

	tmp := t.TempDir()
	got, err := Resolve(context.Background(), archive, tmp, ".shp", fetcher.Router{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, "counties", "counties", "Counties.SHP"), got)
}

func TestResolve_RemoteZip(t *testing.T) {
	payload := zipBytes(t, map[string]string{"stops.csv": "id,lat,lon\n1,37.7,-122.4\n"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/stops.zip", r.URL.Path)
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	router := fetcher.Router{HTTP: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})}
	tmp := t.TempDir()

	got, err := Resolve(context.Background(), srv.URL+"/data/stops.zip", tmp, ".csv", router)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, "stops", "stops.csv"), got)

	features, err := ReadPoints(got, PointOptions{})
	require.NoError(t, err)
	assert.Len(t, features, 1)
}

func TestResolve_RemoteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	router := fetcher.Router{HTTP: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})}
	_, err := Resolve(context.Background(), srv.URL+"/missing.zip", t.TempDir(), ".shp", router)
	assert.Error(t, err)
}

func TestResolve_NoFetcherForScheme(t *testing.T) {
	_, err := Resolve(context.Background(), "ftp://example.com/zones.zip", t.TempDir(), ".shp", fetcher.Router{})
	assert.Error(t, err)
}

func TestResolve_ZipWithoutWantedFile(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "docs.zip")
	require.NoError(t, os.WriteFile(archive, zipBytes(t, map[string]string{"a.txt": "a"}), 0o644))

	_, err := Resolve(context.Background(), archive, t.TempDir(), ".shp", fetcher.Router{})
	assert.Error(t, err)
}
