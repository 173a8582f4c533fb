package mapper

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var dataRE = regexp.MustCompile(`const data = (\{.*\});`)

// pageLayers reads a written map and returns its embedded layer JSON.
func pageLayers(t *testing.T, path string) (string, map[string]any) {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	m := dataRE.FindSubmatch(content)
	require.Len(t, m, 2)
	var out map[string]any
	require.NoError(t, json.Unmarshal(m[1], &out))
	return string(content), out
}

func outPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}
