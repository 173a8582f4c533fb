package classify

import (
	"math"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ErrUnknownTable is returned by Set.Lookup for a name with no table.
var ErrUnknownTable = eris.New("classify: unknown table")

// Set is a named collection of breakpoint tables.
type Set map[string]*Table

// Builtin returns a fresh set holding the elevation and AQI tables.
func Builtin() Set {
	return Set{
		TableElevation: Elevation(),
		TableAQI:       AQI(),
	}
}

// Lookup returns the table registered under name.
func (s Set) Lookup(name string) (*Table, error) {
	t, ok := s[name]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownTable, "%q", name)
	}
	return t, nil
}

// Names returns the table names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// bucketYAML is the on-disk form of a bucket. A missing upper bound marks
// the catch-all bucket.
type bucketYAML struct {
	Upper *float64 `yaml:"upper"`
	Label string   `yaml:"label"`
	Color string   `yaml:"color"`
}

type fileYAML struct {
	Tables map[string][]bucketYAML `yaml:"tables"`
}

// Parse decodes a YAML table document and validates every table in it.
func Parse(data []byte) (Set, error) {
	var doc fileYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "classify: parse tables")
	}

	set := make(Set, len(doc.Tables))
	for name, rows := range doc.Tables {
		buckets := make([]Bucket, 0, len(rows))
		for _, r := range rows {
			upper := math.Inf(1)
			if r.Upper != nil {
				upper = *r.Upper
			}
			buckets = append(buckets, Bucket{Upper: upper, Label: r.Label, Color: r.Color})
		}
		t, err := NewTable(name, buckets...)
		if err != nil {
			return nil, err
		}
		set[name] = t
	}
	return set, nil
}

// LoadFile reads tables from a YAML file and layers them over the built-in
// set. A file table with a built-in name replaces the built-in one.
func LoadFile(path string) (Set, error) {
	set := Builtin()
	if path == "" {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "classify: read %s", path)
	}
	loaded, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "classify: load %s", path)
	}
	for name, t := range loaded {
		set[name] = t
	}
	return set, nil
}
