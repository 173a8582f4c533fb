// Package classify maps continuous measurements onto ordered, labeled buckets.
package classify

import (
	"math"

	"github.com/rotisserie/eris"
)

// ErrMalformedTable is returned when a breakpoint table fails validation.
var ErrMalformedTable = eris.New("classify: malformed breakpoint table")

// ErrInvalidMeasurement is returned when a measurement is NaN or infinite.
var ErrInvalidMeasurement = eris.New("classify: invalid measurement")

// Unbounded is the upper bound of a table's catch-all bucket.
var Unbounded = math.Inf(1)

// Bucket is one row of a breakpoint table. Values <= Upper (and above the
// previous bucket's Upper) fall into this bucket.
type Bucket struct {
	Upper float64
	Label string
	Color string
}

// Result is the outcome of classifying one measurement.
type Result struct {
	Index int
	Label string
	Color string
}

// Table is an immutable, validated breakpoint table.
type Table struct {
	name    string
	buckets []Bucket
}

// NewTable validates buckets and returns a table. Bounds must be finite and
// strictly increasing, and only the last bucket may (and must) be Unbounded.
func NewTable(name string, buckets ...Bucket) (*Table, error) {
	if len(buckets) == 0 {
		return nil, eris.Wrapf(ErrMalformedTable, "table %q has no buckets", name)
	}

	last := len(buckets) - 1
	for i, b := range buckets {
		if b.Label == "" || b.Color == "" {
			return nil, eris.Wrapf(ErrMalformedTable, "table %q bucket %d: label and color are required", name, i)
		}
		if math.IsNaN(b.Upper) || math.IsInf(b.Upper, -1) {
			return nil, eris.Wrapf(ErrMalformedTable, "table %q bucket %d: invalid upper bound %v", name, i, b.Upper)
		}
		if i == last {
			if !math.IsInf(b.Upper, 1) {
				return nil, eris.Wrapf(ErrMalformedTable, "table %q: last bucket must be unbounded", name)
			}
			continue
		}
		if math.IsInf(b.Upper, 1) {
			return nil, eris.Wrapf(ErrMalformedTable, "table %q bucket %d: only the last bucket may be unbounded", name, i)
		}
		if i > 0 && b.Upper <= buckets[i-1].Upper {
			return nil, eris.Wrapf(ErrMalformedTable, "table %q bucket %d: bound %v does not exceed %v", name, i, b.Upper, buckets[i-1].Upper)
		}
	}

	cp := make([]Bucket, len(buckets))
	copy(cp, buckets)
	return &Table{name: name, buckets: cp}, nil
}

// MustTable is NewTable for package-level tables known to be valid.
func MustTable(name string, buckets ...Bucket) *Table {
	t, err := NewTable(name, buckets...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Buckets returns a copy of the table's buckets in ascending order.
func (t *Table) Buckets() []Bucket {
	cp := make([]Bucket, len(t.buckets))
	copy(cp, t.buckets)
	return cp
}

// Classify returns the first bucket whose upper bound is >= v. Upper bounds
// are inclusive, so a value equal to a breakpoint lands in the lower bucket.
func (t *Table) Classify(v float64) (Result, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Result{}, eris.Wrapf(ErrInvalidMeasurement, "table %q: value %v", t.name, v)
	}
	for i, b := range t.buckets {
		if v <= b.Upper {
			return Result{Index: i, Label: b.Label, Color: b.Color}, nil
		}
	}
	// Unreachable for a validated table: the last bucket is unbounded.
	last := len(t.buckets) - 1
	return Result{Index: last, Label: t.buckets[last].Label, Color: t.buckets[last].Color}, nil
}
