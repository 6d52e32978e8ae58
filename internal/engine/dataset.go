package engine

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ValueKind tags a parsed cell. Columns are untyped at rest; each cell is
// classified independently at load time.
type ValueKind uint8

const (
	Missing ValueKind = iota
	Number
	Text
)

// Value is one cell of the dataset. Str keeps the trimmed source text for
// both kinds so preview and export can show what was loaded; Num is only
// meaningful when Kind == Number.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

// Display returns the cell as it should appear in a table ("" for missing).
func (v Value) Display() string {
	if v.Kind == Missing {
		return ""
	}
	return v.Str
}

// Dataset holds the loaded table in column-major form.
type Dataset struct {
	Columns []string
	cols    [][]Value
	rows    int
}

var ErrEmptyDataset = errors.New("dataset has no header row")

// ParseCSV reads comma-delimited text with a header row into a Dataset.
// Every load path (local file, URL body, upload) goes through here so the
// three sources agree on typing.
func ParseCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	ds := &Dataset{
		Columns: columns,
		cols:    make([][]Value, len(columns)),
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", ds.rows+2, err)
		}
		for i := range ds.cols {
			ds.cols[i] = append(ds.cols[i], parseValue(record[i]))
		}
		ds.rows++
	}
	return ds, nil
}

func parseValue(s string) Value {
	t := strings.TrimSpace(s)
	if t == "" {
		return Value{Kind: Missing}
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		// ParseFloat accepts the NaN and Inf spellings. Treat those as
		// missing so they never reach sums, means, or the JSON encoder.
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{Kind: Missing}
		}
		return Value{Kind: Number, Num: f, Str: t}
	}
	return Value{Kind: Text, Str: t}
}

func (ds *Dataset) NumRows() int    { return ds.rows }
func (ds *Dataset) NumColumns() int { return len(ds.Columns) }

// ColumnIndex resolves a header name by exact match.
func (ds *Dataset) ColumnIndex(name string) (int, bool) {
	for i, c := range ds.Columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

func (ds *Dataset) HasColumn(name string) bool {
	_, ok := ds.ColumnIndex(name)
	return ok
}

// Column returns the cells of column i.
func (ds *Dataset) Column(i int) []Value { return ds.cols[i] }

// ColumnByName returns the cells of the named column, or nil.
func (ds *Dataset) ColumnByName(name string) []Value {
	i, ok := ds.ColumnIndex(name)
	if !ok {
		return nil
	}
	return ds.cols[i]
}

// Row materializes row i as display strings, in column order.
func (ds *Dataset) Row(i int) []string {
	out := make([]string, len(ds.cols))
	for c := range ds.cols {
		out[c] = ds.cols[c][i].Display()
	}
	return out
}

// MissingCount counts missing cells in column i.
func (ds *Dataset) MissingCount(i int) int {
	n := 0
	for _, v := range ds.cols[i] {
		if v.Kind == Missing {
			n++
		}
	}
	return n
}

// DistinctCount counts distinct non-missing values in column i.
func (ds *Dataset) DistinctCount(i int) int {
	seen := make(map[string]struct{})
	for _, v := range ds.cols[i] {
		if v.Kind != Missing {
			seen[v.Str] = struct{}{}
		}
	}
	return len(seen)
}

// IsNumericColumn reports whether column i is uniformly numeric: at least
// one number and no text cells. Missing cells are allowed.
func (ds *Dataset) IsNumericColumn(i int) bool {
	hasNum := false
	for _, v := range ds.cols[i] {
		switch v.Kind {
		case Text:
			return false
		case Number:
			hasNum = true
		}
	}
	return hasNum
}

// NumericColumns returns the indexes of uniformly numeric columns.
func (ds *Dataset) NumericColumns() []int {
	var out []int
	for i := range ds.cols {
		if ds.IsNumericColumn(i) {
			out = append(out, i)
		}
	}
	return out
}

// WriteCSV re-serializes the dataset. Cell values survive; original quoting
// and number formatting do not.
func (ds *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Columns); err != nil {
		return err
	}
	for i := 0; i < ds.rows; i++ {
		if err := cw.Write(ds.Row(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
