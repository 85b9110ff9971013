// Package dataset loads delimited text files into in-memory tables.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/specialistvlad/incomegrid/internal/fsutil"
)

// Table is a CSV file held in memory: a header and string rows of equal width.
type Table struct {
	Path   string   `cty:"path"`
	Header []string `cty:"header"`
	Rows   [][]string
}

// Load reads the delimited file at path. The first record is the header.
func Load(path string, delimiter rune) (*Table, error) {
	if err := fsutil.RequireFile(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	t, err := Read(f, delimiter)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	t.Path = path
	return t, nil
}

// Read parses delimited records from r. Every row must have as many fields
// as the header.
func Read(r io.Reader, delimiter rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = 0

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file: no header row")
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := &Table{Header: header}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
				return nil, fmt.Errorf("line %d: expected %d fields, got a ragged row", parseErr.Line, len(header))
			}
			return nil, err
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns all values of the named column.
func (t *Table) Column(name string) ([]string, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found in %s", name, t.describe())
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Rename returns a copy of the table with columns renamed per mapping.
// Columns absent from mapping keep their name; every mapping key must exist.
func (t *Table) Rename(mapping map[string]string) (*Table, error) {
	froms := make([]string, 0, len(mapping))
	for from := range mapping {
		froms = append(froms, from)
	}
	sort.Strings(froms)

	header := append([]string(nil), t.Header...)
	for _, from := range froms {
		idx := t.ColumnIndex(from)
		if idx < 0 {
			return nil, fmt.Errorf("column %q not found in %s", from, t.describe())
		}
		header[idx] = mapping[from]
	}
	return &Table{Path: t.Path, Header: header, Rows: t.Rows}, nil
}

// Filter returns the rows for which keep returns true. Rows are shared, not
// copied.
func (t *Table) Filter(keep func(row []string) bool) *Table {
	out := &Table{Path: t.Path, Header: t.Header}
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

func (t *Table) describe() string {
	if t.Path == "" {
		return "table"
	}
	return t.Path
}
