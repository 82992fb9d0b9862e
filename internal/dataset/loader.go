// Package dataset loads the sales table from a delimited file and keeps it
// in memory for the lifetime of the process.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/bobmcallan/salesdash/internal/models"
)

// Required source columns.
const (
	ColumnSegment  = "Segment"
	ColumnCategory = "Category"
	ColumnSales    = "Sales"
	ColumnProfit   = "Profit"
)

var requiredColumns = []string{ColumnSegment, ColumnCategory, ColumnSales, ColumnProfit}

// Options controls how a source file is decoded.
type Options struct {
	Path      string
	Delimiter rune   // defaults to ','
	Encoding  string // "", "utf-8", "latin1", "iso-8859-1", "windows-1252", "cp1252"
}

// Dataset is the immutable in-memory sales table. Header and Rows keep the
// source text for pass-through export; Records holds the parsed columns.
type Dataset struct {
	Source    string
	Delimiter rune
	Header    []string
	Rows      [][]string
	Records   []models.Record
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Segments returns the distinct segment values in ascending order.
func (d *Dataset) Segments() []string {
	return distinct(d.Records, func(r models.Record) string { return r.Segment })
}

// Categories returns the distinct category values in ascending order.
func (d *Dataset) Categories() []string {
	return distinct(d.Records, func(r models.Record) string { return r.Category })
}

func distinct(records []models.Record, key func(models.Record) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Load reads and parses the file named by opts.Path.
func Load(ctx context.Context, opts Options) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dec, err := decoderFor(opts.Encoding)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(opts.Path)
	if err != nil {
		return nil, &DataUnavailableError{Path: opts.Path, Err: err}
	}
	defer f.Close()

	var r io.Reader = f
	if dec != nil {
		r = transform.NewReader(f, dec.NewDecoder())
	}

	ds, err := Parse(r, opts)
	if err != nil {
		var due *DataUnavailableError
		if errors.As(err, &due) && due.Path == "" {
			due.Path = opts.Path
		}
		return nil, err
	}
	ds.Source = opts.Path
	return ds, nil
}

// decoderFor maps a configured encoding name to a decoder; nil means the
// input is already UTF-8.
func decoderFor(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "utf-8-sig", "utf-8-bom":
		return unicode.UTF8BOM, nil
	case "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported data encoding %q", name)
	}
}

// Parse reads delimited text with a header row. Malformed text yields a
// DataUnavailableError; missing or mistyped required columns yield a
// SchemaError. Empty Sales/Profit cells count as zero.
func Parse(r io.Reader, opts Options) (*Dataset, error) {
	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}

	reader := csv.NewReader(r)
	reader.Comma = delim

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &DataUnavailableError{Err: fmt.Errorf("empty file")}
	}
	if err != nil {
		return nil, &DataUnavailableError{Err: fmt.Errorf("failed to read header: %w", err)}
	}
	header = normaliseHeader(header)

	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, &SchemaError{Column: col, Reason: "missing required column"}
		}
	}

	ds := &Dataset{
		Delimiter: delim,
		Header:    header,
	}

	segIdx, catIdx := index[ColumnSegment], index[ColumnCategory]
	salesIdx, profitIdx := index[ColumnSales], index[ColumnProfit]

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DataUnavailableError{Err: err}
		}
		line, _ := reader.FieldPos(0)

		sales, err := parseNumber(row[salesIdx])
		if err != nil {
			return nil, &SchemaError{Column: ColumnSales, Row: line, Reason: fmt.Sprintf("non-numeric value %q", row[salesIdx])}
		}
		profit, err := parseNumber(row[profitIdx])
		if err != nil {
			return nil, &SchemaError{Column: ColumnProfit, Row: line, Reason: fmt.Sprintf("non-numeric value %q", row[profitIdx])}
		}

		ds.Rows = append(ds.Rows, row)
		ds.Records = append(ds.Records, models.Record{
			Segment:  row[segIdx],
			Category: row[catIdx],
			Sales:    sales,
			Profit:   profit,
		})
	}

	return ds, nil
}

// normaliseHeader strips a UTF-8 byte order mark and surrounding spaces.
func normaliseHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// parseNumber reads a finite decimal. Empty cells are 0. Thousands
// separators are not accepted.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
