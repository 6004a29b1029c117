// Package csv loads a CSV file into a table.Table and writes one back.
//
// Loading is whole-file: the dataset is materialized in memory, decoded to
// UTF-8 on the fly (optionally from a legacy code page), and every column is
// classified once as text or numeric.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"csvclean/internal/datasource"
	"csvclean/internal/datasource/file"
	"csvclean/internal/table"
)

// DefaultNAValues are the cell spellings treated as missing when
// Options.NoDefaultNA is false.
var DefaultNAValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a",
	"nan", "null",
}

// Options configures the loader. The zero value reads comma-separated UTF-8
// with the default missing markers.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// Encoding is a charset label ("utf-8", "windows-1250", "latin1", ...).
	Encoding string

	// NAValues are extra spellings treated as missing.
	NAValues []string

	// NoDefaultNA disables DefaultNAValues. Empty cells stay missing.
	NoDefaultNA bool
}

// Parser turns CSV bytes into a table. It is not safe for concurrent use.
type Parser struct {
	opt Options
	na  map[string]struct{}
}

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	na := map[string]struct{}{"": {}}
	if !opt.NoDefaultNA {
		for _, s := range DefaultNAValues {
			na[s] = struct{}{}
		}
	}
	for _, s := range opt.NAValues {
		na[s] = struct{}{}
	}
	return &Parser{opt: opt, na: na}
}

// IsMissing reports whether a raw cell, ignoring surrounding whitespace, is
// one of the configured NA markers. Whitespace-only cells are missing.
func (p *Parser) IsMissing(s string) bool {
	_, ok := p.na[strings.TrimSpace(s)]
	return ok
}

// Load opens path and parses it. Every failure is returned as *LoadError.
func Load(ctx context.Context, path string, opt Options) (*table.Table, error) {
	return LoadFrom(ctx, path, file.NewLocal(path), opt)
}

// LoadFrom parses the stream opened from src; name labels errors.
func LoadFrom(ctx context.Context, name string, src datasource.Source, opt Options) (*table.Table, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	defer rc.Close()

	t, err := NewParser(opt).Parse(rc)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = name
			return nil, le
		}
		return nil, &LoadError{Path: name, Err: err}
	}
	return t, nil
}

// Parse reads a header row followed by data rows.
//
// Behavior:
//   - Blank lines are skipped; a stream without a header row is an error.
//   - Empty header cells become "Unnamed: <i>", repeated names get ".1",
//     ".2", ... suffixes so no column is lost.
//   - Short rows are padded with missing cells; long rows fail the load.
//   - Quotes are parsed leniently (bare quotes inside fields are kept).
func (p *Parser) Parse(r io.Reader) (*table.Table, error) {
	enc, err := lookupEncoding(p.opt.Encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(decodingReader(r, enc))
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	h, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("no columns to parse from file")
	}
	if err != nil {
		return nil, lineError(err, fmt.Errorf("read csv header: %w", err))
	}
	header := dedupeHeaders(h)

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, lineError(err, err)
		}
		if len(rec) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, &LoadError{
				Line: line,
				Err:  fmt.Errorf("expected %d fields, saw %d", len(header), len(rec)),
			}
		}
		rows = append(rows, rec)
	}

	return table.FromRows(header, rows, p.IsMissing), nil
}

func lineError(src, wrapped error) error {
	var pe *csv.ParseError
	if errors.As(src, &pe) {
		return &LoadError{Line: pe.Line, Err: pe.Err}
	}
	return wrapped
}

// dedupeHeaders names empty cells after their position and suffixes repeated
// names so every header is unique.
func dedupeHeaders(h []string) []string {
	out := make([]string, len(h))
	seen := make(map[string]struct{}, len(h))
	for i, name := range h {
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if _, dup := seen[name]; dup {
			base := name
			for k := 1; ; k++ {
				name = base + "." + strconv.Itoa(k)
				if _, taken := seen[name]; !taken {
					break
				}
			}
		}
		seen[name] = struct{}{}
		out[i] = name
	}
	return out
}
