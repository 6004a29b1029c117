package builtin

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"golang.org/x/sync/errgroup"

	"csvclean/internal/table"
)

// Defaults for InferDates.
const (
	DefaultSampleSize     = 200
	DefaultSampleSeed     = 42
	DefaultCandidateRatio = 0.7
	DefaultMinParseRatio  = 0.3
)

// ConversionWarning reports a column whose date conversion was abandoned.
// The column is left as it was and the pipeline continues.
type ConversionWarning struct {
	Column string
	Err    error
}

func (w *ConversionWarning) Error() string {
	return fmt.Sprintf("date conversion skipped for column %q: %v", w.Column, w.Err)
}

func (w *ConversionWarning) Unwrap() error { return w.Err }

// InferDates detects date-like columns and rewrites them as YYYY-MM-DD.
//
// A column is a candidate when its name contains "date" or "dt", or when at
// least CandidateRatio of a seeded random sample of up to SampleSize present
// values parse as dates. A candidate is converted only if at least
// MinParseRatio of all its rows parse; parsed cells become ISO dates, cells
// that fail become missing, and the column kind becomes KindDate.
//
// Columns are examined independently, up to Workers at a time. Results do not
// depend on Workers.
type InferDates struct {
	SampleSize     int
	Seed           uint64
	CandidateRatio float64
	MinParseRatio  float64
	Workers        int

	// OnWarning receives one *ConversionWarning per abandoned column, in
	// column order.
	OnWarning func(error)

	// OnConvert is called for each converted column, in column order.
	OnConvert func(column string, parsed, total int)

	// format renders one cell as an ISO date; nil means FormatISODate.
	format func(string) (string, bool)
}

// NewInferDates returns InferDates with the default thresholds.
func NewInferDates() InferDates {
	return InferDates{
		SampleSize:     DefaultSampleSize,
		Seed:           DefaultSampleSeed,
		CandidateRatio: DefaultCandidateRatio,
		MinParseRatio:  DefaultMinParseRatio,
		Workers:        1,
	}
}

type dateResult struct {
	values []table.Value
	parsed int
	warn   error
}

func (d InferDates) Apply(in *table.Table) *table.Table {
	out := in.Clone()
	results := make([]dateResult, len(out.Columns))

	var g errgroup.Group
	g.SetLimit(max(d.Workers, 1))
	for i := range out.Columns {
		col := &out.Columns[i]
		res := &results[i]
		g.Go(func() error {
			*res = d.inferColumn(col)
			return nil
		})
	}
	_ = g.Wait()

	for i, res := range results {
		c := &out.Columns[i]
		if res.warn != nil {
			if d.OnWarning != nil {
				d.OnWarning(res.warn)
			}
			continue
		}
		if res.values == nil {
			continue
		}
		c.Values = res.values
		c.Kind = table.KindDate
		if d.OnConvert != nil {
			d.OnConvert(c.Name, res.parsed, len(res.values))
		}
	}
	return out
}

// inferColumn never mutates col. A nil result.values means "leave as is".
func (d InferDates) inferColumn(col *table.Column) (res dateResult) {
	defer func() {
		if r := recover(); r != nil {
			res = dateResult{warn: &ConversionWarning{Column: col.Name, Err: fmt.Errorf("panic: %v", r)}}
		}
	}()

	if !NameSuggestsDate(col.Name) && !d.sampleLooksLikeDates(col) {
		return dateResult{}
	}
	total := len(col.Values)
	if total == 0 {
		return dateResult{}
	}

	vals := make([]table.Value, total)
	parsed := 0
	for i, v := range col.Values {
		if !v.Valid {
			continue
		}
		if iso, ok := d.formatDate(v.S); ok {
			vals[i] = table.Text(iso)
			parsed++
		}
	}
	if float64(parsed)/float64(total) < d.minParseRatio() {
		return dateResult{}
	}
	return dateResult{values: vals, parsed: parsed}
}

// NameSuggestsDate reports whether a column name alone makes it a
// candidate.
func NameSuggestsDate(name string) bool {
	return strings.Contains(name, "date") || strings.Contains(name, "dt")
}

// sampleLooksLikeDates draws a reproducible sample of present values and
// checks the parse ratio against CandidateRatio.
func (d InferDates) sampleLooksLikeDates(col *table.Column) bool {
	idx := make([]int, 0, len(col.Values))
	for i, v := range col.Values {
		if v.Valid {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return false
	}
	sample := d.sample(idx)
	ok := 0
	for _, i := range sample {
		if _, parsed := d.formatDate(col.Values[i].S); parsed {
			ok++
		}
	}
	return float64(ok)/float64(len(sample)) >= d.candidateRatio()
}

// sample returns up to SampleSize elements of idx chosen by a partial
// Fisher-Yates shuffle seeded with Seed. idx is reordered in place.
func (d InferDates) sample(idx []int) []int {
	k := d.sampleSize()
	if k > len(idx) {
		k = len(idx)
	}
	r := rand.New(rand.NewPCG(d.Seed, d.Seed))
	for i := 0; i < k; i++ {
		j := i + r.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

func (d InferDates) formatDate(s string) (string, bool) {
	if d.format == nil {
		return FormatISODate(s)
	}
	return d.format(s)
}

func (d InferDates) sampleSize() int {
	if d.SampleSize <= 0 {
		return DefaultSampleSize
	}
	return d.SampleSize
}

func (d InferDates) candidateRatio() float64 {
	if d.CandidateRatio <= 0 {
		return DefaultCandidateRatio
	}
	return d.CandidateRatio
}

func (d InferDates) minParseRatio() float64 {
	if d.MinParseRatio <= 0 {
		return DefaultMinParseRatio
	}
	return d.MinParseRatio
}
