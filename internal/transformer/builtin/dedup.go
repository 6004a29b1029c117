// Package builtin contains the cleaning stages applied by the pipeline:
// column-name standardization, string trimming, date inference,
// de-duplication and missing-value filling. Every stage is a total function
// from table to table and leaves its input untouched.
package builtin

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"

	"csvclean/internal/table"
)

// DeDup keeps the first occurrence of each duplicate group.
//
// When Key names a column (exactly, or after SnakeCase), rows are grouped by
// that column's value alone; two missing keys count as equal. Otherwise rows
// are grouped by full-row equality. Surviving rows keep their original order.
//
// Cells compare by the text they hold once missing values are filled (see
// FillValue): a missing cell equals "" in a text column and "0" in a numeric
// one. Rows the filler would make identical are therefore already duplicates
// here, which keeps a second cleaning pass from dropping more rows.
type DeDup struct {
	Key string
}

// KeyIndex resolves Key against t's columns. ok is false when Key is empty
// or matches no column, in which case full-row comparison is used.
func (d DeDup) KeyIndex(t *table.Table) (idx int, ok bool) {
	if d.Key == "" {
		return -1, false
	}
	if i := t.Index(d.Key); i >= 0 {
		return i, true
	}
	if i := t.Index(SnakeCase(d.Key)); i >= 0 {
		return i, true
	}
	return -1, false
}

func (d DeDup) Apply(in *table.Table) *table.Table {
	n := in.NumRows()
	if n == 0 {
		return in.Clone()
	}
	var keep []int
	if idx, ok := d.KeyIndex(in); ok {
		keep = firstByKey(in.Columns[idx])
	} else {
		keep = firstByRow(in)
	}
	return in.SelectRows(keep)
}

func firstByKey(c table.Column) []int {
	seen := make(map[string]struct{}, len(c.Values))
	keep := make([]int, 0, len(c.Values))
	for i, v := range c.Values {
		k := filledText(c.Kind, v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keep = append(keep, i)
	}
	return keep
}

// firstByRow buckets rows by an xxh3 digest of their cells and confirms
// duplicates with a full comparison, so hash collisions never drop a row.
func firstByRow(t *table.Table) []int {
	n := t.NumRows()
	buckets := make(map[uint64][]int, n)
	keep := make([]int, 0, n)
	var buf []byte
	for r := 0; r < n; r++ {
		buf = encodeRow(buf[:0], t, r)
		h := xxh3.Hash(buf)
		dup := false
		for _, k := range buckets[h] {
			if rowsEqual(t, k, r) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		buckets[h] = append(buckets[h], r)
		keep = append(keep, r)
	}
	return keep
}

// encodeRow writes an unambiguous byte form of row r: per cell a uvarint
// length and the filled text.
func encodeRow(dst []byte, t *table.Table, r int) []byte {
	for _, c := range t.Columns {
		s := filledText(c.Kind, c.Values[r])
		dst = binary.AppendUvarint(dst, uint64(len(s)))
		dst = append(dst, s...)
	}
	return dst
}

func rowsEqual(t *table.Table, a, b int) bool {
	for _, c := range t.Columns {
		if filledText(c.Kind, c.Values[a]) != filledText(c.Kind, c.Values[b]) {
			return false
		}
	}
	return true
}
