package builtin

import (
	"strings"

	"csvclean/internal/table"
)

// TrimStrings strips leading and trailing whitespace from every present
// value of text columns. Numeric and date columns are returned unchanged.
type TrimStrings struct{}

func (TrimStrings) Apply(in *table.Table) *table.Table {
	out := in.Clone()
	for i := range out.Columns {
		c := &out.Columns[i]
		if c.Kind != table.KindText {
			continue
		}
		for j, v := range c.Values {
			if v.Valid {
				c.Values[j].S = strings.TrimSpace(v.S)
			}
		}
	}
	return out
}
