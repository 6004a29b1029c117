package builtin

import "csvclean/internal/table"

// FillMissing replaces missing cells with "0" in numeric columns and with
// the empty string everywhere else (text and date columns).
type FillMissing struct{}

func (FillMissing) Apply(in *table.Table) *table.Table {
	out := in.Clone()
	for i := range out.Columns {
		c := &out.Columns[i]
		fill := FillValue(c.Kind)
		for j, v := range c.Values {
			if !v.Valid {
				c.Values[j] = fill
			}
		}
	}
	return out
}

// FillValue is the value FillMissing puts in a missing cell of a column of
// kind k.
func FillValue(k table.Kind) table.Value {
	if k == table.KindNumeric {
		return table.Text("0")
	}
	return table.Text("")
}

// filledText returns the text v will hold after FillMissing.
func filledText(k table.Kind, v table.Value) string {
	if v.Valid {
		return v.S
	}
	return FillValue(k).S
}
