package builtin

import (
	"reflect"
	"testing"

	"csvclean/internal/table"
)

func TestFillMissing(t *testing.T) {
	in := &table.Table{Columns: []table.Column{
		{Name: "age", Kind: table.KindNumeric, Values: []table.Value{table.Text("30"), table.Missing}},
		{Name: "name", Kind: table.KindText, Values: []table.Value{table.Missing, table.Text("Bob")}},
		{Name: "signup_date", Kind: table.KindDate, Values: []table.Value{table.Text("2023-01-05"), table.Missing}},
	}}

	out := FillMissing{}.Apply(in)

	want := [][]table.Value{
		{table.Text("30"), table.Text("0")},
		{table.Text(""), table.Text("Bob")},
		{table.Text("2023-01-05"), table.Text("")},
	}
	for i, c := range out.Columns {
		if !reflect.DeepEqual(c.Values, want[i]) {
			t.Errorf("%s = %#v, want %#v", c.Name, c.Values, want[i])
		}
	}
	if out.CountMissing() != 0 {
		t.Fatalf("CountMissing() = %d, want 0", out.CountMissing())
	}
	if in.CountMissing() != 3 {
		t.Fatalf("input mutated")
	}
}
