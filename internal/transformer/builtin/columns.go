package builtin

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"csvclean/internal/table"
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s\v]`)
	whitespace = regexp.MustCompile(`[\s\v]+`)
)

// StandardizeColumns rewrites every column name with SnakeCase.
type StandardizeColumns struct{}

func (StandardizeColumns) Apply(in *table.Table) *table.Table {
	out := in.Clone()
	for i := range out.Columns {
		out.Columns[i].Name = SnakeCase(out.Columns[i].Name)
	}
	return out
}

// SnakeCase normalizes a header into a lowercase token:
//  1. trim surrounding whitespace
//  2. fold accents (NFD → drop nonspacing marks → NFC)
//  3. drop everything that is not [A-Za-z0-9_] or whitespace
//  4. collapse whitespace runs into one underscore
//  5. lowercase
//
// Inputs made only of punctuation degrade to "" and never fail.
func SnakeCase(name string) string {
	s := strings.TrimSpace(name)
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}
	s = nonWord.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "_")
	return strings.ToLower(s)
}
