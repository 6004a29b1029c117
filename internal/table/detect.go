package table

import (
	"strconv"
	"strings"
)

// DetectKind applies the single column-type rule used across the program: a
// column is numeric when it has at least one present value and every present
// value, trimmed, is a finite decimal number. Everything else is text.
func DetectKind(values []Value) Kind {
	seen := false
	for _, v := range values {
		if !v.Valid {
			continue
		}
		if !IsNumber(v.S) {
			return KindText
		}
		seen = true
	}
	if !seen {
		return KindText
	}
	return KindNumeric
}

// Classify sets c.Kind via DetectKind and, for numeric columns, stores each
// present value trimmed.
func Classify(c *Column) {
	c.Kind = DetectKind(c.Values)
	if c.Kind != KindNumeric {
		return
	}
	for i, v := range c.Values {
		if v.Valid {
			c.Values[i].S = strings.TrimSpace(v.S)
		}
	}
}

// IsNumber reports whether s is a finite base-10 number. NaN/Inf spellings,
// hex floats and digit separators are rejected.
func IsNumber(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
		case c == '.', c == '-', c == '+', c == 'e', c == 'E':
		default:
			return false
		}
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
