package builtin

import (
	"strings"
	"time"
)

// ISODate is the canonical output layout.
const ISODate = "2006-01-02"

// Month-first and unambiguous date parts. Go's "1" and "2" accept one or
// two digits, so "1/2/2006" also matches "01/05/2023".
var monthFirstDates = []string{
	"2006-1-2", "2006/1/2", "2006.1.2",
	"1/2/2006", "1-2-2006", "1.2.2006",
	"1/2/06", "1-2-06", "1.2.06",
	"Jan 2, 2006", "Jan 2 2006", "January 2, 2006", "January 2 2006",
	"2 Jan 2006", "2 January 2006", "2-Jan-2006", "2-Jan-06", "2006-Jan-2",
	"Mon, Jan 2, 2006", "Monday, January 2, 2006",
}

// Day-first reading, tried only after every month-first layout failed (e.g.
// "13/01/2023").
var dayFirstDates = []string{
	"2/1/2006", "2-1-2006", "2.1.2006",
	"2/1/06", "2-1-06", "2.1.06",
}

var clockSuffixes = []string{
	"",
	" 15:04:05", " 15:04",
	" 3:04:05 PM", " 3:04 PM", " 3:04:05PM", " 3:04PM",
	"T15:04:05", "T15:04",
}

// Zones are only combined with ISO-ordered dates.
var zoneSuffixes = []string{"Z07:00", " Z07:00", "-0700", " -0700", " -0700 MST", " MST"}

var namedLayouts = []string{
	time.RFC3339Nano, time.RFC1123Z, time.RFC1123, time.RFC850,
	time.RFC822Z, time.RFC822, time.RubyDate, time.UnixDate, time.ANSIC,
}

// layoutSet splits layouts by whether they start with a digit, so a value is
// only tried against layouts that can match its first character.
type layoutSet struct {
	digit, alpha []string
}

func (s layoutSet) forValue(v string) []string {
	if isDigit(v[0]) {
		return s.digit
	}
	return s.alpha
}

func newLayoutSet(layouts []string) layoutSet {
	var s layoutSet
	for _, l := range layouts {
		if isDigit(l[0]) {
			s.digit = append(s.digit, l)
		} else {
			s.alpha = append(s.alpha, l)
		}
	}
	return s
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

var (
	primaryLayouts  = newLayoutSet(buildLayouts(monthFirstDates, true))
	fallbackLayouts = newLayoutSet(buildLayouts(dayFirstDates, false))
)

func buildLayouts(dates []string, withZones bool) []string {
	var out []string
	if withZones {
		out = append(out, namedLayouts...)
	}
	for _, d := range dates {
		for _, c := range clockSuffixes {
			out = append(out, d+c)
			if withZones && c != "" && strings.HasPrefix(d, "2006") {
				for _, z := range zoneSuffixes {
					out = append(out, d+c+z)
				}
			}
		}
	}
	return out
}

// maxDateLen bounds the inputs worth trying; longer text is never a date.
const maxDateLen = 64

// ParseDate interprets s as a calendar date or timestamp, locale
// independently and month before day. It returns the calendar date as
// written in the input (time-of-day and zone are discarded).
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxDateLen || !strings.ContainsAny(s, "0123456789") {
		return time.Time{}, false
	}
	for _, set := range []layoutSet{primaryLayouts, fallbackLayouts} {
		for _, l := range set.forValue(s) {
			if t, err := time.Parse(l, s); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
			}
		}
	}
	return time.Time{}, false
}

// FormatISODate parses s and renders it as YYYY-MM-DD.
func FormatISODate(s string) (string, bool) {
	t, ok := ParseDate(s)
	if !ok {
		return "", false
	}
	return t.Format(ISODate), true
}
