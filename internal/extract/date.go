package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/awb-extractor/constants"
)

const isoDate = "2006-01-02"

// dateProjection builds "YYYY-MM-DD" or "YYYY-MM-DD HH:MM" from the submatch
// indexes of year, month, day and the optional hour and minute (0 = absent).
func dateProjection(y, mo, d, h, mi int) Projection {
	return func(m []string) (string, bool) {
		year, err := strconv.Atoi(m[y])
		if err != nil {
			return "", false
		}
		month, ok := parseMonth(m[mo])
		if !ok {
			return "", false
		}
		day, err := strconv.Atoi(m[d])
		if err != nil {
			return "", false
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Year() != year || int(t.Month()) != month || t.Day() != day {
			return "", false
		}
		out := t.Format(isoDate)
		if h > 0 && h < len(m) && m[h] != "" {
			hh, err1 := strconv.Atoi(m[h])
			mm, err2 := strconv.Atoi(m[mi])
			if err1 != nil || err2 != nil || hh > 23 || mm > 59 {
				return "", false
			}
			out += fmt.Sprintf(" %02d:%02d", hh, mm)
		}
		return out, true
	}
}

func parseMonth(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, n >= 1 && n <= 12
	}
	if len(s) < 3 {
		return 0, false
	}
	t, err := time.Parse("Jan", strings.ToUpper(s[:1])+strings.ToLower(s[1:3]))
	if err != nil {
		return 0, false
	}
	return int(t.Month()), true
}

// dateExtractor resolves ship date and time. The value is "YYYY-MM-DD" with an
// optional " HH:MM" suffix.
func dateExtractor() FieldExtractor {
	return FieldExtractor{
		Field: constants.FieldShipDate,
		Rules: []PatternRule{
			Rule("iso_datetime", `\b(\d{4})[-/](\d{1,2})[-/](\d{1,2})(?:[ T]+|,\s*)(\d{1,2}):(\d{2})\b`, dateProjection(1, 2, 3, 4, 5)),
			Rule("dmy_dash", `\b(\d{1,2})-(\d{1,2})-(\d{4})\b(?:[ T]+(\d{1,2}):(\d{2})\b)?`, dateProjection(3, 2, 1, 4, 5)),
			Rule("dmy_dot", `\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b(?:[ T]+(\d{1,2}):(\d{2})\b)?`, dateProjection(3, 2, 1, 4, 5)),
			Rule("ship_by", `(?i)\bship\s*by\s*(?:date)?\s*[:：]?\s*(\d{1,2})[/ \-]([A-Za-z]{3,9}|\d{1,2})[/ \-,]+(\d{4})\b`, dateProjection(3, 2, 1, 0, 0)),
			Rule("iso_date", `\b(\d{4})[-/](\d{1,2})[-/](\d{1,2})\b`, dateProjection(1, 2, 3, 0, 0)),
		},
	}
}

// splitDateTime separates a date extractor value into date and time.
func splitDateTime(v string) (date, clock string) {
	date, clock, found := strings.Cut(v, " ")
	if !found {
		return date, constants.DefaultShipTime
	}
	return date, clock
}
