// Package normalize holds the string cleanup primitives shared by every extraction rule.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/awb-extractor/constants"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`[\t\f\v\x{00A0}]+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reWhitespace = regexp.MustCompile(`\s+`)
	reBoxNoise   = regexp.MustCompile(`(?m)^\s*[_\-=]{3,}\s*$`)

	reCurrency = regexp.MustCompile(`(?i)\b(?:rm|myr)`)
	reAmount   = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
)

// Text collapses noisy whitespace in a label dump while keeping line breaks.
// More than one blank line in a row becomes a single blank line.
func Text(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reBoxNoise.ReplaceAllString(s, "")
	s = reMultiSpace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	s = strings.Join(lines, "\n")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// CollapseWhitespace turns every whitespace run, newlines included, into one space.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}

// RemoveSpaces drops all whitespace, e.g. for tracking numbers printed in groups.
func RemoveSpaces(s string) string {
	return reWhitespace.ReplaceAllString(s, "")
}

// StripQuotes removes one layer of matching surrounding quotes.
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'' || first == '`') && first == last {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

// Value is the standard cleanup for a captured single-line value.
func Value(s string) string {
	s = strings.Trim(CollapseWhitespace(s), " ,;:-|")
	return strings.Trim(StripQuotes(s), " ,;:-|")
}

// StripSeparators keeps digits, '+' and the '*' used by masked phone numbers.
func StripSeparators(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '+' || r == '*' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseAmount reads a money value like "RM 1,234.50" or "25.5".
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = reCurrency.ReplaceAllString(s, " ")
	m := reAmount.FindString(s)
	if m == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FormatAmount renders a COD amount as "25.50 MYR"; non-positive amounts are "0 MYR".
func FormatAmount(d decimal.Decimal) string {
	if !d.IsPositive() {
		return constants.DefaultCODAmount
	}
	return d.StringFixed(2) + " " + constants.Currency
}

// ParseQuantity returns a positive integer. It falls back to 1 with ok=false when s
// is not a positive count.
func ParseQuantity(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return constants.DefaultQuantity, false
	}
	return n, true
}

// Fingerprint is the hex SHA-256 of the normalized text.
func Fingerprint(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
