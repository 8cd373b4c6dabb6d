package autofill

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date heuristics for dictated values. Each pattern is parsed into a
// calendar date and re-serialized to ISO (YYYY-MM-DD). Unparseable
// input is not an error: the caller writes the raw text into the field
// unmodified.

var (
	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	// "1st of May 2024", "21 May 2024"
	dayMonthYearPattern = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?(?:\s+of)?\s+([a-zA-Z]+),?\s+(\d{4})$`)

	// "May 1, 2024", "May 1st 2024"
	monthDayYearPattern = regexp.MustCompile(`^([a-zA-Z]+)\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})$`)

	// "1/5/2024", "1-5-2024", "1.5.2024" (day first)
	numericDatePattern = regexp.MustCompile(`^(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})$`)
)

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// NormalizeDate converts a dictated date to ISO form. It reports false
// when no heuristic matched; the raw input should then be used as-is.
func NormalizeDate(input string) (string, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", false
	}

	if isoDatePattern.MatchString(s) {
		if _, err := time.Parse("2006-01-02", s); err == nil {
			return s, true
		}
		return "", false
	}

	if m := dayMonthYearPattern.FindStringSubmatch(s); m != nil {
		return buildISO(m[3], m[2], m[1])
	}
	if m := monthDayYearPattern.FindStringSubmatch(s); m != nil {
		return buildISO(m[3], m[1], m[2])
	}
	if m := numericDatePattern.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[2])
		return buildISO(m[3], time.Month(month).String(), m[1])
	}

	return "", false
}

// buildISO validates year/month/day parts against the calendar.
func buildISO(yearStr, monthStr, dayStr string) (string, bool) {
	month, ok := monthNames[strings.ToLower(monthStr)]
	if !ok {
		return "", false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return "", false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return "", false
	}

	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		// Normalized away, e.g. February 30th.
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day), true
}
