package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDateRE  = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	dmyDateRE  = regexp.MustCompile(`\b(\d{1,2})[/.-](\d{1,2})[/.-](\d{2,4})\b`)
	dayMonthRE = regexp.MustCompile(`\b(\d{1,2})\s+([A-Za-z]+),?\s+(\d{2,4})\b`)
	monthDayRE = regexp.MustCompile(`\b([A-Za-z]+)\s+(\d{1,2}),?\s+(\d{2,4})\b`)
	monthNames = []string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"}
)

// ParseDate canonicalizes a heterogeneous date string to YYYY-MM-DD. It
// accepts ISO-like dates, day-month-year with slash, dash or dot separators
// and 2- or 4-digit years, and textual month names in either order. Anything
// it cannot fully parse yields the Unknown sentinel; it never returns a
// partially-parsed value, and it is idempotent on its own output.
func ParseDate(raw string) string {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return Unknown
	}

	if m := isoDateRE.FindStringSubmatch(clean); m != nil {
		return canonical(m[3], m[2], m[1])
	}
	if m := dmyDateRE.FindStringSubmatch(clean); m != nil {
		return canonical(m[1], m[2], m[3])
	}
	if m := dayMonthRE.FindStringSubmatch(clean); m != nil {
		if month, ok := monthNumber(m[2]); ok {
			return canonical(m[1], strconv.Itoa(month), m[3])
		}
	}
	if m := monthDayRE.FindStringSubmatch(clean); m != nil {
		if month, ok := monthNumber(m[1]); ok {
			return canonical(m[2], strconv.Itoa(month), m[3])
		}
	}
	return Unknown
}

// monthNumber resolves a textual month by case-insensitive prefix of the full
// month names, so "Jan", "Sept" and "September" all work.
func monthNumber(name string) (int, bool) {
	low := strings.ToLower(name)
	for i, m := range monthNames {
		if strings.HasPrefix(strings.ToLower(m), low) {
			return i + 1, true
		}
	}
	return 0, false
}

// canonical assembles and validates day/month/year components. Two-digit
// years below 50 map to 20xx, the rest to 19xx.
func canonical(dayStr, monthStr, yearStr string) string {
	day, _ := strconv.Atoi(dayStr)
	month, _ := strconv.Atoi(monthStr)
	year, _ := strconv.Atoi(yearStr)
	if len(yearStr) == 2 {
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}
	if len(yearStr) == 3 || month < 1 || month > 12 || day < 1 || day > 31 {
		return Unknown
	}
	// Round-trip through time.Date to reject impossible dates like 31/02.
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return Unknown
	}
	return date.Format("2006-01-02")
}
