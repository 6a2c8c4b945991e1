package normalize

import (
	"fmt"
	"regexp"
	"strconv"
)

// Accepted year-month notations, tried in order. Only the first match in
// the input is considered.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|\D)(\d{4})年(\d{1,2})月`),
	regexp.MustCompile(`(?:^|\D)(\d{4})-(\d{1,2})(?:\D|$)`),
	regexp.MustCompile(`(?:^|\D)(\d{4})/(\d{1,2})(?:\D|$)`),
}

// DateFormats lists the notations NormalizeDate understands, for hints.
var DateFormats = []string{"2024年12月", "2024-12", "2024/12"}

// FormatDateKey renders the canonical storage form, e.g. 2024年03月.
func FormatDateKey(year, month int) string {
	return fmt.Sprintf("%04d年%02d月", year, month)
}

// NormalizeDate maps a loosely written year-month onto its canonical key.
// Empty input is Absent; anything unparseable or with a month outside
// 1..12 is Unresolved with no suggestions.
func NormalizeDate(s string) Resolution {
	key := NormalizeKey(s)
	if key == "" {
		return absent()
	}

	for _, re := range datePatterns {
		m := re.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return unresolved(nil)
		}
		return resolved(FormatDateKey(year, month))
	}
	return unresolved(nil)
}
