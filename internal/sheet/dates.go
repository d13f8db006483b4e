package sheet

import (
	"regexp"
	"strings"
)

// DisplayDateLayout renders date-typed cells as DD-MM-YYYY.
const DisplayDateLayout = "02-01-2006"

var datePattern = regexp.MustCompile(`\d{2}-\d{2}-\d{4}|\d{2}/\d{2}/\d{4}`)

// ExtractDate reports whether value holds a DD-MM-YYYY or DD/MM/YYYY date
// and returns the value up to its first space ("02-01-2025 14:30" keeps
// "02-01-2025"). The text before the space is returned even when the
// date sits later in the value.
func ExtractDate(value string) (string, bool) {
	if !datePattern.MatchString(value) {
		return "", false
	}
	head, _, _ := strings.Cut(value, " ")
	return head, true
}

// annotateDate writes the first date found among the row's values into
// ExtractedDate and stops there.
func annotateDate(row *Row) bool {
	for _, f := range row.fields {
		if date, ok := ExtractDate(f.Value); ok {
			row.set(ExtractedDateColumn, date)
			return true
		}
	}
	return false
}

// Built-in number format IDs that render a calendar date.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// isDateFormat reports whether a cell number format displays a date.
// Custom codes count as dates when they carry a day or year token
// outside quoted literals and bracketed sections.
func isDateFormat(numFmt int, custom *string) bool {
	if custom == nil || *custom == "" {
		return builtinDateFormats[numFmt]
	}
	code := *custom
	// only the positive section decides
	if i := strings.IndexByte(code, ';'); i >= 0 {
		code = code[:i]
	}
	var (
		inQuote   bool
		inBracket bool
		escaped   bool
	)
	for _, c := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case inQuote:
			inQuote = c != '"'
		case inBracket:
			inBracket = c != ']'
		case c == '\\':
			escaped = true
		case c == '"':
			inQuote = true
		case c == '[':
			inBracket = true
		case c == 'd' || c == 'y':
			return true
		}
	}
	return false
}
