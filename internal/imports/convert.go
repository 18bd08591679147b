package imports

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// currencyChars matches the symbols the source system wraps commission
// values in. Thousands separators are deliberately not stripped: a value
// like "$(1,234.50)" has always failed to parse upstream and silently
// accepting it here would change reported figures.
var currencyChars = regexp.MustCompile(`[()$]`)

// dateLayouts accept day-first dates only. ISO or month-first input must
// fail rather than be reinterpreted.
var dateLayouts = []string{"02/01/2006", "2/1/2006"}

// parseDate parses a DD/MM/YYYY date. Empty input is null.
func parseDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, &DateParseError{Field: field, Value: raw}
}

// parseCommission strips currency symbols and parses the remainder as a
// float. Empty or unparseable input is an error: commission is required on
// every sale-file row.
func parseCommission(field, raw string) (float64, error) {
	cleaned := strings.TrimSpace(currencyChars.ReplaceAllString(raw, ""))
	if cleaned == "" {
		return 0, &NumberParseError{Field: field, Value: raw}
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &NumberParseError{Field: field, Value: raw}
	}
	return v, nil
}

// parseConsumption parses an optional float. Empty input is null.
func parseConsumption(field, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &NumberParseError{Field: field, Value: raw}
	}
	return &v, nil
}

// parseYesNo reports whether a cell holds an affirmative flag value.
func parseYesNo(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y":
		return true
	}
	return false
}
