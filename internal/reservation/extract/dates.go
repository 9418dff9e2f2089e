package extract

import (
	"strings"
	"time"
)

// germanMonths maps German month names to the English names the time
// package layouts expect.
var germanMonths = map[string]string{
	"Januar":    "January",
	"Februar":   "February",
	"März":      "March",
	"April":     "April",
	"Mai":       "May",
	"Juni":      "June",
	"Juli":      "July",
	"August":    "August",
	"September": "September",
	"Oktober":   "October",
	"November":  "November",
	"Dezember":  "December",
}

// Layouts the template mails have been observed to use. Tried in
// order after month-name substitution.
var dateLayouts = []string{
	"2. January 2006, 15:04",
	"2. January 2006 15:04",
	"2. January 2006, 15:04 Uhr",
	"2. January 2006",
	"02.01.2006, 15:04",
	"02.01.2006 15:04",
	"02.01.2006",
}

// TimestampLayout is the display format the frontend expects.
const TimestampLayout = "02.01.2006 15:04"

// TranslateMonths substitutes German month names with their English
// equivalents so the generic layouts above can parse the string. Pure
// and idempotent: English month names are left untouched.
func TranslateMonths(s string) string {
	for german, english := range germanMonths {
		s = strings.ReplaceAll(s, german, english)
	}
	return s
}

// ParseGermanDate parses a German free-text date like
// "12. Januar 2025, 19:00". Returns nil when nothing parses; a date
// that cannot be read is an absent field, not an error.
func ParseGermanDate(s string) *time.Time {
	s = strings.TrimSpace(TranslateMonths(s))
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t
		}
	}
	return nil
}

// FormatTimestamp renders a timestamp in the fixed dd.mm.yyyy hh:mm
// form used everywhere in the UI.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
