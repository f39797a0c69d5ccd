package helpers

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goodsign/monday"
)

// DefaultDateFormat is the layout FormatDate uses when none is given
const DefaultDateFormat = "YYYY-MM-DD"

var mondayLocales = map[string]monday.Locale{
	"en": monday.LocaleEnUS,
	"fr": monday.LocaleFrFR,
	"de": monday.LocaleDeDE,
	"es": monday.LocaleEsES,
	"pt": monday.LocalePtPT,
}

// dateTokens maps date-format tokens to Go layout elements, longest first
var dateTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"dddd", "Monday"},
	{"MMM", "Jan"},
	{"ddd", "Mon"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"hh", "03"},
	{"mm", "04"},
	{"ss", "05"},
	{"ZZ", "-0700"},
	{"M", "1"},
	{"D", "2"},
	{"h", "3"},
	{"m", "4"},
	{"s", "5"},
	{"A", "PM"},
	{"a", "pm"},
	{"Z", "-07:00"},
}

type dateSegment struct {
	text    string
	literal bool
}

// parseDateFormat splits a date format such as "DD MMMM YYYY, HH:mm" into Go
// layout elements and literal text. Text in square brackets and characters
// that are not tokens are literal.
func parseDateFormat(format string) []dateSegment {
	var segs []dateSegment
	literal := func(text string) {
		if n := len(segs); n > 0 && segs[n-1].literal {
			segs[n-1].text += text
			return
		}
		segs = append(segs, dateSegment{text: text, literal: true})
	}

	for i := 0; i < len(format); {
		if format[i] == '[' {
			if end := strings.IndexByte(format[i:], ']'); end > 0 {
				literal(format[i+1 : i+end])
				i += end + 1
				continue
			}
		}

		matched := false
		for _, t := range dateTokens {
			if strings.HasPrefix(format[i:], t.token) {
				segs = append(segs, dateSegment{text: t.layout})
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			_, size := utf8.DecodeRuneInString(format[i:])
			literal(format[i : i+size])
			i += size
		}
	}

	return segs
}

// FormatDate formats date with a date format, using month and day names of
// the given locale. An empty format is DefaultDateFormat.
func FormatDate(date interface{}, format, locale string, now time.Time) string {
	t, ok := ParseDate(date, now)
	if !ok {
		return InvalidDate
	}
	if format == "" {
		format = DefaultDateFormat
	}

	loc, ok := mondayLocales[Language(locale)]
	if !ok {
		loc = mondayLocales[DefaultLocale]
	}

	var out strings.Builder
	for _, seg := range parseDateFormat(format) {
		if seg.literal {
			out.WriteString(seg.text)
			continue
		}
		out.WriteString(monday.Format(t, seg.text, loc))
	}
	return out.String()
}
