package helpers

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cast"
)

// DefaultLocale is used when no locale, or an unsupported one, is given
const DefaultLocale = "en"

// InvalidDate is rendered for values that cannot be read as a date
const InvalidDate = "Invalid date"

type relLocale struct {
	past   string
	future string
	units  []humanize.RelTimeMagnitude
}

// magnitudes builds a threshold table. The phrases cover, in order: seconds,
// one minute, minutes, one hour, hours, one day, days, one month, months,
// one year, years.
func magnitudes(p ...string) []humanize.RelTimeMagnitude {
	return []humanize.RelTimeMagnitude{
		{D: 45 * time.Second, Format: p[0], DivBy: 1},
		{D: 2 * time.Minute, Format: p[1], DivBy: 1},
		{D: 45 * time.Minute, Format: p[2], DivBy: time.Minute},
		{D: 2 * time.Hour, Format: p[3], DivBy: 1},
		{D: 22 * time.Hour, Format: p[4], DivBy: time.Hour},
		{D: 2 * humanize.Day, Format: p[5], DivBy: 1},
		{D: 26 * humanize.Day, Format: p[6], DivBy: humanize.Day},
		{D: 2 * humanize.Month, Format: p[7], DivBy: 1},
		{D: 320 * humanize.Day, Format: p[8], DivBy: humanize.Month},
		{D: 2 * 365 * humanize.Day, Format: p[9], DivBy: 1},
		{D: math.MaxInt64, Format: p[10], DivBy: humanize.Year},
	}
}

var relLocales = map[string]relLocale{
	"en": {
		past: "%s ago", future: "in %s",
		units: magnitudes("a few seconds", "a minute", "%d minutes", "an hour", "%d hours",
			"a day", "%d days", "a month", "%d months", "a year", "%d years"),
	},
	"fr": {
		past: "il y a %s", future: "dans %s",
		units: magnitudes("quelques secondes", "une minute", "%d minutes", "une heure", "%d heures",
			"un jour", "%d jours", "un mois", "%d mois", "un an", "%d ans"),
	},
	"de": {
		past: "vor %s", future: "in %s",
		units: magnitudes("ein paar Sekunden", "einer Minute", "%d Minuten", "einer Stunde", "%d Stunden",
			"einem Tag", "%d Tagen", "einem Monat", "%d Monaten", "einem Jahr", "%d Jahren"),
	},
	"es": {
		past: "hace %s", future: "en %s",
		units: magnitudes("unos segundos", "un minuto", "%d minutos", "una hora", "%d horas",
			"un día", "%d días", "un mes", "%d meses", "un año", "%d años"),
	},
	"pt": {
		past: "há %s", future: "em %s",
		units: magnitudes("alguns segundos", "um minuto", "%d minutos", "uma hora", "%d horas",
			"um dia", "%d dias", "um mês", "%d meses", "um ano", "%d anos"),
	},
}

// Language reduces a locale tag such as "fr-CA" or "pt_BR" to its language
func Language(locale string) string {
	lang, _, _ := strings.Cut(strings.ToLower(locale), "-")
	lang, _, _ = strings.Cut(lang, "_")
	return lang
}

// TimeAgo renders the distance between date and now ("3 days ago") in the
// given locale, with the first letter capitalised. Unsupported locales fall
// back to DefaultLocale.
func TimeAgo(date interface{}, locale string, now time.Time) string {
	then, ok := ParseDate(date, now)
	if !ok {
		return InvalidDate
	}

	loc, ok := relLocales[Language(locale)]
	if !ok {
		loc = relLocales[DefaultLocale]
	}

	phrase := humanize.CustomRelTime(then, now, "", "", loc.units)
	pattern := loc.past
	if then.After(now) {
		pattern = loc.future
	}

	return capitalize(fmt.Sprintf(pattern, phrase))
}

// ParseDate reads a date from a time, a timestamp in milliseconds or a
// string. A nil date is now.
func ParseDate(date interface{}, now time.Time) (time.Time, bool) {
	date = unwrap(date)

	switch v := date.(type) {
	case nil:
		return now, true
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		t, err := cast.ToTimeE(v)
		return t, err == nil
	}

	if isNumber(date) {
		ms, err := cast.ToInt64E(date)
		if err != nil {
			return time.Time{}, false
		}
		return time.UnixMilli(ms), true
	}

	return time.Time{}, false
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
