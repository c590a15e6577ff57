package naming

import (
	"time"

	"golang.org/x/text/language"
)

// DefaultPrefix starts every generated fallback name.
const DefaultPrefix = "Session - "

// Short numeric date layouts per locale, matched with a language.Matcher.
// The first entry is the fallback for unmatched locales.
var (
	dateLocales = []language.Tag{
		language.AmericanEnglish,
		language.BritishEnglish,
		language.MustParse("en-AU"),
		language.MustParse("en-CA"),
		language.German,
		language.French,
		language.Spanish,
		language.Italian,
		language.Dutch,
		language.Portuguese,
		language.Russian,
		language.Polish,
		language.Japanese,
		language.Chinese,
		language.Korean,
		language.Swedish,
	}
	dateLayouts = []string{
		"1/2/2006",
		"02/01/2006",
		"02/01/2006",
		"2006-01-02",
		"2.1.2006",
		"02/01/2006",
		"2/1/2006",
		"2/1/2006",
		"2-1-2006",
		"02/01/2006",
		"02.01.2006",
		"2.01.2006",
		"2006/1/2",
		"2006/1/2",
		"2006. 1. 2.",
		"2006-01-02",
	}
	dateMatcher = language.NewMatcher(dateLocales)
)

// DateLayout returns the short date layout for locale.
func DateLayout(locale language.Tag) string {
	_, i, conf := dateMatcher.Match(locale)
	if conf == language.No {
		return dateLayouts[0]
	}
	return dateLayouts[i]
}

// DefaultName is "Session - " followed by now's date written for locale.
func DefaultName(now time.Time, locale language.Tag) string {
	return DefaultPrefix + now.Format(DateLayout(locale))
}
