package report

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// DefaultLocale is used when the browser sends no usable Accept-Language.
var DefaultLocale = language.AmericanEnglish

var supportedLocales = []language.Tag{
	language.AmericanEnglish,
	language.BritishEnglish,
	language.German,
	language.French,
	language.Spanish,
	language.Portuguese,
	language.Russian,
	language.Polish,
	language.Japanese,
	language.Chinese,
	language.Korean,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// ResolveLocale picks the closest supported locale for an Accept-Language
// header value.
func ResolveLocale(acceptLanguage string) language.Tag {
	if strings.TrimSpace(acceptLanguage) == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, index, confidence := localeMatcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	return supportedLocales[index]
}

// LocalDate formats the calendar date of t the way tag writes short dates.
func LocalDate(t time.Time, tag language.Tag) string {
	y, m, d := t.Date()
	base, _ := tag.Base()
	switch base.String() {
	case "en":
		if region, _ := tag.Region(); region.String() == "US" {
			return fmt.Sprintf("%d/%d/%d", m, d, y)
		}
		return fmt.Sprintf("%d/%d/%d", d, m, y)
	case "de", "ru", "pl":
		return fmt.Sprintf("%d.%d.%d", d, m, y)
	case "ja", "zh", "ko":
		return fmt.Sprintf("%d/%d/%d", y, m, d)
	default:
		return fmt.Sprintf("%d/%d/%d", d, m, y)
	}
}

// LocalTimestamp formats t as a short localized date followed by a 24-hour
// clock time.
func LocalTimestamp(t time.Time, tag language.Tag) string {
	if t.IsZero() {
		return ""
	}
	return LocalDate(t, tag) + " " + t.Format("15:04")
}

// Filename is the download name of a report generated at t.
func Filename(t time.Time, tag language.Tag) string {
	return "Chemical_Equipment_Report_" + strings.ReplaceAll(LocalDate(t, tag), "/", "-") + ".pdf"
}
