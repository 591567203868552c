package crawler

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Locale holds the source-language strings the resolver and normalizer
// depend on: labeled-group prefixes and duration units.
type Locale struct {
	Name          string
	DirectorLabel string
	GenreLabel    string
	CastLabel     string
	HourUnit      string
	MinuteUnit    string
}

var (
	LocaleVI = Locale{
		Name:          "vi",
		DirectorLabel: "Đạo diễn",
		GenreLabel:    "Thể loại",
		CastLabel:     "Diễn viên",
		HourUnit:      "g",
		MinuteUnit:    "ph",
	}
	LocaleEN = Locale{
		Name:          "en",
		DirectorLabel: "Director",
		GenreLabel:    "Genre",
		CastLabel:     "Cast",
		HourUnit:      "h",
		MinuteUnit:    "m",
	}
)

func LocaleByName(name string) (Locale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vi", "":
		return LocaleVI, nil
	case "en":
		return LocaleEN, nil
	default:
		return Locale{}, fmt.Errorf("unknown locale %q", name)
	}
}

// normalized returns l with its labels in NFC form so that page text
// composed differently still matches.
func (l Locale) normalized() Locale {
	l.DirectorLabel = norm.NFC.String(l.DirectorLabel)
	l.GenreLabel = norm.NFC.String(l.GenreLabel)
	l.CastLabel = norm.NFC.String(l.CastLabel)
	return l
}
