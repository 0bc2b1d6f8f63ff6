package types

import (
	"fmt"
	"strings"
)

// Locale is one of the three languages the menu is published in.
type Locale string

// Supported locales. LocaleKA is the default.
const (
	LocaleKA Locale = "ka"
	LocaleEN Locale = "en"
	LocaleRU Locale = "ru"
)

// DefaultLocale is served when a caller asks for an unknown language.
const DefaultLocale = LocaleKA

// Locales lists the supported locales in display order.
var Locales = []Locale{LocaleKA, LocaleEN, LocaleRU}

// ParseLocale accepts "en", "EN" or "en-US" style values and returns the
// matching Locale. Unknown languages return an ErrValidation error.
func ParseLocale(s string) (Locale, error) {
	base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "-")
	for _, l := range Locales {
		if string(l) == base {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: unknown locale %q", ErrValidation, s)
}

// LocaleText holds one display string per supported locale. Keys absent from
// the stored JSON decode as empty strings.
type LocaleText struct {
	KA string `json:"ka"`
	EN string `json:"en"`
	RU string `json:"ru"`
}

// Get returns the text for l, or "" for an unsupported locale.
func (t LocaleText) Get(l Locale) string {
	switch l {
	case LocaleKA:
		return t.KA
	case LocaleEN:
		return t.EN
	case LocaleRU:
		return t.RU
	default:
		return ""
	}
}
