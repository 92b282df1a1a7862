// Package i18n lists the supported locales and builds locale aware paths.
package i18n

import "strings"

const DefaultLocale = "en"

// Locales are all content locales. Docs are published in every one of them.
var Locales = []string{"en", "zh", "ja", "ko", "ru"}

// UILocales are the locales offered in the language switcher.
var UILocales = []string{"en", "zh", "ja"}

var LocaleNames = map[string]string{
	"en": "English",
	"zh": "中文",
	"ja": "日本語",
	"ko": "한국어",
	"ru": "Русский",
}

func IsSupported(locale string) bool {
	for _, l := range Locales {
		if l == locale {
			return true
		}
	}
	return false
}

// Normalize lowercases the locale and maps unknown values to DefaultLocale.
func Normalize(locale string) string {
	l := strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(l, "-_"); i > 0 {
		l = l[:i]
	}
	if IsSupported(l) {
		return l
	}
	return DefaultLocale
}

// LocalizedPath prefixes path with the locale unless it is the default one.
func LocalizedPath(locale, path string) string {
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	if locale == DefaultLocale || locale == "" {
		return path
	}
	if path == "/" {
		return "/" + locale
	}
	return "/" + locale + path
}

// FromAcceptLanguage picks the first supported locale of an Accept-Language header.
func FromAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		if l := Normalize(tag); l != DefaultLocale || strings.HasPrefix(strings.ToLower(tag), DefaultLocale) {
			return l
		}
	}
	return DefaultLocale
}
