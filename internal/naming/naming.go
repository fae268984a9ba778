// Package naming содержит преобразования имён ресурсов: число и регистр.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ToSingular переводит имя из множественного числа в единственное.
// Правила: "ies" -> "y", иначе отбрасывается завершающая "s", иначе без изменений.
func ToSingular(s string) string {
	switch {
	case strings.HasSuffix(s, "ies"):
		return strings.TrimSuffix(s, "ies") + "y"
	case strings.HasSuffix(s, "s"):
		return strings.TrimSuffix(s, "s")
	default:
		return s
	}
}

// ToPlural обратное к ToSingular для существительных без окончания "y";
// для "y" используется форма "ies".
func ToPlural(s string) string {
	if s == "" {
		return s
	}
	if strings.HasSuffix(s, "y") {
		return strings.TrimSuffix(s, "y") + "ies"
	}
	return s + "s"
}

// Capitalize делает первую букву заглавной.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
