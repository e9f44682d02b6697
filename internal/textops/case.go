// Package textops provides buffer-wide text transformations: case
// conversion, trailing whitespace trimming, and character counting.
package textops

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// CaseStyle names one of the supported case conversions.
type CaseStyle string

const (
	CaseUpper      CaseStyle = "upper"
	CaseLower      CaseStyle = "lower"
	CaseTitle      CaseStyle = "title"
	CaseCapitalize CaseStyle = "capitalize"
	CaseSnake      CaseStyle = "snake"
	CaseCamel      CaseStyle = "camel"
)

// ParseCaseStyle resolves a style name to its CaseStyle value.
func ParseCaseStyle(s string) (CaseStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "upper", "uppercase":
		return CaseUpper, nil
	case "lower", "lowercase":
		return CaseLower, nil
	case "title", "titlecase":
		return CaseTitle, nil
	case "capitalize":
		return CaseCapitalize, nil
	case "snake", "snakecase", "snake_case":
		return CaseSnake, nil
	case "camel", "camelcase":
		return CaseCamel, nil
	default:
		return "", fmt.Errorf("unknown case style %q", s)
	}
}

var (
	snakeSeparators = regexp.MustCompile(`[\s-]+`)
	camelSeparators = regexp.MustCompile(`[\s_-]+`)
	caseBoundary    = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// Convert rewrites text in the given case style.
func Convert(text string, style CaseStyle) (string, error) {
	switch style {
	case CaseUpper:
		return strings.ToUpper(text), nil
	case CaseLower:
		return strings.ToLower(text), nil
	case CaseTitle:
		return titleCase(text), nil
	case CaseCapitalize:
		return capitalize(text), nil
	case CaseSnake:
		return toSnakeCase(text), nil
	case CaseCamel:
		return toCamelCase(text), nil
	default:
		return "", fmt.Errorf("unknown case style %q", style)
	}
}

// toSnakeCase joins space- and dash-separated parts with underscores,
// splits lower-to-upper boundaries, and lowercases the result.
func toSnakeCase(text string) string {
	text = snakeSeparators.ReplaceAllString(text, "_")
	text = caseBoundary.ReplaceAllString(text, "${1}_${2}")
	return strings.ToLower(text)
}

// toCamelCase lowercases the first part and capitalizes the rest,
// splitting on spaces, dashes, and underscores.
func toCamelCase(text string) string {
	parts := camelSeparators.Split(text, -1)
	if len(parts) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(strings.ToLower(parts[0]))
	for _, part := range parts[1:] {
		b.WriteString(capitalize(part))
	}
	return b.String()
}

// capitalize uppercases the first character and lowercases the rest.
func capitalize(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// titleCase uppercases every letter that follows a non-letter and
// lowercases the rest of each letter run.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			b.WriteRune(r)
			prevLetter = false
		case prevLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToUpper(r))
			prevLetter = true
		}
	}
	return b.String()
}
