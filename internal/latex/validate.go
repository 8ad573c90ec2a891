package latex

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	maxTitleLen   = 200
	maxCompanyLen = 120
)

// validateTitle trims and bounds the requested title. LaTeX-special
// characters are allowed here and escaped at substitution time; only control
// characters are rejected outright because they are safe nowhere.
func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is empty", ErrInvalidTitle)
	}
	if len(title) > maxTitleLen {
		return "", fmt.Errorf("%w: too long (max %d characters)", ErrInvalidTitle, maxTitleLen)
	}
	for _, r := range title {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: contains control characters", ErrInvalidTitle)
		}
	}
	return title, nil
}

// validateStyle normalizes the style key and checks it against the
// configured allow-list.
func validateStyle(style string, allowed []string) (string, error) {
	style = strings.ToLower(strings.TrimSpace(style))
	for _, s := range allowed {
		if style == s {
			return style, nil
		}
	}
	return "", fmt.Errorf("%w: must be one of: %s", ErrInvalidStyle, strings.Join(allowed, ", "))
}

// validateCompany bounds and restricts the optional company label. Empty is
// fine; the marker in the template is simply cleared.
func validateCompany(company string) (string, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return "", nil
	}
	if len(company) > maxCompanyLen {
		return "", fmt.Errorf("%w: too long (max %d characters)", ErrInvalidCompany, maxCompanyLen)
	}
	for _, r := range company {
		if !isCompanyRune(r) {
			return "", fmt.Errorf("%w: contains invalid characters", ErrInvalidCompany)
		}
	}
	return company, nil
}

func isCompanyRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune(" -_.,&()'/", r)
}

// slugify turns the title into a filename-safe fragment: whitespace runs
// become single underscores and anything outside [A-Za-z0-9._-] is dropped.
func slugify(title string) string {
	joined := strings.Join(strings.Fields(title), "_")
	var b strings.Builder
	for _, r := range joined {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}
