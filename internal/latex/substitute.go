package latex

import (
	"regexp"
	"strings"
)

// Substitution targets inside the template source. The title lands in the
// visible header, style and company in \newcommand markers the template
// defines for itself.
var (
	titleRE   = regexp.MustCompile(`(\{\\Large\\color\{text\}\s+)[^}]+(\})`)
	styleRE   = regexp.MustCompile(`(\\newcommand\{\\cvstyle\}\{)[^}]+(\})`)
	companyRE = regexp.MustCompile(`(\\newcommand\{\\company\}\{)[^}]*(\})`)
)

// Substitute replaces the title header, style marker and company marker in
// the template source. Values are escaped before insertion; markers missing
// from the template are simply left untouched.
func Substitute(src, title, style, company string) string {
	src = replaceGroup(titleRE, src, Escape(title))
	src = replaceGroup(styleRE, src, style)
	src = replaceGroup(companyRE, src, Escape(company))
	return src
}

// replaceGroup keeps the captured delimiters and swaps the value between
// them. Dollar signs in the value are doubled so ReplaceAllString treats
// them literally rather than as group references.
func replaceGroup(re *regexp.Regexp, src, value string) string {
	return re.ReplaceAllString(src, "${1}"+strings.ReplaceAll(value, "$", "$$")+"${2}")
}
