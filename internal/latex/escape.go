package latex

import "strings"

// escaper rewrites every character with special meaning in LaTeX. The
// replacements happen in a single pass, so the backslashes introduced here
// are never re-escaped.
var escaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`_`, `\_`,
	`%`, `\%`,
	`^`, `\textasciicircum{}`,
	`~`, `\textasciitilde{}`,
)

// Escape makes s safe for substitution into LaTeX source. A title like
// "100% C# Developer" renders literally instead of breaking the document.
func Escape(s string) string {
	return escaper.Replace(s)
}
