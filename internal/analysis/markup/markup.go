// Package markup turns raw webhook replies into the HTML fragments rendered by
// the chat widget.
package markup

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// inline matches any character the browser's regexp dot would accept: line
	// terminators are excluded.
	inline = `[^\n\r\x{2028}\x{2029}]`
	// space is the browser's \s class, which covers Unicode spaces as well.
	space = `[\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}]`
)

// Rule rewrites every match of Pattern with Replacement (regexp.Expand syntax).
// LineStart restricts matches to those beginning at the start of the text or
// right after a line terminator (\n, \r, U+2028, U+2029).
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
	LineStart   bool
}

// Pipeline applies its rules strictly in order. Later rules see the output of
// earlier ones, so markup produced upstream may be matched again downstream.
type Pipeline []Rule

// Apply runs every rule over text and returns the result.
func (p Pipeline) Apply(text string) string {
	for _, rule := range p {
		if rule.LineStart {
			text = replaceAtLineStart(rule.Pattern, text, rule.Replacement)
			continue
		}
		text = rule.Pattern.ReplaceAllString(text, rule.Replacement)
	}
	return text
}

// replaceAtLineStart is ReplaceAllString limited to matches that begin a line.
// A candidate rejected for its position is retried one byte further on, since
// a valid match may start inside it.
func replaceAtLineStart(re *regexp.Regexp, text, replacement string) string {
	var b strings.Builder
	copied, pos := 0, 0
	for pos <= len(text) {
		loc := re.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if !atLineStart(text, start) {
			_, size := utf8.DecodeRuneInString(text[start:])
			pos = start + max(size, 1)
			continue
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += pos
			}
		}
		b.WriteString(text[copied:start])
		b.Write(re.ExpandString(nil, replacement, text, loc))
		copied = end
		pos = end
		if end == start {
			pos++
		}
	}
	if copied == 0 {
		return text
	}
	b.WriteString(text[copied:])
	return b.String()
}

func atLineStart(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}

const (
	promptItemClass = "prompt-item"
	containerOpen   = `<div class="prompts-container">`
	containerClose  = `</div>`
)

// DefaultRules is the reply formatting pipeline: strong, emphasis, numbered
// prompt items, fenced code, inline code, line breaks.
var DefaultRules = Pipeline{
	{
		Name:        "strong",
		Pattern:     regexp.MustCompile(`\*\*(` + inline + `*?)\*\*`),
		Replacement: `<strong>${1}</strong>`,
	},
	{
		Name:        "emphasis",
		Pattern:     regexp.MustCompile(`\*(` + inline + `*?)\*`),
		Replacement: `<em>${1}</em>`,
	},
	{
		Name:        "prompt-item",
		Pattern:     regexp.MustCompile(`(\d+)\.` + space + `+(` + inline + `+)`),
		LineStart:   true,
		Replacement: `<div class="` + promptItemClass + `"><span class="prompt-number">${1}.</span><span class="prompt-text">${2}</span></div>`,
	},
	{
		Name:        "code-block",
		Pattern:     regexp.MustCompile("```([\\s\\S]*?)```"),
		Replacement: `<pre><code>${1}</code></pre>`,
	},
	{
		Name:        "inline-code",
		Pattern:     regexp.MustCompile("`([^`]+)`"),
		Replacement: `<code>${1}</code>`,
	},
	{
		Name:        "line-break",
		Pattern:     regexp.MustCompile(`\n`),
		Replacement: `<br>`,
	},
}

// Format renders assistant text as HTML. The input is escaped first so reply
// content can never inject markup of its own.
func Format(raw string) string {
	if raw == "" {
		return ""
	}

	formatted := DefaultRules.Apply(html.EscapeString(raw))
	if strings.Contains(formatted, promptItemClass) {
		formatted = containerOpen + formatted + containerClose
	}
	return formatted
}

// PlainText renders user-authored text: escaped, no formatting rules.
func PlainText(raw string) string {
	return html.EscapeString(raw)
}

// EscapeAndLinebreak is the output Format produces for text without markers.
func EscapeAndLinebreak(raw string) string {
	return strings.ReplaceAll(html.EscapeString(raw), "\n", "<br>")
}
