package markup

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatEmptyInput(t *testing.T) {
	assert.Equal(t, "", Format(""))
}

func TestFormatPlainTextMatchesEscapeAndLinebreak(t *testing.T) {
	inputs := []string{
		"hello world",
		"line one\nline two",
		"a < b & c > d",
		"quotes \"double\" and 'single'",
		"trailing newline\n",
		"version 1.2 is out",
	}

	for _, in := range inputs {
		assert.Equal(t, EscapeAndLinebreak(in), Format(in), "input %q", in)
	}
}

func TestFormatStrong(t *testing.T) {
	got := Format("**bold**")
	assert.Equal(t, "<strong>bold</strong>", got)
	assert.NotContains(t, got, "*")
}

func TestFormatEmphasisAfterStrong(t *testing.T) {
	got := Format("**strong** and *soft*")
	assert.Equal(t, "<strong>strong</strong> and <em>soft</em>", got)
}

func TestFormatPromptItemsWrappedOnce(t *testing.T) {
	got := Format("1. first\n2. second")

	assert.True(t, strings.HasPrefix(got, `<div class="prompts-container">`))
	assert.Equal(t, 1, strings.Count(got, "prompts-container"))

	items := regexp.MustCompile(`<span class="prompt-number">(\d+)\.</span><span class="prompt-text">([^<]*)</span>`).
		FindAllStringSubmatch(got, -1)
	if assert.Len(t, items, 2) {
		assert.Equal(t, []string{"1", "first"}, items[0][1:])
		assert.Equal(t, []string{"2", "second"}, items[1][1:])
	}
	assert.Equal(t, 2, strings.Count(got, `class="prompt-item"`))
}

func TestFormatPromptItemsAcrossLineTerminators(t *testing.T) {
	testCases := []struct {
		name string
		in   string
	}{
		{name: "crlf", in: "1. first\r\n2. second"},
		{name: "carriage return", in: "1. first\r2. second"},
		{name: "line separator", in: "1. first\u20282. second"},
		{name: "paragraph separator", in: "1. first\u20292. second"},
		{name: "no-break space", in: "1.\u00a0first\n2.\u00a0second"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Format(tc.in)
			assert.Equal(t, 2, strings.Count(got, `class="prompt-item"`), got)
			assert.Contains(t, got, `<span class="prompt-text">first</span>`)
			assert.Contains(t, got, `<span class="prompt-text">second</span>`)
		})
	}
}

func TestFormatPromptItemOnlyAtLineStart(t *testing.T) {
	got := Format("see v1. notes\nx2. y")
	assert.NotContains(t, got, "prompt-item")

	got = Format("intro1.\n2. item")
	assert.Equal(t, 1, strings.Count(got, `class="prompt-item"`), got)
	assert.Contains(t, got, `<span class="prompt-number">2.</span><span class="prompt-text">item</span>`)
}

func TestPipelineLineStartRule(t *testing.T) {
	p := Pipeline{{
		Name:        "heading",
		Pattern:     regexp.MustCompile(`#([a-z]+)`),
		Replacement: `<h>${1}</h>`,
		LineStart:   true,
	}}
	assert.Equal(t, "<h>a</h> #b\r<h>c</h>", p.Apply("#a #b\r#c"))
}

func TestFormatCodeBlockAndInlineCode(t *testing.T) {
	got := Format("run `go test`\n```\nx := 1\n```")
	assert.Contains(t, got, "<code>go test</code>")
	assert.Contains(t, got, "<pre><code><br>x := 1<br></code></pre>")
}

func TestFormatEscapesMarkupInReply(t *testing.T) {
	got := Format("<script>alert(1)</script>")
	assert.NotContains(t, got, "<script>")
	assert.Contains(t, got, "&lt;script&gt;")
}

func TestFormatStrayAsterisksStillTransform(t *testing.T) {
	// Rule order, not a parser, decides: 2*3*4 becomes emphasis.
	assert.Equal(t, "2<em>3</em>4", Format("2*3*4"))
}

func TestFormatEmphasisDoesNotCrossLines(t *testing.T) {
	assert.Equal(t, "*a<br>b*", Format("*a\nb*"))
}

func TestFormatIsDeterministic(t *testing.T) {
	in := "**Title**\n1. *one*\n2. `two`"
	assert.Equal(t, Format(in), Format(in))
}

func TestPipelineAppliesRulesInOrder(t *testing.T) {
	p := Pipeline{
		{Name: "a-to-b", Pattern: regexp.MustCompile(`a`), Replacement: "b"},
		{Name: "b-to-c", Pattern: regexp.MustCompile(`b`), Replacement: "c"},
	}
	assert.Equal(t, "cc", p.Apply("ab"))
}

func TestPlainTextDoesNotFormat(t *testing.T) {
	assert.Equal(t, "**x** &amp; `y`", PlainText("**x** & `y`"))
}
