// Package render converts the analyst's markdown-style output into the HTML
// fragments the upload page embeds. It handles the structures the model
// actually emits (headings, tables, lists, bold/italic, fenced code) rather
// than the full CommonMark grammar, and escapes everything on the way in.
package render

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	fenceRe     = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")
	tableSepRe  = regexp.MustCompile(`^[\|\s\-:]+$`)
	orderedRe   = regexp.MustCompile(`^\d+\.\s+`)
	boldStarRe  = regexp.MustCompile(`\*\*(.+?)\*\*`)
	boldUnderRe = regexp.MustCompile(`__(.+?)__`)
	italStarRe  = regexp.MustCompile(`\*([^*]+)\*`)
	italUnderRe = regexp.MustCompile(`\b_([^_]+)_\b`)
)

// AnalysisHTML renders analyst markdown as an HTML fragment. The returned
// markup uses the analysis-* classes the upload page styles.
func AnalysisHTML(text string) string {
	var b strings.Builder

	text = strings.TrimSpace(text)

	// Leading "# Title" becomes the page heading.
	if rest, ok := strings.CutPrefix(text, "# "); ok {
		title, body, _ := strings.Cut(rest, "\n")
		fmt.Fprintf(&b, `<h1 class="analysis-title">%s</h1>`, inline(title))
		text = strings.TrimSpace(body)
	}

	// Fenced code blocks are lifted out before structural parsing so pipes
	// or dashes inside them don't read as tables.
	var codeBlocks []string
	text = fenceRe.ReplaceAllStringFunc(text, func(m string) string {
		code := strings.TrimSpace(fenceRe.FindStringSubmatch(m)[1])
		if code == "" {
			return ""
		}
		codeBlocks = append(codeBlocks, code)
		return fmt.Sprintf("\n\n\x00code:%d\x00\n\n", len(codeBlocks)-1)
	})

	sectionOpen := false
	closeSection := func() {
		if sectionOpen {
			b.WriteString("</div>")
			sectionOpen = false
		}
	}

	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); {
		line := strings.TrimSpace(lines[i])

		switch {
		case line == "" || line == "#" || line == "##" || line == "###":
			i++

		case strings.HasPrefix(line, "## "):
			closeSection()
			fmt.Fprintf(&b, `<div class="analysis-section"><h2 class="analysis-h2">%s</h2>`, inline(line[3:]))
			sectionOpen = true
			i++

		case strings.HasPrefix(line, "### "):
			fmt.Fprintf(&b, `<h3 class="analysis-h3">%s</h3>`, inline(line[4:]))
			i++

		case isTableLine(line):
			var rows []string
			for i < len(lines) && isTableLine(strings.TrimSpace(lines[i])) {
				rows = append(rows, strings.TrimSpace(lines[i]))
				i++
			}
			b.WriteString(tableHTML(rows))

		case isListLine(line):
			var items []string
			for i < len(lines) && isListLine(strings.TrimSpace(lines[i])) {
				items = append(items, strings.TrimSpace(lines[i]))
				i++
			}
			b.WriteString(listHTML(items))

		default:
			// Paragraph: consume until a blank line or structural line.
			para := []string{line}
			i++
			for i < len(lines) {
				l := strings.TrimSpace(lines[i])
				if l == "" || strings.HasPrefix(l, "#") || isTableLine(l) || isListLine(l) {
					break
				}
				para = append(para, l)
				i++
			}
			writeParagraph(&b, strings.Join(para, " "), codeBlocks)
		}
	}
	closeSection()

	return b.String()
}

func writeParagraph(b *strings.Builder, text string, codeBlocks []string) {
	var idx int
	if _, err := fmt.Sscanf(text, "\x00code:%d\x00", &idx); err == nil && idx < len(codeBlocks) {
		fmt.Fprintf(b, `<div class="analysis-code-block"><pre><code>%s</code></pre></div>`,
			html.EscapeString(codeBlocks[idx]))
		return
	}
	if formatted := inline(text); formatted != "" {
		fmt.Fprintf(b, `<p class="analysis-para">%s</p>`, formatted)
	}
}

func isTableLine(line string) bool {
	return strings.Count(line, "|") >= 2
}

func isListLine(line string) bool {
	return strings.HasPrefix(line, "- ") || orderedRe.MatchString(line)
}

func tableHTML(rows []string) string {
	var b strings.Builder
	b.WriteString(`<div class="analysis-table-wrapper"><table class="analysis-table">`)

	headerDone := false
	for _, row := range rows {
		if tableSepRe.MatchString(row) {
			continue
		}
		cells := strings.Split(strings.Trim(row, "|"), "|")
		tag := "td"
		if !headerDone {
			tag = "th"
			headerDone = true
		}
		b.WriteString("<tr>")
		for _, cell := range cells {
			fmt.Fprintf(&b, "<%s>%s</%s>", tag, inline(strings.TrimSpace(cell)), tag)
		}
		b.WriteString("</tr>")
	}

	b.WriteString("</table></div>")
	return b.String()
}

func listHTML(items []string) string {
	var b strings.Builder
	b.WriteString(`<ul class="analysis-list">`)
	for _, item := range items {
		if rest, ok := strings.CutPrefix(item, "- "); ok {
			item = rest
		} else {
			item = orderedRe.ReplaceAllString(item, "")
		}
		fmt.Fprintf(&b, "<li>%s</li>", inline(item))
	}
	b.WriteString("</ul>")
	return b.String()
}

// inline escapes text and applies bold and italic markers.
func inline(text string) string {
	text = html.EscapeString(strings.TrimSpace(text))
	text = boldStarRe.ReplaceAllString(text, "<strong>$1</strong>")
	text = boldUnderRe.ReplaceAllString(text, "<strong>$1</strong>")
	text = italStarRe.ReplaceAllString(text, "<em>$1</em>")
	text = italUnderRe.ReplaceAllString(text, "<em>$1</em>")
	return text
}
