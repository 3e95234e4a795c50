// Package opdoc turns free-form handler doc comments into the summary and
// description pair carried by OpenAPI operation metadata.
//
// The split logic lives here so that both the code generator and the runtime
// registry agree on what a summary is. Generated files call Register with the
// already-split pair; servers look the pair up by operation ID when they
// assemble their documentation.
package opdoc

import "strings"

// Split separates the collected doc comment lines of a handler into a short
// summary and a longer description.
//
// The first paragraph becomes the summary: its lines are trimmed and joined
// with single spaces so the summary reads as one phrase. Every remaining
// paragraph becomes the description, with line breaks inside a paragraph
// preserved and paragraphs separated by exactly one blank line. Leading and
// trailing blank lines are ignored, and any run of blank lines counts as a
// single paragraph separator.
//
// Split is total: it never fails, and both results are empty when lines holds
// no text at all.
func Split(lines []string) (summary, description string) {
	paras := paragraphs(lines)
	if len(paras) == 0 {
		return "", ""
	}

	first := make([]string, len(paras[0]))
	for i, line := range paras[0] {
		first[i] = strings.TrimSpace(line)
	}
	summary = strings.Join(first, " ")

	rest := make([]string, 0, len(paras)-1)
	for _, p := range paras[1:] {
		rest = append(rest, strings.Join(p, "\n"))
	}
	description = strings.Join(rest, "\n\n")
	return summary, description
}

// paragraphs groups lines into maximal runs of non-blank lines. Trailing
// whitespace is dropped from every kept line; leading whitespace beyond the
// comment marker is part of the text and survives.
func paragraphs(lines []string) [][]string {
	var out [][]string
	var cur []string
	for _, line := range lines {
		if isBlank(line) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, strings.TrimRight(line, " \t"))
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
