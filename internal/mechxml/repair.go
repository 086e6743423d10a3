// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mechxml repairs and parses the mechanism XML emitted by the model.
// Model output frequently nests or forgets CDATA sections, prepends prose, or
// truncates the closing tag; the repair pass makes the text parseable without
// touching the payload itself.
package mechxml

import (
	"regexp"
	"strings"
)

const (
	cdataOpen  = "<![CDATA["
	cdataClose = "]]>"
)

// tokenPattern matches CDATA delimiters and opening/closing tags.
var tokenPattern = regexp.MustCompile(`(<!\[CDATA\[|\]\]>|</?[a-zA-Z0-9_]+(?:\s+[^>]+)?>)`)

// openTagPattern finds the first opening tag and captures its element name.
var openTagPattern = regexp.MustCompile(`<([a-zA-Z0-9_]+)(\s+[^>]+)?>`)

// RepairCData rewrites text so every CDATA section is validly paired. A new
// CDATA open while one is already open injects a synthetic close first; a
// closing tag seen inside CDATA injects a close before the tag so the section
// cannot swallow subsequent markup; a CDATA left open at end of string is
// force-closed. Tag-like tokens inside CDATA are literal text. Stray close
// markers outside any CDATA are dropped. The result is idempotent: repairing
// already-repaired text changes nothing.
func RepairCData(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 16)

	cursor := 0
	inCDATA := false

	for _, loc := range tokenPattern.FindAllStringIndex(text, -1) {
		token := text[loc[0]:loc[1]]
		b.WriteString(text[cursor:loc[0]])
		cursor = loc[1]

		switch {
		case token == cdataOpen:
			if inCDATA {
				// Illegal nested CDATA: close the previous section first.
				b.WriteString(cdataClose)
			}
			inCDATA = true
			b.WriteString(token)

		case token == cdataClose:
			if inCDATA {
				b.WriteString(token)
				inCDATA = false
			}
			// Stray close markers are dropped.

		case strings.HasPrefix(token, "</"):
			if inCDATA {
				// Force-close CDATA before the element ends.
				b.WriteString(cdataClose)
				inCDATA = false
			}
			b.WriteString(token)

		default: // opening tag
			b.WriteString(token)
		}
	}

	b.WriteString(text[cursor:])
	if inCDATA {
		b.WriteString(cdataClose)
	}
	return b.String()
}

// EnsureTopLevelClosed returns xml wrapped in a single well-formed root
// element. It finds the first opening tag, extracts the span up to the
// matching closing tag (discarding model chatter before and after), or takes
// everything after the opening tag when the close is missing (truncated
// output), and re-wraps the span in <name>...</name>. Input without any
// opening tag is returned unchanged. Never fails.
func EnsureTopLevelClosed(xml string) string {
	m := openTagPattern.FindStringSubmatch(xml)
	if m == nil {
		return xml
	}
	name := m[1]

	tagStart := "<" + name + ">"
	tagEnd := "</" + name + ">"

	var inner string
	start := strings.Index(xml, tagStart)
	end := strings.Index(xml, tagEnd)
	switch {
	case start >= 0 && end > start:
		inner = strings.TrimSpace(xml[start+len(tagStart) : end])
	case start >= 0:
		// Closing tag missing or misplaced: take everything after the open.
		inner = strings.TrimSpace(xml[start+len(tagStart):])
	default:
		// First tag carries attributes; wrap the whole text as-is.
		inner = strings.TrimSpace(xml)
	}

	return tagStart + inner + tagEnd
}
