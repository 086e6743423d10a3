// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package coerce

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractJSON pulls the first parseable JSON object out of free-form model
// text. Candidates are tried in order: the raw text, the body of the first
// fenced code block, and the span between the first opening and last closing
// brace. Each candidate is additionally retried with backslash normalizations
// that recover records broken by unescaped LaTeX.
func ExtractJSON(text string) (map[string]any, bool) {
	for _, candidate := range candidates(text) {
		for _, variant := range variants(candidate) {
			var obj map[string]any
			if err := json.Unmarshal([]byte(variant), &obj); err == nil {
				return obj, true
			}
		}
	}
	return nil, false
}

func candidates(text string) []string {
	out := []string{strings.TrimSpace(text)}
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		out = append(out, strings.TrimSpace(m[1]))
	}
	if open := strings.Index(text, "{"); open >= 0 {
		if close := strings.LastIndex(text, "}"); close > open {
			out = append(out, text[open:close+1])
		}
	}
	return out
}

func variants(s string) []string {
	return []string{
		s,
		doubleLoneBackslashes(s),
		strings.ReplaceAll(s, `\`, "/"),
		strings.ReplaceAll(s, `\`, ""),
	}
}

// doubleLoneBackslashes escapes single backslashes that precede a letter,
// the usual shape of raw LaTeX commands leaking into JSON strings. Already
// doubled backslashes pass through untouched. Valid escapes like \n get
// mangled too, but this is only one variant of several and a variant that
// fails to parse is simply discarded.
func doubleLoneBackslashes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' {
			if i+1 < len(s) && s[i+1] == '\\' {
				b.WriteString(`\\`)
				i++
				continue
			}
			if i+1 < len(s) && isLetter(s[i+1]) {
				b.WriteString(`\\`)
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
