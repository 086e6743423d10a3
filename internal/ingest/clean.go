// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"regexp"
	"strings"
)

// Line-prefix commands removed wholesale. Title-page metadata, alignment
// switches, and font-size switches carry no content.
var (
	metadataPrefixes = []string{
		`\maketitle`, `\author`, `\affiliation`, `\address`, `\email`,
		`\date`, `\keywords`, `\subclass`, `\PACS`, `\MSC`,
	}
	layoutLinePrefixes = []string{
		`\raggedright`, `\raggedleft`, `\centering`,
		`\onecolumn`, `\twocolumn`, `\sloppy`, `\fussy`,
	}
	fontSizePrefixes = []string{
		`\tiny`, `\scriptsize`, `\footnotesize`, `\small`, `\normalsize`,
		`\large`, `\Large`, `\LARGE`, `\huge`, `\Huge`,
	}
)

// Inline commands removed by pattern: spacing, page breaks, colors, boxes.
var junkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)\\vspace\*?\{.*?\}`),
	regexp.MustCompile(`(?s)\\hspace\*?\{.*?\}`),
	regexp.MustCompile(`\\(newpage|pagebreak|clearpage|cleardoublepage)\b`),
	regexp.MustCompile(`\\(linebreak|nolinebreak)\b`),
	regexp.MustCompile(`\\(smallskip|medskip|bigskip)\b`),
	regexp.MustCompile(`\\par\b`),
	regexp.MustCompile(`\\noindent\b`),
	regexp.MustCompile(`(?s)\\color\{.*?\}`),
	regexp.MustCompile(`(?s)\\pagecolor\{.*?\}`),
	regexp.MustCompile(`(?s)\\definecolor\{.*?\}\{.*?\}\{.*?\}`),
	regexp.MustCompile(`(?s)\\textcolor\{.*?\}\{.*?\}`),
	regexp.MustCompile(`(?s)\\mbox\{.*?\}`),
	regexp.MustCompile(`(?s)\\fbox\{.*?\}`),
	regexp.MustCompile(`(?s)\\framebox\{.*?\}`),
	regexp.MustCompile(`(?s)\\raisebox\{.*?\}\{.*?\}`),
	regexp.MustCompile(`(?s)\\makebox\{.*?\}\{.*?\}`),
}

var environmentsToFlatten = []string{"center", "flushleft", "flushright"}

var macroDefPattern = regexp.MustCompile(
	`\\(newcommand|renewcommand|def|DeclareMathOperator)\s*\{\\([A-Za-z@]+)\}`)

var macroUsePattern = regexp.MustCompile(`\\([A-Za-z@]+)\b`)

var (
	blankRunPattern   = regexp.MustCompile(`\n{3,}`)
	trailingWSPattern = regexp.MustCompile(`[ \t]+\n`)
)

// CleanLaTeX strips comments, layout noise, and unused macro definitions
// from a TeX document, keeping the mathematical content intact.
func CleanLaTeX(tex string) string {
	tex = removeComments(tex)
	tex = removeLineJunk(tex)
	tex = removeInlineJunk(tex)
	tex = flattenLayoutEnvironments(tex)
	tex = removeUnusedMacros(tex)
	return normalizeWhitespace(tex)
}

// removeComments cuts each line at the first unescaped %.
func removeComments(tex string) string {
	lines := strings.Split(tex, "\n")
	for i, line := range lines {
		for j := 0; j < len(line); j++ {
			if line[j] != '%' {
				continue
			}
			if j > 0 && line[j-1] == '\\' {
				continue
			}
			lines[i] = line[:j]
			break
		}
	}
	return strings.Join(lines, "\n")
}

func removeLineJunk(tex string) string {
	var out []string
	for _, line := range strings.Split(tex, "\n") {
		stripped := strings.TrimLeft(line, " \t")
		if hasAnyPrefix(stripped, metadataPrefixes) ||
			hasAnyPrefix(stripped, layoutLinePrefixes) ||
			hasAnyPrefix(stripped, fontSizePrefixes) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func removeInlineJunk(tex string) string {
	for _, pat := range junkPatterns {
		tex = pat.ReplaceAllString(tex, "")
	}
	return tex
}

func flattenLayoutEnvironments(tex string) string {
	for _, env := range environmentsToFlatten {
		pat := regexp.MustCompile(`(?s)\\begin\{` + env + `\}(.*?)\\end\{` + env + `\}`)
		tex = pat.ReplaceAllString(tex, "$1")
	}
	return tex
}

// removeUnusedMacros drops \newcommand style definitions whose macro never
// appears in the body.
func removeUnusedMacros(tex string) string {
	defined := make(map[string]bool)
	for _, m := range macroDefPattern.FindAllStringSubmatch(tex, -1) {
		defined[m[2]] = true
	}
	if len(defined) == 0 {
		return tex
	}

	body := macroDefPattern.ReplaceAllString(tex, "")
	for _, m := range macroUsePattern.FindAllStringSubmatch(body, -1) {
		delete(defined, m[1])
	}

	for name := range defined {
		pat := regexp.MustCompile(
			`\\(newcommand|renewcommand|def|DeclareMathOperator)\s*\{\\` +
				regexp.QuoteMeta(name) + `\}.*`)
		tex = pat.ReplaceAllString(tex, "")
	}
	return tex
}

func normalizeWhitespace(tex string) string {
	tex = blankRunPattern.ReplaceAllString(tex, "\n\n")
	tex = trailingWSPattern.ReplaceAllString(tex, "\n")
	return strings.TrimSpace(tex) + "\n"
}
