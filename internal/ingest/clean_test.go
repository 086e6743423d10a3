// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"strings"
	"testing"
)

func TestRemoveComments(t *testing.T) {
	tests := []struct{ in, want string }{
		{"text % comment", "text "},
		{`50\% of cases`, `50\% of cases`},
		{"% full line\nkeep", "\nkeep"},
		{`a \% b % gone`, `a \% b `},
	}
	for _, tt := range tests {
		if got := removeComments(tt.in); got != tt.want {
			t.Errorf("removeComments(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanLaTeXStripsNoise(t *testing.T) {
	in := strings.Join([]string{
		`\documentclass{article}`,
		`\author{A. Author}`,
		`\maketitle`,
		`\centering`,
		`\Large`,
		`Let $x$ be prime. \vspace{2em} \noindent More text.`,
		`\begin{center}`,
		`A displayed claim.`,
		`\end{center}`,
		``,
		``,
		``,
		`\textcolor{red}{warning} done.`,
	}, "\n")

	got := CleanLaTeX(in)

	for _, gone := range []string{
		`\author`, `\maketitle`, `\centering`, `\Large`,
		`\vspace`, `\noindent`, `\begin{center}`, `\textcolor`,
	} {
		if strings.Contains(got, gone) {
			t.Errorf("output still contains %q:\n%s", gone, got)
		}
	}
	for _, kept := range []string{
		`\documentclass{article}`,
		`Let $x$ be prime.`,
		`A displayed claim.`,
		`done.`,
	} {
		if !strings.Contains(got, kept) {
			t.Errorf("output lost %q:\n%s", kept, got)
		}
	}
	if strings.Contains(got, "\n\n\n") {
		t.Error("blank runs not collapsed")
	}
}

func TestRemoveUnusedMacros(t *testing.T) {
	in := `\newcommand{\used}{U}
\newcommand{\unused}{X}
Body with \used here.
`
	got := removeUnusedMacros(in)
	if strings.Contains(got, `\newcommand{\unused}`) {
		t.Errorf("unused macro definition kept:\n%s", got)
	}
	if !strings.Contains(got, `\newcommand{\used}`) {
		t.Errorf("used macro definition dropped:\n%s", got)
	}
}

func TestCleanLaTeXPreservesMath(t *testing.T) {
	in := `\begin{theorem}
For all $n > 2$, $x^n + y^n = z^n$ has no integer solutions.
\end{theorem}
\begin{equation}
\sum_{k=1}^{\infty} \frac{1}{k^2} = \frac{\pi^2}{6}
\end{equation}
`
	got := CleanLaTeX(in)
	for _, kept := range []string{
		`\begin{theorem}`, `x^n + y^n = z^n`, `\sum_{k=1}^{\infty}`, `\frac{\pi^2}{6}`,
	} {
		if !strings.Contains(got, kept) {
			t.Errorf("math content lost %q:\n%s", kept, got)
		}
	}
}
