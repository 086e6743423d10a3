// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	documentClassPattern = regexp.MustCompile(`(?m)^\s*\\documentclass`)
	inputPattern         = regexp.MustCompile(`\\(?:input|include)\*?\{([^}]+)\}`)
	bibliographyPattern  = regexp.MustCompile(`\\bibliography\{[^}]+\}`)
)

// FindMainTex locates the TeX file containing \documentclass. With several
// candidates the largest wins; multi-file papers keep the preamble in the
// root document.
func FindMainTex(dir string) (string, error) {
	var best string
	var bestSize int64

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".tex") {
			return err
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		if !documentClassPattern.Match(data) {
			return nil
		}
		if info, infoErr := d.Info(); infoErr == nil && info.Size() > bestSize {
			best = path
			bestSize = info.Size()
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if best == "" {
		return "", fmt.Errorf("no TeX file with \\documentclass under %s", dir)
	}
	return best, nil
}

// FindBBLs returns every compiled bibliography file under dir.
func FindBBLs(dir string) []string {
	var bbls []string
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() && strings.HasSuffix(path, ".bbl") {
			bbls = append(bbls, path)
		}
		return nil
	})
	return bbls
}

// InlineInputs reads texPath and recursively replaces \input and \include
// directives with the referenced file contents. Missing files become a TeX
// comment instead of an error; cycles are cut with a skip marker.
func InlineInputs(texPath string, seen map[string]bool) (string, error) {
	if seen == nil {
		seen = make(map[string]bool)
	}
	abs, err := filepath.Abs(texPath)
	if err != nil {
		return "", err
	}
	if seen[abs] {
		return fmt.Sprintf("%% Skipped recursive include: %s\n", filepath.Base(abs)), nil
	}
	seen[abs] = true

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", texPath, err)
	}

	text := string(data)
	var sb strings.Builder
	last := 0
	for _, loc := range inputPattern.FindAllStringSubmatchIndex(text, -1) {
		sb.WriteString(text[last:loc[0]])
		last = loc[1]

		name := text[loc[2]:loc[3]]
		if !strings.HasSuffix(name, ".tex") {
			name += ".tex"
		}
		child := filepath.Join(filepath.Dir(abs), name)
		if _, statErr := os.Stat(child); statErr != nil {
			fmt.Fprintf(&sb, "%% Missing file: %s\n", name)
			continue
		}
		inlined, childErr := InlineInputs(child, seen)
		if childErr != nil {
			return "", childErr
		}
		sb.WriteString(inlined)
	}
	sb.WriteString(text[last:])
	return sb.String(), nil
}

// SubstituteBBL replaces the \bibliography directive with the contents of
// the largest .bbl file, the one the final compile actually used. Without
// bbl files or without the directive the text passes through unchanged.
func SubstituteBBL(tex string, bbls []string) string {
	if len(bbls) == 0 || !bibliographyPattern.MatchString(tex) {
		return tex
	}

	var best string
	var bestSize int64
	for _, path := range bbls {
		if info, err := os.Stat(path); err == nil && info.Size() >= bestSize {
			best = path
			bestSize = info.Size()
		}
	}
	data, err := os.ReadFile(best)
	if err != nil {
		return tex
	}
	content := string(data)
	return bibliographyPattern.ReplaceAllStringFunc(tex, func(string) string {
		return content
	})
}
