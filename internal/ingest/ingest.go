// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest turns an arXiv identifier into a single cleaned LaTeX
// document. It downloads the e-print archive, locates the main TeX file,
// inlines inputs and the compiled bibliography, and strips the layout and
// metadata noise that only wastes model context.
package ingest

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const sourceDir = "source"

// arxivPattern matches arXiv IDs: "2301.07041", "arXiv:2301.07041", "2301.07041v2".
var arxivPattern = regexp.MustCompile(`^(?:arXiv:)?(\d{4}\.\d{4,5}(?:v\d+)?)$`)

// NormalizeArxivID strips the optional "arXiv:" prefix and validates the
// identifier format.
func NormalizeArxivID(identifier string) (string, error) {
	m := arxivPattern.FindStringSubmatch(strings.TrimSpace(identifier))
	if m == nil {
		return "", fmt.Errorf("unrecognized arXiv identifier: %q", identifier)
	}
	return m[1], nil
}

// Options configures a paper ingestion.
type Options struct {
	PapersDir  string
	UserAgent  string
	MaxRetries int
}

// Run downloads and prepares one paper, returning the cleaned TeX. Source
// files are unpacked under <papersDir>/<id>/source and left in place for
// inspection. A paper already unpacked is not downloaded again.
func Run(ctx context.Context, client *http.Client, identifier string, opts Options) (string, error) {
	id, err := NormalizeArxivID(identifier)
	if err != nil {
		return "", err
	}

	workDir := filepath.Join(opts.PapersDir, id, sourceDir)
	if _, statErr := os.Stat(workDir); os.IsNotExist(statErr) {
		if err := fetchSource(ctx, client, id, workDir, opts); err != nil {
			return "", fmt.Errorf("fetching %s: %w", id, err)
		}
	}

	mainTex, err := FindMainTex(workDir)
	if err != nil {
		return "", fmt.Errorf("locating main TeX for %s: %w", id, err)
	}

	tex, err := InlineInputs(mainTex, nil)
	if err != nil {
		return "", fmt.Errorf("inlining inputs for %s: %w", id, err)
	}

	tex = SubstituteBBL(tex, FindBBLs(workDir))
	return CleanLaTeX(tex), nil
}
