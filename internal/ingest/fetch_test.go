// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestRunUnpacksTarball(t *testing.T) {
	payload := tarGz(t, map[string]string{
		"main.tex": `\documentclass{article}
\begin{document}
\input{body}
\end{document}
`,
		"body.tex":  "The main theorem. % draft note\n",
		"paper.bbl": `\bibitem{ref} A reference.`,
	})

	var requested string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		w.Write(payload)
	}))
	defer srv.Close()

	orig := eprintBase
	eprintBase = srv.URL + "/e-print/"
	defer func() { eprintBase = orig }()

	dir := t.TempDir()
	tex, err := Run(context.Background(), srv.Client(), "arXiv:2301.07041", Options{
		PapersDir: dir,
		UserAgent: "test-agent",
	})
	require.NoError(t, err)

	assert.Equal(t, "/e-print/2301.07041", requested)
	assert.Contains(t, tex, "The main theorem.")
	assert.NotContains(t, tex, "draft note")
	assert.NotContains(t, tex, `\input`)

	// Source files stay unpacked for inspection.
	_, err = os.Stat(filepath.Join(dir, "2301.07041", "source", "main.tex"))
	assert.NoError(t, err)
}

func TestRunSingleFileSubmission(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("\\documentclass{article}\nJust one file. % note\n"))
	}))
	defer srv.Close()

	orig := eprintBase
	eprintBase = srv.URL + "/e-print/"
	defer func() { eprintBase = orig }()

	tex, err := Run(context.Background(), srv.Client(), "1910.06709", Options{
		PapersDir: t.TempDir(),
		UserAgent: "test-agent",
	})
	require.NoError(t, err)
	assert.Contains(t, tex, "Just one file.")
}

func TestRunSkipsDownloadWhenUnpacked(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2301.07041", "source"), "main.tex",
		"\\documentclass{article}\nAlready here.\n")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("unexpected download for an unpacked paper")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	orig := eprintBase
	eprintBase = srv.URL + "/e-print/"
	defer func() { eprintBase = orig }()

	tex, err := Run(context.Background(), srv.Client(), "2301.07041", Options{
		PapersDir: dir,
		UserAgent: "test-agent",
	})
	require.NoError(t, err)
	assert.Contains(t, tex, "Already here.")
}

func TestRunRejectsBadIdentifier(t *testing.T) {
	_, err := Run(context.Background(), http.DefaultClient, "10.1145/93847", Options{
		PapersDir: t.TempDir(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized arXiv identifier")
}

func TestExtractTarRejectsEscapes(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	content := "evil"
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "../escape.tex",
		Mode:     0o644,
		Size:     int64(len(content)),
		Typeflag: tar.TypeReg,
	}))
	_, err := tw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	err = extractTar(buf.Bytes(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes destination")
}

func TestUnpackGzippedSingleFile(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte("\\documentclass{article}\nGzipped single file.\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	dir := t.TempDir()
	require.NoError(t, unpack(buf.Bytes(), "1601.00948", dir))

	data, err := os.ReadFile(filepath.Join(dir, "1601.00948.tex"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "Gzipped single file."))
}
