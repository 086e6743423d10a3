// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZJashi/math-conjecturer/internal/httputil"
)

// eprintBase is the arXiv source archive endpoint. Declared as a var so
// tests can substitute an httptest server.
var eprintBase = "https://arxiv.org/e-print/"

// maxSourceBytes caps how much e-print data is read. arXiv sources are
// rarely more than a few megabytes.
const maxSourceBytes = 256 << 20

// fetchSource downloads the e-print for id and unpacks it into destDir.
// The payload is either a gzipped tarball or, for older single-file
// submissions, a bare (possibly gzipped) TeX file.
func fetchSource(ctx context.Context, client *http.Client, id, destDir string, opts Options) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, eprintBase+id, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", opts.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, opts.MaxRetries)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
	if err != nil {
		return fmt.Errorf("reading e-print: %w", err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}
	if err := unpack(data, id, destDir); err != nil {
		os.RemoveAll(destDir)
		return err
	}
	return nil
}

func unpack(data []byte, id, destDir string) error {
	if isGzip(data) {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close()

		inner, err := io.ReadAll(io.LimitReader(gz, maxSourceBytes))
		if err != nil {
			return fmt.Errorf("decompressing e-print: %w", err)
		}
		if isTar(inner) {
			return extractTar(inner, destDir)
		}
		// Single gzipped TeX file.
		return os.WriteFile(filepath.Join(destDir, id+".tex"), inner, 0o644)
	}
	if isTar(data) {
		return extractTar(data, destDir)
	}
	return os.WriteFile(filepath.Join(destDir, id+".tex"), data, 0o644)
}

func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

func isTar(data []byte) bool {
	// ustar magic at offset 257.
	return len(data) > 262 && bytes.Equal(data[257:262], []byte("ustar"))
}

func extractTar(data []byte, destDir string) error {
	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar: %w", err)
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
			}
			out, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			_, copyErr := io.Copy(out, io.LimitReader(tr, maxSourceBytes))
			closeErr := out.Close()
			if copyErr != nil {
				return fmt.Errorf("writing %s: %w", target, copyErr)
			}
			if closeErr != nil {
				return fmt.Errorf("closing %s: %w", target, closeErr)
			}
		}
	}
}

// safeJoin rejects entries that would escape destDir.
func safeJoin(destDir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("tar entry with absolute path: %q", name)
	}
	target := filepath.Join(destDir, name)
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("tar entry escapes destination: %q", name)
	}
	return target, nil
}
