// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "openrouter-api-key", "  sk-or-abc123  \n")
				return dir
			},
			want: map[string]string{
				"openrouter-api-key": "sk-or-abc123",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "openrouter-api-key", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				"openrouter-api-key": "valid-key",
			},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, "openrouter-api-key", "k")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
				return dir
			},
			want: map[string]string{
				"openrouter-api-key": "k",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	t.Run("prefers file secret over env", func(t *testing.T) {
		t.Setenv("OPENROUTER_API_KEY", "env-key")
		got := Resolve(map[string]string{"openrouter-api-key": "file-key"}, "openrouter-api-key", "OPENROUTER_API_KEY")
		assert.Equal(t, "file-key", got)
	})

	t.Run("falls back to env", func(t *testing.T) {
		t.Setenv("OPENROUTER_API_KEY", " env-key\n")
		got := Resolve(map[string]string{}, "openrouter-api-key", "OPENROUTER_API_KEY")
		assert.Equal(t, "env-key", got)
	})

	t.Run("empty when neither set", func(t *testing.T) {
		t.Setenv("OPENROUTER_API_KEY", "")
		got := Resolve(map[string]string{}, "openrouter-api-key", "OPENROUTER_API_KEY")
		assert.Equal(t, "", got)
	})
}
