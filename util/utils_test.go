package util_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wkalt/mohair/util"
)

func TestHumanBytes(t *testing.T) {
	cases := []struct {
		assertion string
		input     uint64
		expected  string
	}{
		{"0 bytes", 0, "0 B"},
		{"1 byte", 1, "1 B"},
		{"50 bytes", 50, "50 B"},
		{"1 kilobyte", 1024, "1 KB"},
		{"truncates", 1536, "1 KB"},
		{"1 megabyte", 1024 * 1024, "1 MB"},
		{"1 gigabyte", 1024 * 1024 * 1024, "1 GB"},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			assert.Equal(t, c.expected, util.HumanBytes(c.input))
		})
	}
}

func TestEnsureDirectoryExists(t *testing.T) {
	tmp := t.TempDir()
	t.Run("creates nested directories", func(t *testing.T) {
		dir := filepath.Join(tmp, "resources", "data")
		require.NoError(t, util.EnsureDirectoryExists(dir))
		info, err := os.Stat(dir)
		require.NoError(t, err)
		require.True(t, info.IsDir())
	})
	t.Run("existing directory is fine", func(t *testing.T) {
		require.NoError(t, util.EnsureDirectoryExists(tmp))
	})
	t.Run("file in the way", func(t *testing.T) {
		path := filepath.Join(tmp, "file")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0600))
		require.Error(t, util.EnsureDirectoryExists(path))
	})
}
