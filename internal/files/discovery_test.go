package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestDiscovery_WalkFiles(t *testing.T) {
	base := t.TempDir()
	touch(t, filepath.Join(base, "fb_ads", "currency_bar.png"))
	touch(t, filepath.Join(base, "fb_ads", "estimated_spend_hist.png"))
	touch(t, filepath.Join(base, "tw_posts", "lang_bar.png"))
	touch(t, filepath.Join(base, "tw_posts", "readme.md"))

	got, err := NewDiscovery(base).WalkFiles(".", ".png")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"fb_ads/currency_bar.png",
		"fb_ads/estimated_spend_hist.png",
		"tw_posts/lang_bar.png",
	}, got)
}

func TestDiscovery_WalkFilesMissingRoot(t *testing.T) {
	_, err := NewDiscovery(t.TempDir()).WalkFiles("missing", ".png")
	assert.Error(t, err)
}
