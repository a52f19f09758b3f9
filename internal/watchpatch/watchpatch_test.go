package watchpatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `"AppWorkshop"
{
	"WorkshopItemsInstalled"
	{
	}
	"WorkshopItemDetails"
	{
	}
}
`

func TestWatcherPatchesAfterNewSubdirectoryDebounce(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "workshop.acf")
	require.NoError(t, os.WriteFile(manifestPath, []byte(sampleManifest), 0644))

	contentRoot := filepath.Join(dir, "content")
	appDir := filepath.Join(contentRoot, "252490")
	require.NoError(t, os.MkdirAll(appDir, 0755))

	w, err := New(manifestPath, contentRoot, "252490", 50*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go w.Run(ctx)

	itemDir := filepath.Join(appDir, "111111")
	require.NoError(t, os.Mkdir(itemDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(itemDir, "f.bin"), []byte("x"), 0644))

	deadline := time.Now().Add(1500 * time.Millisecond)
	var found bool
	for time.Now().Before(deadline) {
		data, _ := os.ReadFile(manifestPath)
		if len(data) > len(sampleManifest) {
			found = true
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	assert.True(t, found, "expected manifest to be patched after debounce")
}
