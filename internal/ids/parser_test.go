package ids

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLineBasic(t *testing.T) {
	assert.Equal(t, []string{"490217825"}, ExtractLine([]byte(`"490217825": "Rust Skin Example"`)))
}

func TestExtractLineRejectsShortAndLong(t *testing.T) {
	assert.Empty(t, ExtractLine([]byte(`"12345"`)))                // 5 digits, too short
	assert.Empty(t, ExtractLine([]byte(`"1234567890123"`)))        // 13 digits, too long
	assert.Equal(t, []string{"123456"}, ExtractLine([]byte(`"123456"`))) // exactly 6
}

func TestExtractLineIgnoresNonDigitTokens(t *testing.T) {
	assert.Empty(t, ExtractLine([]byte(`"v1.2.3"`)))
	assert.Empty(t, ExtractLine([]byte(`"490217825 extra"`)))
}

func TestExtractLineMultipleIdsOrdered(t *testing.T) {
	line := []byte(`"111111": "a", "222222222": "b"`)
	assert.Equal(t, []string{"111111", "222222222"}, ExtractLine(line))
}

func TestParseFileDedupesInOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ImportedSkins.json")
	content := `{
  "490217825": "Skin A",
  "111111111": "Skin B",
  "490217825": "Skin A again"
}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	got, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"490217825", "111111111"}, got)
}

func TestParseFileSingleLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ImportedSkins.json")
	require.NoError(t, os.WriteFile(path, []byte(`"490217825": "example"`), 0644))

	got, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"490217825"}, got)
}
