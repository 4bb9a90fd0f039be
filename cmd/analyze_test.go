package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadHandles(t *testing.T) {
	handles, err := readHandles(strings.NewReader("# campaign\n@coffeeguy\n\n  tiktok:bakerbee  \n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"@coffeeguy", "tiktok:bakerbee"}, handles)
}

func TestBatchHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creators.txt")
	require.NoError(t, os.WriteFile(path, []byte("coffeeguy\n"), 0o644))

	handles, err := batchHandles(path, []string{"bakerbee"})
	require.NoError(t, err)
	assert.Equal(t, []string{"coffeeguy", "bakerbee"}, handles)

	handles, err = batchHandles("", []string{"bakerbee"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bakerbee"}, handles)

	_, err = batchHandles("", nil)
	assert.ErrorContains(t, err, "no creator handles")

	_, err = batchHandles(filepath.Join(t.TempDir(), "missing.txt"), nil)
	assert.Error(t, err)
}
