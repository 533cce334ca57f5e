package engine

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkDirCreatesDirectory(t *testing.T) {
	dir, err := newWorkDir([]string{"kore-rpc", "--haskell-backend-command", "kore-rpc"})
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewWorkDirNamesAreUnique(t *testing.T) {
	dir1, err := newWorkDir([]string{"kore-rpc"})
	require.NoError(t, err)
	defer os.RemoveAll(dir1)

	dir2, err := newWorkDir([]string{"kore-rpc"})
	require.NoError(t, err)
	defer os.RemoveAll(dir2)

	assert.NotEqual(t, dir1, dir2)
}
