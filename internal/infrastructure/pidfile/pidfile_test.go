package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndRelease(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "daemon.pid")
	pf := New(path)

	// Act
	require.NoError(t, pf.Acquire())
	data, err := os.ReadFile(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d\n", os.Getpid()), string(data))
	require.NoError(t, pf.Release())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAcquire_RunningProcessBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")
	require.NoError(t, New(path).Acquire())

	err := New(path).Acquire()

	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestAcquire_ReplacesGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0644))

	assert.NoError(t, New(path).Acquire())
}

func TestKillExisting_OwnPIDOnlyReleases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")
	pf := New(path)
	require.NoError(t, pf.Acquire())

	require.NoError(t, pf.KillExisting())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
