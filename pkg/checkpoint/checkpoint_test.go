package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wbprivacy/pkg/weibo"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManagerInDir(t.TempDir(), "7654321")
	require.NoError(t, err)
	return m
}

func TestCreateAndLoad(t *testing.T) {
	m := newTestManager(t)

	created, err := m.Create("7654321", weibo.VisibilityFriendsOnly.Code())
	require.NoError(t, err)
	assert.True(t, m.Exists())

	loaded, err := m.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "7654321", loaded.UserID)
	assert.Equal(t, weibo.VisibilityFriendsOnly.Code(), loaded.VisibilityCode)
	assert.Equal(t, created.CreatedAt.Unix(), loaded.CreatedAt.Unix())
	assert.NotNil(t, loaded.ProcessedIDs)
}

func TestLoadWithoutCheckpoint(t *testing.T) {
	m := newTestManager(t)

	loaded, err := m.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
	assert.False(t, m.Exists())
}

func TestMarkProcessed(t *testing.T) {
	c := &Checkpoint{ProcessedIDs: make(map[string]bool)}

	c.MarkProcessed("1001", false)
	c.MarkProcessed("1002", true)
	c.MarkProcessed("1001", false) // duplicate is a no-op

	assert.True(t, c.IsProcessed("1001"))
	assert.True(t, c.IsProcessed("1002"))
	assert.False(t, c.IsProcessed("1003"))
	assert.Equal(t, 2, c.TotalProcessed)
	assert.Equal(t, 1, c.TotalFailed)
}

func TestSaveRoundTrip(t *testing.T) {
	m := newTestManager(t)

	c, err := m.Create("7654321", 1)
	require.NoError(t, err)

	c.TotalListed = 10
	c.MarkProcessed("1001", false)
	c.MarkProcessed("1002", true)
	require.NoError(t, m.Save(c))

	loaded, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, 10, loaded.TotalListed)
	assert.Equal(t, 2, loaded.TotalProcessed)
	assert.Equal(t, 1, loaded.TotalFailed)
	assert.True(t, loaded.IsProcessed("1001"))
	assert.True(t, loaded.IsProcessed("1002"))
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManagerInDir(dir, "7654321")
	require.NoError(t, err)

	_, err = m.Create("7654321", 0)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "checkpoints"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "7654321.checkpoint.json", entries[0].Name())
}

func TestDelete(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Create("7654321", 0)
	require.NoError(t, err)

	require.NoError(t, m.Delete())
	assert.False(t, m.Exists())

	// Deleting a missing checkpoint is not an error
	require.NoError(t, m.Delete())
}
