// internal/store/store_test.go
package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoscribe/internal/action"
	"autoscribe/internal/errdefs"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "scripts.db"), dir)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleScript(id, name string) *action.Script {
	return &action.Script{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now(),
		Actions: []action.Action{
			{Kind: action.KindPointerClick, X: 10, Y: 20, CapturedAt: 5},
			{Kind: action.KindTextEntry, Target: "field:user", Text: "alice", CapturedAt: 911},
		},
	}
}

func TestWriteScriptAndLoad(t *testing.T) {
	s := newTestStore(t)

	path, err := s.WriteScript(sampleScript("id-1", "login flow"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".json"))

	// The artifact is inspectable text.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind": "pointer-click"`)

	loaded, err := s.LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, "login flow", loaded.Name)
	require.Len(t, loaded.Actions, 2)
}

func TestListAndGet(t *testing.T) {
	s := newTestStore(t)
	_, err := s.WriteScript(sampleScript("id-1", "first"))
	require.NoError(t, err)
	_, err = s.WriteScript(sampleScript("id-2", "second"))
	require.NoError(t, err)

	infos, err := s.List()
	require.NoError(t, err)
	assert.Len(t, infos, 2)

	info, err := s.Get("id-2")
	require.NoError(t, err)
	assert.Equal(t, "second", info.Name)
	assert.Equal(t, 2, info.ActionCount)

	_, err = s.Get("nope")
	require.Error(t, err)
	assert.True(t, errdefs.IsCode(err, errdefs.CodeFileNotFound))
}

func TestLoadScriptMissingFile(t *testing.T) {
	s := newTestStore(t)
	_, err := s.LoadScript(filepath.Join(s.recordingsDir, "ghost.json"))
	require.Error(t, err)
	assert.True(t, errdefs.IsCode(err, errdefs.CodeFileNotFound))
}

func TestDeleteRemovesRowAndFile(t *testing.T) {
	s := newTestStore(t)
	path, err := s.WriteScript(sampleScript("id-1", "gone"))
	require.NoError(t, err)

	require.NoError(t, s.Delete("id-1"))

	_, err = s.Get("id-1")
	assert.True(t, errdefs.IsCode(err, errdefs.CodeFileNotFound))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRename(t *testing.T) {
	s := newTestStore(t)
	_, err := s.WriteScript(sampleScript("id-1", "old name"))
	require.NoError(t, err)

	require.NoError(t, s.Rename("id-1", "new name"))
	info, err := s.Get("id-1")
	require.NoError(t, err)
	assert.Equal(t, "new name", info.Name)

	assert.Error(t, s.Rename("id-1", "   "))
	err = s.Rename("missing", "x")
	assert.True(t, errdefs.IsCode(err, errdefs.CodeFileNotFound))
}

func TestArchiveAndRestoreRoundTrip(t *testing.T) {
	s := newTestStore(t)
	plainPath, err := s.WriteScript(sampleScript("id-1", "cold storage"))
	require.NoError(t, err)

	require.NoError(t, s.Archive("id-1"))

	info, err := s.Get("id-1")
	require.NoError(t, err)
	assert.True(t, info.Archived)
	assert.True(t, strings.HasSuffix(info.Path, ".zst"))
	_, err = os.Stat(plainPath)
	assert.True(t, os.IsNotExist(err), "plain artifact replaced by the archive")

	// Archived scripts remain loadable for replay.
	sc, err := s.LoadByID("id-1")
	require.NoError(t, err)
	assert.Len(t, sc.Actions, 2)

	// Archiving twice is a no-op.
	require.NoError(t, s.Archive("id-1"))

	require.NoError(t, s.Restore("id-1"))
	info, err = s.Get("id-1")
	require.NoError(t, err)
	assert.False(t, info.Archived)
	assert.Equal(t, plainPath, info.Path)

	sc, err = s.LoadByID("id-1")
	require.NoError(t, err)
	assert.Equal(t, "cold storage", sc.Name)
}

func TestSyncDirRegistersAndDrops(t *testing.T) {
	s := newTestStore(t)

	// An artifact dropped into the directory by hand.
	outOfBand := sampleScript("id-ext", "hand-edited")
	data, err := action.Encode(outOfBand)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.recordingsDir, "hand-edited.json"), data, 0600))

	// A catalog row whose file was deleted externally.
	path, err := s.WriteScript(sampleScript("id-gone", "vanished"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	// A file that is not a valid artifact.
	require.NoError(t, os.WriteFile(filepath.Join(s.recordingsDir, "junk.json"), []byte("{"), 0600))

	require.NoError(t, s.SyncDir())

	_, err = s.Get("id-ext")
	assert.NoError(t, err, "out-of-band artifact registered")
	_, err = s.Get("id-gone")
	assert.True(t, errdefs.IsCode(err, errdefs.CodeFileNotFound), "row for the missing file dropped")
}
