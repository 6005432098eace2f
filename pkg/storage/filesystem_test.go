package storage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndOpen(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("exports/job-1.csv", []byte("code,title\n"))
	require.NoError(t, err)
	require.Equal(t, "exports/job-1.csv", name)

	file, err := store.Open(name)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	require.Equal(t, "code,title\n", string(content))
}

func TestLocalStorageSaveStream(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.SaveStream("exports/job-2.pdf", bytes.NewReader([]byte("%PDF-1.4")))
	require.NoError(t, err)

	content, err := os.ReadFile(store.Path(name))
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4", string(content))
}

func TestLocalStorageDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("exports/job-3.csv", []byte("x"))
	require.NoError(t, err)
	require.NoError(t, store.Delete(name))

	_, err = store.Open(name)
	require.Error(t, err)

	require.NoError(t, store.Delete("exports/never-existed.csv"))
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	stale, err := store.Save("exports/stale.csv", []byte("old"))
	require.NoError(t, err)
	fresh, err := store.Save("exports/fresh.csv", []byte("new"))
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, stale), past, past))

	deleted, err := store.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	require.Equal(t, []string{stale}, deleted)

	_, err = store.Open(stale)
	require.Error(t, err)
	file, err := store.Open(fresh)
	require.NoError(t, err)
	require.NoError(t, file.Close())
}
