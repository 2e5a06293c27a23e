package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomicAndRead(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "state.json")

	_, err := ReadLocked(p)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	require.NoError(t, WriteAtomic(p, []byte(`{"a":1}`), 0o600))
	b, err := ReadLocked(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(b))

	fi, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	require.NoError(t, Remove(p))
	require.NoError(t, Remove(p))
	_, err = os.Stat(p)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadMissingLeavesNoTrace(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "state.json")

	_, err := ReadLocked(p)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.NoDirExists(t, filepath.Join(dir, "nested"))
	require.NoError(t, Remove(p))
	assert.NoDirExists(t, filepath.Join(dir, "nested"))

	flat := filepath.Join(dir, "state.json")
	_, err = ReadLocked(flat)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.NoFileExists(t, flat+".lock")
}

func TestWriteAtomicConcurrentWritersLeaveWholeFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "c.json")
	payloads := []string{`{"w":"aaaaaaaaaaaaaaaa"}`, `{"w":"bbbbbbbbbbbbbbbb"}`, `{"w":"cccc"}`}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = WriteAtomic(p, []byte(payloads[i%len(payloads)]), 0o644)
		}(i)
	}
	wg.Wait()

	b, err := ReadLocked(p)
	require.NoError(t, err)
	assert.Contains(t, payloads, string(b))

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(p), "*.tmp"))
	assert.Empty(t, matches)
}
