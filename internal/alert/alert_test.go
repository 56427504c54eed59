package alert

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBellSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewBellSink(&buf)

	require.NoError(t, s.Play())
	require.NoError(t, s.Play())
	assert.Equal(t, "\a\a", buf.String())
}

func TestCommandSink(t *testing.T) {
	t.Run("Missing binary", func(t *testing.T) {
		s := NewCommandSink(nil, filepath.Join(t.TempDir(), "no-such-player"))
		assert.Error(t, s.Play())
	})

	t.Run("Starts without waiting", func(t *testing.T) {
		sh, err := os.Stat("/bin/sh")
		if err != nil || sh.IsDir() {
			t.Skip("no /bin/sh")
		}
		s := NewCommandSink(nil, "/bin/sh", "-c", "exit 0")
		assert.NoError(t, s.Play())
	})
}

func TestProbeSoundErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ProbeSound(filepath.Join(dir, "missing.mp3"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	junk := filepath.Join(dir, "junk.mp3")
	require.NoError(t, os.WriteFile(junk, []byte("definitely not mpeg audio"), 0644))
	_, err = ProbeSound(junk)
	assert.Error(t, err)
}

func TestNewFallsBackToBell(t *testing.T) {
	dir := t.TempDir()

	_, ok := New("", "", nil).(*BellSink)
	assert.True(t, ok, "no sound configured")

	_, ok = New(filepath.Join(dir, "ping.mp3"), "", nil).(*BellSink)
	assert.True(t, ok, "missing sound file")

	junk := filepath.Join(dir, "junk.mp3")
	require.NoError(t, os.WriteFile(junk, []byte{0, 1, 2, 3}, 0644))
	_, ok = New(junk, "", nil).(*BellSink)
	assert.True(t, ok, "undecodable sound file")
}
