package safe

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCloser struct{}

func (failingCloser) Close() error { return errors.New("already closed") }

func TestClose_NilCloser(t *testing.T) {
	assert.NotPanics(t, func() {
		Close(nil, zerolog.Nop(), "close")
	})
}

func TestClose_LogsError(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := zerolog.New(buf)

	Close(failingCloser{}, logger, "failed to close output")

	assert.Contains(t, buf.String(), "failed to close output")
	assert.Contains(t, buf.String(), "already closed")
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scratch.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	buf := new(bytes.Buffer)
	Remove(path, zerolog.New(buf))

	assert.NoFileExists(t, path)
	assert.Empty(t, buf.String())
}

func TestRemove_MissingFileIsSilent(t *testing.T) {
	buf := new(bytes.Buffer)
	Remove(filepath.Join(t.TempDir(), "never-existed"), zerolog.New(buf))
	assert.Empty(t, buf.String())
}
