package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
		out = append(out, entry)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "issuer.log")

	logger, sync, err := New(Config{Name: "issuer", Path: path, Level: "debug"})
	require.NoError(t, err)
	logger.Debug("starting", zap.String("addr", "127.0.0.1:3000"))
	sync()

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, "starting", lines[0]["msg"])
	assert.Equal(t, "issuer", lines[0]["logger"])
	assert.Equal(t, "127.0.0.1:3000", lines[0]["addr"])
}

func TestNewFiltersBelowLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decode.log")

	logger, sync, err := New(Config{Name: "decode", Path: path, Level: "warn"})
	require.NoError(t, err)
	logger.Info("dropped")
	logger.Warn("kept")
	sync()

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["msg"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, err := New(Config{Path: filepath.Join(t.TempDir(), "x.log"), Level: "loud"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "logging:"))
}

func TestDefaultPath(t *testing.T) {
	p := DefaultPath("decode")
	assert.Equal(t, "decode.log", filepath.Base(p))
	assert.Equal(t, "decode", filepath.Base(filepath.Dir(p)))
}
