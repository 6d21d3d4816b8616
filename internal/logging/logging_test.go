package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		" warn ":  zerolog.WarnLevel,
		"Error":   zerolog.ErrorLevel,
		"trace":   zerolog.TraceLevel,
		"verbose": zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}

	for name, want := range tests {
		assert.Equal(t, want, ParseLevel(name), "ParseLevel(%q)", name)
	}
}

func TestNew_FiltersByLevel(t *testing.T) {
	var out bytes.Buffer
	log := New("warn", &out, nil)

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")
}

func TestNew_WritesFileWithoutColor(t *testing.T) {
	var out, file bytes.Buffer
	log := New("debug", &out, &file)

	log.Debug().Int("frame", 7).Msg("impact")

	assert.Contains(t, out.String(), "impact")
	assert.Contains(t, file.String(), "frame=7")
	assert.NotContains(t, file.String(), "\x1b[")
}

func TestOpenFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	f, err := OpenFile(dir)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	_, err = os.Stat(filepath.Join(dir, "battrack.log"))
	assert.NoError(t, err)
}
