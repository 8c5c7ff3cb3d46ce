package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(`
[runtime]
log_level = "debug"
strict = true
max_depth = 64

[modules]
paths = ["ext/json.so"]
`))
	require.NoError(t, err)
	require.Equal(t, "debug", c.Runtime.LogLevel)
	require.True(t, c.Runtime.Strict)
	require.Equal(t, 64, c.Runtime.MaxDepth)
	require.True(t, c.Runtime.Color, "unset keys keep their defaults")
	require.Equal(t, []string{"ext/json.so"}, c.Modules.Paths)

	opts := c.Options(nil)
	require.True(t, opts.Strict)
	require.Equal(t, 64, opts.MaxDepth)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[runtime\n"},
		{"wrong type", "[runtime]\nmax_depth = \"deep\"\n"},
		{"negative depth", "[runtime]\nmax_depth = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.body))
			require.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	c, err := LoadFile(filepath.Join(dir, DefaultFile))
	require.NoError(t, err)
	require.Equal(t, Default(), c)

	path := filepath.Join(dir, DefaultFile)
	body := "[runtime]\ncolor = false\nextra = 1\n[modules]\npaths = [\"ext/a.so\", \"/abs/b.so\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	c, err = LoadFile(path)
	require.NoError(t, err)
	require.False(t, c.Runtime.Color)
	require.Equal(t, []string{filepath.Join(dir, "ext", "a.so"), "/abs/b.so"}, c.Modules.Paths)
}
