package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
	"github.com/starbytes-lang/starbytes/interp"
)

// DefaultFile is looked up next to the program when no config is given.
const DefaultFile = "starbytes.toml"

type Config struct {
	Runtime RuntimeConfig `toml:"runtime"`
	Modules ModulesConfig `toml:"modules"`
}

type RuntimeConfig struct {
	LogLevel string `toml:"log_level,omitempty"`
	Strict   bool   `toml:"strict"`
	MaxDepth int    `toml:"max_depth"`
	Color    bool   `toml:"color"`
}

type ModulesConfig struct {
	Paths []string `toml:"paths,omitempty"`
}

func Default() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			LogLevel: "info",
			Color:    true,
		},
	}
}

// Parse decodes a config over the defaults. Unknown keys are logged and
// otherwise ignored.
func Parse(r io.Reader) (*Config, error) {
	out := Default()
	md, err := toml.NewDecoder(r).Decode(out)
	if err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	for _, k := range md.Undecoded() {
		log.Warn().Str("key", k.String()).Msg("unknown config key")
	}
	if out.Runtime.MaxDepth < 0 {
		return nil, fmt.Errorf("runtime.max_depth must not be negative, got %d", out.Runtime.MaxDepth)
	}
	return out, nil
}

// LoadFile reads path. A missing file yields the defaults. Relative module
// paths are resolved against the config file's directory.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", path).Msg("no config file, using defaults")
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i, p := range c.Modules.Paths {
		if !filepath.IsAbs(p) {
			c.Modules.Paths[i] = filepath.Clean(filepath.Join(dir, p))
		}
	}
	return c, nil
}

// Options builds interpreter options writing program output to out.
func (c *Config) Options(out io.Writer) interp.Options {
	return interp.Options{
		Out:      out,
		Color:    c.Runtime.Color,
		MaxDepth: c.Runtime.MaxDepth,
		Strict:   c.Runtime.Strict,
	}
}
