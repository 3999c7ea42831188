package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/timewinder-dev/linebasic/device"
)

type Config struct {
	Program ProgramConfig `toml:"program" yaml:"program"`
	Run     RunConfig     `toml:"run" yaml:"run"`
}

type ProgramConfig struct {
	File string `toml:"file,omitempty" yaml:"file,omitempty"`
}

type RunConfig struct {
	// Seed fixes the RND sequence. Unset picks one from the clock.
	Seed        *int64 `toml:"seed,omitempty" yaml:"seed,omitempty"`
	ZoneWidth   int    `toml:"zone_width,omitempty" yaml:"zone_width,omitempty"`
	FilesDir    string `toml:"files_dir,omitempty" yaml:"files_dir,omitempty"`
	Input       string `toml:"input,omitempty" yaml:"input,omitempty"`
	DetectLoops bool   `toml:"detect_loops,omitempty" yaml:"detect_loops,omitempty"`
	// LoopMemory bounds the states the loop detector keeps; 0 keeps all.
	LoopMemory  int    `toml:"loop_memory,omitempty" yaml:"loop_memory,omitempty"`
	Stats       bool   `toml:"stats,omitempty" yaml:"stats,omitempty"`
	Snapshot    string `toml:"snapshot,omitempty" yaml:"snapshot,omitempty"`
}

const DefaultLoopMemory = 4096

func DefaultConfig() *Config {
	return &Config{
		Run: RunConfig{
			ZoneWidth:  device.DefaultZoneWidth,
			LoopMemory: DefaultLoopMemory,
		},
	}
}

func parseTOML(r io.Reader) (*Config, error) {
	out := DefaultConfig()
	_, err := toml.NewDecoder(r).Decode(out)
	return out, err
}

func parseYAML(r io.Reader) (*Config, error) {
	out := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && err != io.EOF {
		return nil, err
	}
	return out, nil
}

// LoadConfigFromFile reads a .toml, .yaml or .yml run configuration.
// An empty program file defaults to the config's own name with a .bas
// extension. Relative paths resolve against the config's directory.
func LoadConfigFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	var c *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		c, err = parseTOML(f)
	case ".yaml", ".yml":
		c, err = parseYAML(f)
	default:
		return nil, fmt.Errorf("Unknown config format: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if c.Program.File == "" {
		parts := strings.Split(fi.Name(), ".")
		parts = parts[:len(parts)-1]
		parts = append(parts, "bas")
		c.Program.File = strings.Join(parts, ".")
	}
	dir := filepath.Dir(path)
	c.Program.File = resolve(dir, c.Program.File)
	c.Run.Input = resolve(dir, c.Run.Input)
	c.Run.FilesDir = resolve(dir, c.Run.FilesDir)
	c.Run.Snapshot = resolve(dir, c.Run.Snapshot)
	return c, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(dir, p))
}

// Load accepts either a run configuration or a .bas program, which
// runs with the defaults.
func Load(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".yaml", ".yml":
		return LoadConfigFromFile(path)
	}
	c := DefaultConfig()
	c.Program.File = path
	return c, nil
}
