package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/vast-sim/sps-sim/sim/experiment"
	"github.com/vast-sim/sps-sim/sim/trace"
)

// Preset describes a campaign preset in defaults.yaml.
type Preset struct {
	Mode     string  `yaml:"mode"`
	Runs     int     `yaml:"runs"`
	MinNodes int     `yaml:"min_nodes"`
	MaxNodes int     `yaml:"max_nodes"`
	Width    float64 `yaml:"width"`
	Density  float64 `yaml:"density"`
}

// SimulationDefaults are the per-run settings shared by every preset.
type SimulationDefaults struct {
	Channel          string  `yaml:"channel"`
	RenderDistance   int     `yaml:"render_distance"`
	BlockSize        int     `yaml:"block_size"`
	Step             float64 `yaml:"step"`
	DirectPacketSize int     `yaml:"direct_packet_size"`
	Partitioner      string  `yaml:"partitioner"`
	TraceLevel       string  `yaml:"trace_level"`
}

// Config represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Version    string             `yaml:"version"`
	Simulation SimulationDefaults `yaml:"simulation"`
	Presets    map[string]Preset  `yaml:"presets"`
}

// parseDefaultsConfig parses defaults.yaml content with strict field checking
// so typos are errors rather than silently ignored.
func parseDefaultsConfig(data []byte) (Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing defaults YAML: %w", err)
	}
	return cfg, nil
}

// loadDefaultsConfig parses defaults.yaml into a Config struct.
func loadDefaultsConfig(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Fatalf("Failed to read defaults file %s: %v", path, err)
	}
	cfg, err := parseDefaultsConfig(data)
	if err != nil {
		logrus.Fatalf("Failed to parse defaults YAML: %v", err)
	}
	return cfg
}

// Preset returns the named campaign preset.
func (c Config) Preset(name string) (Preset, error) {
	p, ok := c.Presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q", name)
	}
	return p, nil
}

// Apply overrides cfg with every field set in the defaults.
func (s SimulationDefaults) Apply(cfg *experiment.Config) {
	if s.Channel != "" {
		cfg.Channel = s.Channel
	}
	if s.RenderDistance > 0 {
		cfg.RenderDistance = s.RenderDistance
	}
	if s.BlockSize > 0 {
		cfg.BlockSize = s.BlockSize
	}
	if s.Step > 0 {
		cfg.Step = s.Step
	}
	if s.DirectPacketSize > 0 {
		cfg.DirectPacketSize = s.DirectPacketSize
	}
	if s.Partitioner != "" {
		cfg.Partitioner = experiment.Partitioner(s.Partitioner)
	}
	if s.TraceLevel != "" {
		cfg.TraceLevel = trace.TraceLevel(s.TraceLevel)
	}
}

// Campaign builds the experiment campaign of the preset.
func (p Preset) Campaign(resultsDir string, base experiment.Config) experiment.Campaign {
	return experiment.Campaign{
		Mode:       experiment.Mode(p.Mode),
		Runs:       p.Runs,
		MinNodes:   p.MinNodes,
		MaxNodes:   p.MaxNodes,
		Width:      p.Width,
		Density:    p.Density,
		ResultsDir: resultsDir,
		Base:       base,
	}
}
