// Package config loads colony configuration from YAML, layered over embedded
// defaults.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/daniacca/colony/internal/colony"
)

//go:embed defaults.yaml
var defaultsYAML []byte

const (
	DisplayText     = "text"
	DisplayTerminal = "terminal"
)

// Config holds every colony setting.
type Config struct {
	World   WorldConfig     `yaml:"world"`
	Species []SpeciesConfig `yaml:"species"`
	Display DisplayConfig   `yaml:"display"`
	Census  CensusConfig    `yaml:"census"`
	Server  ServerConfig    `yaml:"server"`
	Log     LogConfig       `yaml:"log"`
}

// WorldConfig selects the grid topology.
type WorldConfig struct {
	Topology string `yaml:"topology"`
}

// SpeciesConfig is one row of the trait table.
type SpeciesConfig struct {
	ID          int           `yaml:"id"`
	Name        string        `yaml:"name"`
	Fitness     float64       `yaml:"fitness"`
	MaxLifespan time.Duration `yaml:"max_lifespan"`
	Tag         string        `yaml:"tag"`
}

// DisplayConfig controls the render loop of the colony command.
type DisplayConfig struct {
	Mode     string        `yaml:"mode"`
	Interval time.Duration `yaml:"interval"`
}

// CensusConfig controls population recording.
type CensusConfig struct {
	Path     string `yaml:"path"`
	Compress bool   `yaml:"compress"`
	Every    int    `yaml:"every"`
}

// ServerConfig controls the observer server.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	StreamInterval time.Duration `yaml:"stream_interval"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.World.Topology = strings.ToLower(strings.TrimSpace(c.World.Topology))
	c.Display.Mode = strings.ToLower(strings.TrimSpace(c.Display.Mode))
	if c.Census.Every <= 0 {
		c.Census.Every = 1
	}
}

// Validate normalizes enum-like fields and reports every problem with the
// configuration at once.
func (c *Config) Validate() error {
	c.normalize()
	verr := &colony.ValidationError{}

	if _, err := colony.ParseTopology(c.World.Topology); err != nil {
		verr.Add(fmt.Sprintf("world.topology: %v", err))
	}

	if len(c.Species) != 2 {
		verr.Add(fmt.Sprintf("species: exactly 2 species are required, got %d", len(c.Species)))
	}
	for _, s := range c.Species {
		if id := colony.SpeciesID(s.ID); id != colony.Species1 && id != colony.Species2 {
			verr.Add(fmt.Sprintf("species: id must be %d or %d, got %d", colony.Species1, colony.Species2, s.ID))
		}
	}
	if _, err := c.TraitTable(); err != nil {
		var inner *colony.ValidationError
		if errors.As(err, &inner) {
			for _, issue := range inner.Issues {
				verr.Add("species: " + issue)
			}
		} else {
			verr.Add(fmt.Sprintf("species: %v", err))
		}
	}

	switch c.Display.Mode {
	case DisplayText, DisplayTerminal:
	default:
		verr.Add(fmt.Sprintf("display.mode: must be %q or %q, got %q", DisplayText, DisplayTerminal, c.Display.Mode))
	}
	if c.Display.Interval <= 0 {
		verr.Add("display.interval: must be positive")
	}
	if c.Server.StreamInterval <= 0 {
		verr.Add("server.stream_interval: must be positive")
	}

	if verr.HasIssues() {
		return verr
	}
	return nil
}

// Topology returns the configured grid topology.
func (c *Config) Topology() (colony.Topology, error) {
	return colony.ParseTopology(c.World.Topology)
}

// TraitTable builds the species trait table.
func (c *Config) TraitTable() (*colony.TraitTable, error) {
	species := make([]colony.Species, 0, len(c.Species))
	for _, s := range c.Species {
		species = append(species, colony.Species{
			ID:          colony.SpeciesID(s.ID),
			Name:        s.Name,
			Fitness:     s.Fitness,
			MaxLifespan: s.MaxLifespan,
			Tag:         s.Tag,
		})
	}
	return colony.NewTraitTable(species...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
