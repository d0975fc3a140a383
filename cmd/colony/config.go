package main

import (
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/daniacca/colony/internal/config"
)

// commandConfig is what the colony command runs with: the YAML configuration
// after flag and environment overrides, plus command-only options.
type commandConfig struct {
	ConfigFile string
	Duration   time.Duration
	Invert     bool
	DumpConfig string
	Settings   *config.Config
}

// configResolver defines how to resolve a single configuration value.
// An empty resolved value leaves the YAML setting alone.
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*commandConfig, string) error
}

func parseDuration(name string, dst *time.Duration) func(*commandConfig, string) error {
	return func(_ *commandConfig, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", name, err)
		}
		*dst = d
		return nil
	}
}

// loadCommandConfig resolves every option from args, then the environment,
// then the default, and applies the overrides on top of the YAML file.
func loadCommandConfig(args []string, getenv func(string) string) (commandConfig, error) {
	cfg := commandConfig{}

	// YAML-backed values are collected first and applied once the file is loaded
	var (
		topology, display, census, logLevel string
		interval                            time.Duration
		compress, every                     string
	)

	resolvers := []configResolver{
		{
			flagName:    "config",
			envVarName:  "COLONY_CONFIG",
			description: "optional path to a YAML config file",
			setter:      func(c *commandConfig, v string) error { c.ConfigFile = v; return nil },
		},
		{
			flagName:    "topology",
			envVarName:  "COLONY_TOPOLOGY",
			description: "grid topology: flat or torus",
			setter:      func(_ *commandConfig, v string) error { topology = v; return nil },
		},
		{
			flagName:    "display",
			envVarName:  "COLONY_DISPLAY",
			description: "display mode: text or terminal",
			setter:      func(_ *commandConfig, v string) error { display = v; return nil },
		},
		{
			flagName:    "interval",
			envVarName:  "COLONY_INTERVAL",
			description: "time between two displayed snapshots (e.g. 500ms)",
			setter:      parseDuration("interval", &interval),
		},
		{
			flagName:    "census",
			envVarName:  "COLONY_CENSUS",
			description: "path of the census CSV file; empty disables it",
			setter:      func(_ *commandConfig, v string) error { census = v; return nil },
		},
		{
			flagName:    "census-compress",
			envVarName:  "COLONY_CENSUS_COMPRESS",
			description: "zstd-compress the census file (true/false)",
			setter:      func(_ *commandConfig, v string) error { compress = v; return nil },
		},
		{
			flagName:    "census-every",
			envVarName:  "COLONY_CENSUS_EVERY",
			description: "record the census every N display ticks",
			setter:      func(_ *commandConfig, v string) error { every = v; return nil },
		},
		{
			flagName:    "duration",
			envVarName:  "COLONY_DURATION",
			defaultVal:  "0s",
			description: "stop after this long; 0 runs until interrupted",
			setter: func(c *commandConfig, v string) error {
				return parseDuration("duration", &c.Duration)(c, v)
			},
		},
		{
			flagName:    "invert",
			envVarName:  "COLONY_INVERT",
			defaultVal:  "false",
			description: "invert terminal colors",
			setter: func(c *commandConfig, v string) error {
				b, err := strconv.ParseBool(v)
				if err != nil {
					return fmt.Errorf("invalid value for invert: %w", err)
				}
				c.Invert = b
				return nil
			},
		},
		{
			flagName:    "dump-config",
			envVarName:  "COLONY_DUMP_CONFIG",
			description: "write the effective configuration to this YAML file and exit",
			setter:      func(c *commandConfig, v string) error { c.DumpConfig = v; return nil },
		},
		{
			flagName:    "log-level",
			envVarName:  "COLONY_LOG_LEVEL",
			description: "log level: debug, info, warn, error",
			setter:      func(_ *commandConfig, v string) error { logLevel = v; return nil },
		},
	}

	fs := flag.NewFlagSet("colony", flag.ContinueOnError)
	flagVars := make(map[string]*string)
	for _, resolver := range resolvers {
		flagVars[resolver.flagName] = fs.String(resolver.flagName, "", resolver.description)
	}
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	for _, resolver := range resolvers {
		var value string
		if *flagVars[resolver.flagName] != "" {
			value = *flagVars[resolver.flagName]
		} else if envValue := getenv(resolver.envVarName); envValue != "" {
			value = envValue
		} else {
			value = resolver.defaultVal
		}
		if value == "" {
			continue
		}
		if err := resolver.setter(&cfg, value); err != nil {
			return cfg, err
		}
	}

	settings, err := config.Load(cfg.ConfigFile)
	if err != nil {
		return cfg, err
	}

	if topology != "" {
		settings.World.Topology = topology
	}
	if display != "" {
		settings.Display.Mode = display
	}
	if interval != 0 {
		settings.Display.Interval = interval
	}
	if census != "" {
		settings.Census.Path = census
	}
	if compress != "" {
		b, err := strconv.ParseBool(compress)
		if err != nil {
			return cfg, fmt.Errorf("invalid value for census-compress: %w", err)
		}
		settings.Census.Compress = b
	}
	if every != "" {
		n, err := strconv.Atoi(every)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid value for census-every: %q", every)
		}
		settings.Census.Every = n
	}
	if logLevel != "" {
		settings.Log.Level = logLevel
	}

	// overrides may have broken what Load validated
	if err := settings.Validate(); err != nil {
		return cfg, err
	}
	cfg.Settings = settings
	return cfg, nil
}
