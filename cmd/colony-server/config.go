package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/daniacca/colony/internal/config"
)

// ServerConfig holds the server configuration
type ServerConfig struct {
	ConfigFile     string
	Addr           string
	DefaultWorld   string
	StreamInterval time.Duration
	LogLevel       string

	// Settings is the YAML configuration the overrides were applied to
	Settings *config.Config
}

// configResolver defines how to resolve a single configuration value
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerConfig, string) error
}

// loadServerConfig loads server configuration from CLI flags and environment
// variables over the YAML file. Empty values keep the YAML setting.
func loadServerConfig(args []string, getenv func(string) string) (ServerConfig, error) {
	cfg := ServerConfig{}

	resolvers := []configResolver{
		{
			flagName:    "config",
			envVarName:  "COLONY_CONFIG",
			description: "optional path to a YAML config file",
			setter:      func(c *ServerConfig, v string) error { c.ConfigFile = v; return nil },
		},
		{
			flagName:    "addr",
			envVarName:  "COLONY_ADDR",
			description: "HTTP listen address (e.g. :8080, 0.0.0.0:8080)",
			setter:      func(c *ServerConfig, v string) error { c.Addr = v; return nil },
		},
		{
			flagName:    "world",
			envVarName:  "COLONY_WORLD",
			defaultVal:  "default",
			description: "ID of the world seeded at startup; \"none\" starts empty",
			setter:      func(c *ServerConfig, v string) error { c.DefaultWorld = v; return nil },
		},
		{
			flagName:    "stream-interval",
			envVarName:  "COLONY_STREAM_INTERVAL",
			description: "time between two streamed snapshots (e.g. 500ms)",
			setter: func(c *ServerConfig, v string) error {
				d, err := time.ParseDuration(v)
				if err != nil || d <= 0 {
					return fmt.Errorf("invalid value for stream-interval: %q", v)
				}
				c.StreamInterval = d
				return nil
			},
		},
		{
			flagName:    "log-level",
			envVarName:  "COLONY_LOG_LEVEL",
			description: "Log level: debug, info, warn, error",
			setter:      func(c *ServerConfig, v string) error { c.LogLevel = v; return nil },
		},
	}

	fs := flag.NewFlagSet("colony-server", flag.ContinueOnError)
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
	cfg.Settings = settings

	if cfg.Addr == "" {
		cfg.Addr = settings.Server.Addr
	}
	if cfg.StreamInterval == 0 {
		cfg.StreamInterval = settings.Server.StreamInterval
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = settings.Log.Level
	}
	if cfg.DefaultWorld == "none" {
		cfg.DefaultWorld = ""
	}
	return cfg, nil
}

func mustLoadServerConfig() ServerConfig {
	cfg, err := loadServerConfig(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "colony-server: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
