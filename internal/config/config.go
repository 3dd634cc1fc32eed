// Package config resolves interpreter tuning knobs from three layers,
// highest priority first: CLI flags, a .env file, then built-in
// defaults. An optional minako.yaml project file sits between the
// .env layer and the defaults, supplying the same settings for a
// checked-in project rather than a per-invocation environment.
package config

import (
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config holds every tunable the interpreter reads before running a
// program (spec §4.3, §6).
type Config struct {
	StackSize int
	Trace     bool
}

// Default returns the built-in defaults: a 1024-slot value stack and
// tracing disabled (spec §4.3).
func Default() Config {
	return Config{StackSize: 1024, Trace: false}
}

// File is the shape of an optional minako.yaml project file.
type File struct {
	StackSize *int  `yaml:"stack_size"`
	Trace     *bool `yaml:"trace"`
}

// Load resolves a Config by layering, in increasing priority:
// defaults, minako.yaml (if present at yamlPath), .env (if present at
// envPath, loaded via godotenv), then the environment variables
// MINAKO_STACK_SIZE/MINAKO_TRACE already present in the process
// environment. Flag overrides are applied by the caller afterward,
// since cobra owns flag parsing and knows which flags were explicitly
// set.
func Load(yamlPath, envPath string) (Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(yamlPath); err == nil {
		var f File
		if err := yaml.Unmarshal(data, &f); err != nil {
			return cfg, err
		}
		if f.StackSize != nil {
			cfg.StackSize = *f.StackSize
		}
		if f.Trace != nil {
			cfg.Trace = *f.Trace
		}
	}

	// godotenv.Load populates os.Environ; a missing file is not an
	// error, it just means there is nothing to layer on top.
	_ = godotenv.Load(envPath)

	if v, ok := os.LookupEnv("MINAKO_STACK_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.StackSize = n
		}
	}
	if v, ok := os.LookupEnv("MINAKO_TRACE"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Trace = b
		}
	}

	return cfg, nil
}
