// Package config loads the server's YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/planetoid/internal/core/observability/log"
	"github.com/zeusync/planetoid/internal/core/sim"
	"github.com/zeusync/planetoid/internal/server"
)

// Config is the whole server configuration.
type Config struct {
	Server     server.Config `yaml:"server"`
	Simulation Simulation    `yaml:"simulation"`
	Log        log.Config    `yaml:"log"`
}

// Simulation configures the frame loop and every new session.
type Simulation struct {
	Manager sim.ManagerConfig `yaml:"manager"`
	Session sim.Config        `yaml:"session"`
}

func Default() Config {
	return Config{
		Server: server.DefaultConfig(),
		Simulation: Simulation{
			Manager: sim.DefaultManagerConfig(),
			Session: sim.DefaultConfig(),
		},
		Log: log.DefaultConfig(),
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document over the defaults. Unknown keys are errors.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Simulation.Manager.Validate(); err != nil {
		return err
	}
	if err := c.Simulation.Session.Validate(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
