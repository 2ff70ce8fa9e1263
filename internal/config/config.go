// Package config reads the YAML configuration of the typegraph server.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hanpama/typegraph/internal/logging"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig   `yaml:"server"`
	Log    logging.Config `yaml:"log"`
	Otel   OtelConfig     `yaml:"otel"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	Timeout        time.Duration `yaml:"timeout"`
	Pretty         bool          `yaml:"pretty"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	CORSOrigins    []string      `yaml:"cors_origins"`
	ForwardHeaders []string      `yaml:"forward_headers"`
	GraphiQL       bool          `yaml:"graphiql"`
	Introspection  bool          `yaml:"introspection"`
}

type OtelConfig struct {
	Endpoint string `yaml:"endpoint"`
	Service  string `yaml:"service"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:          ":8080",
			Timeout:       10 * time.Second,
			MaxBodyBytes:  1 << 20,
			GraphiQL:      true,
			Introspection: true,
		},
		Log:  logging.Config{Level: "info", Format: "console"},
		Otel: OtelConfig{Service: "typegraph"},
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.Server.Addr == "" {
		return Config{}, errors.New("config: server.addr is empty")
	}
	if cfg.Server.Timeout < 0 || cfg.Server.MaxBodyBytes < 0 {
		return Config{}, errors.New("config: negative server limit")
	}
	return cfg, nil
}
