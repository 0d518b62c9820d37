// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the configuration shared by the call graph CLI and
// HTTP server.
//
// Values are resolved with priority env > file > defaults and validated
// with go-playground/validator tags after merging.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ceclin/SootUp/services/analysis/storage/badger"
	"github.com/ceclin/SootUp/services/analysis/telemetry"
)

// MaxConfigFileBytes bounds the size of a config file.
const MaxConfigFileBytes = 1 << 20

// ErrConfigTooLarge is returned for config files above MaxConfigFileBytes.
var ErrConfigTooLarge = errors.New("config file too large")

var validate = validator.New()

// Config is the root configuration document.
type Config struct {
	Graph     GraphConfig      `yaml:"graph"`
	Storage   badger.Config    `yaml:"storage"`
	Telemetry telemetry.Config `yaml:"telemetry"`
	Server    ServerConfig     `yaml:"server"`
}

// GraphConfig controls call graph construction.
type GraphConfig struct {
	// ParallelEdges keeps one edge per recorded call instead of collapsing
	// repeated calls between the same pair of methods.
	ParallelEdges bool `yaml:"parallel_edges"`

	// ScopePackages restricts views to classes in these packages.
	ScopePackages []string `yaml:"scope_packages" validate:"dive,required"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr" validate:"required"`

	// ReadTimeout bounds reading a request.
	ReadTimeout time.Duration `yaml:"read_timeout" validate:"gte=0"`

	// WriteTimeout bounds writing a response.
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gte=0"`

	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64 `yaml:"max_body_bytes" validate:"gt=0"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	storage := badger.DefaultConfig()
	storage.Path = "./data/callgraphs"
	return Config{
		Storage:   storage,
		Telemetry: telemetry.DefaultConfig(),
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			MaxBodyBytes: 16 << 20,
		},
	}
}

// Load reads the configuration with priority env > file > defaults.
//
// Inputs:
//
//	path - YAML file to read. Empty or missing means defaults only.
//
// Outputs:
//
//	Config - Merged and validated configuration.
//	error - Non-nil if the file is unreadable, malformed or invalid.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Parse decodes a YAML document over the defaults and validates the result.
// Environment overrides are not applied.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := decode(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks all validator tags.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

func loadFile(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Size() > MaxConfigFileBytes {
		return fmt.Errorf("%w: %s is %d bytes", ErrConfigTooLarge, path, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return decode(data, cfg)
}

func decode(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SOOTUP_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("SOOTUP_STORAGE_IN_MEMORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Storage.InMemory = b
		}
	}
	if v := os.Getenv("SOOTUP_PARALLEL_EDGES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Graph.ParallelEdges = b
		}
	}
	if v := os.Getenv("SOOTUP_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SOOTUP_LOG_LEVEL"); v != "" {
		cfg.Telemetry.LogLevel = v
	}
	if v := os.Getenv("SOOTUP_LOG_FORMAT"); v != "" {
		cfg.Telemetry.LogFormat = v
	}
}
