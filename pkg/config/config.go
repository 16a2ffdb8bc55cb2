// Packshim
// Copyright (c) 2026 The Packshim Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Packshim.
//
// Packshim is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Packshim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Packshim.  If not, see <http://www.gnu.org/licenses/>.

// Package config holds the launch profiles for a packaged application. The
// config file is a read-only description of what to run: one or more
// application profiles plus an optional monitor process.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/packshim/packshim/pkg/helpers/syncutil"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	CfgEnv        = "PACKSHIM_CFG"
	AppEnv        = "PACKSHIM_APP"
	RootEnv       = "PACKSHIM_ROOT"
)

// ErrAppNotFound is returned when no application profile matches the
// requested id.
var ErrAppNotFound = errors.New("no matching application profile in config")

type Values struct {
	Monitor      *Monitor `toml:"monitor,omitempty"`
	Applications []App    `toml:"applications,omitempty" validate:"dive"`
	ConfigSchema int      `toml:"config_schema"`
	DebugLogging bool     `toml:"debug_logging"`
}

// App describes a primary process to launch. Executable and WorkingDirectory
// are relative to the package root, never to the launcher's own working
// directory.
type App struct {
	ID               string `toml:"id"`
	Executable       string `toml:"executable" validate:"required"`
	WorkingDirectory string `toml:"working_directory,omitempty"`
	Arguments        string `toml:"arguments,omitempty"`
}

// Monitor describes an optional secondary process started strictly before
// the primary application.
type Monitor struct {
	Executable string `toml:"executable" validate:"required"`
	Arguments  string `toml:"arguments,omitempty"`
	AsAdmin    bool   `toml:"asadmin"`
	Wait       bool   `toml:"wait"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
}

type Instance struct {
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

var validate = validator.New(validator.WithRequiredStructEnabled())

//nolint:gocritic // config struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		mu:       syncutil.RWMutex{},
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top.
	// This ensures fields not present in the file retain their default values.
	newVals := c.defaults
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return errors.New("schema version mismatch")
	}

	if err := validate.Struct(&newVals); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c.vals = newVals

	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	// set current schema version
	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(c.cfgPath, data, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LookupApp returns a copy of the application profile matching id. An empty
// id resolves to the sole profile when exactly one is configured.
func (c *Instance) LookupApp(id string) (App, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if id == "" && len(c.vals.Applications) == 1 {
		return c.vals.Applications[0], nil
	}

	for i := range c.vals.Applications {
		if c.vals.Applications[i].ID == id {
			return c.vals.Applications[i], nil
		}
	}

	return App{}, fmt.Errorf("%w: %q", ErrAppNotFound, id)
}

// Monitor returns a copy of the monitor profile, or nil when no monitor is
// configured.
func (c *Instance) Monitor() *Monitor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.vals.Monitor == nil {
		return nil
	}

	mon := *c.vals.Monitor
	return &mon
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
}
