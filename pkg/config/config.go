// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package config loads run settings for the intcode tools from YAML.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lassandro/gointcode/pkg/log"
	"github.com/lassandro/gointcode/pkg/machine"
)

type Config struct {
	// Program is resolved relative to the config file by Load.
	Program         string          `yaml:"program"`
	Inputs          []int64         `yaml:"inputs"`
	ASCII           string          `yaml:"ascii"`
	SuspendOnOutput bool            `yaml:"suspend_on_output"`
	MemoryLimit     int64           `yaml:"memory_limit"`
	Patches         map[int64]int64 `yaml:"patches"`
	LogLevel        string          `yaml:"log_level"`
	LogModules      []string        `yaml:"log_modules"`
	Breakpoints     []int64         `yaml:"breakpoints"`
}

var knownModules = map[string]bool{
	log.MachineModule:  true,
	log.PipelineModule: true,
	log.DebuggerModule: true,
	log.CLIModule:      true,
}

func Default() *Config {
	return &Config{
		LogLevel: "WARN",
		Patches:  map[int64]int64{},
	}
}

// Parse decodes a config document over the defaults. Unknown keys are
// rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	if cfg.Patches == nil {
		cfg.Patches = map[int64]int64{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if cfg.Program != "" && !filepath.IsAbs(cfg.Program) {
		cfg.Program = filepath.Join(filepath.Dir(path), cfg.Program)
	}

	return cfg, nil
}

func (cfg *Config) Validate() error {
	if cfg.MemoryLimit < 0 {
		return fmt.Errorf("config: negative memory_limit %d", cfg.MemoryLimit)
	}

	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}

	for _, module := range cfg.LogModules {
		if !knownModules[strings.TrimSpace(module)] {
			return fmt.Errorf("config: unknown log module '%s'", module)
		}
	}

	for addr := range cfg.Patches {
		if addr < 0 || (cfg.MemoryLimit > 0 && addr >= cfg.MemoryLimit) {
			return fmt.Errorf("config: patch address %d out of range", addr)
		}
	}

	for _, addr := range cfg.Breakpoints {
		if addr < 0 {
			return fmt.Errorf("config: negative breakpoint %d", addr)
		}
	}

	return nil
}

// Options returns the machine options the config describes. ASCII input
// follows the numeric inputs.
func (cfg *Config) Options() machine.Options {
	input := make([]int64, 0, len(cfg.Inputs)+len(cfg.ASCII))
	input = append(input, cfg.Inputs...)

	for i := 0; i < len(cfg.ASCII); i++ {
		input = append(input, int64(cfg.ASCII[i]))
	}

	return machine.Options{Limit: cfg.MemoryLimit, Input: input}
}

// Apply writes the configured patches into the machine's memory.
func (cfg *Config) Apply(mc *machine.Machine) error {
	for addr, value := range cfg.Patches {
		if err := mc.WriteMemory(addr, value); err != nil {
			return fmt.Errorf("config: patch %d: %w", addr, err)
		}
	}
	return nil
}
