package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DepsPolicy controls where and whether transitive dependencies are cloned.
type DepsPolicy string

const (
	// PolicyNormal clones missing dependencies without asking.
	PolicyNormal DepsPolicy = "normal"
	// PolicyNoDeps refuses to clone any dependency.
	PolicyNoDeps DepsPolicy = "none"
	// PolicyOnlyDeps acquires dependencies but skips the build step.
	PolicyOnlyDeps DepsPolicy = "only"
	// PolicyAskDeps asks for confirmation before `update` pulls each project
	// (interactive runs only); cloning behaves as under PolicyNormal.
	PolicyAskDeps DepsPolicy = "ask"
)

// ParsePolicy validates a policy name coming from a flag or config file.
func ParsePolicy(value string) (DepsPolicy, error) {
	switch DepsPolicy(value) {
	case PolicyNormal, PolicyNoDeps, PolicyOnlyDeps, PolicyAskDeps:
		return DepsPolicy(value), nil
	case "":
		return PolicyNormal, nil
	}
	return "", fmt.Errorf("unknown deps policy %q (want normal, none, only or ask)", value)
}

// Config captures workspace-level settings plus per-run state.
type Config struct {
	NimExe          string     `yaml:"nim"`
	DepsDir         string     `yaml:"deps_dir"`
	CloneUsingHTTPS bool       `yaml:"clone_using_https"`
	NoRecipes       bool       `yaml:"norecipes"`
	DepsPolicy      DepsPolicy `yaml:"deps_policy"`

	// Interactive permits prompting on stdin. Defaults to whether stdin is a
	// terminal and is forced off by --non-interactive.
	Interactive bool `yaml:"-"`

	// ForeignDeps accumulates system-level dependencies reported by project
	// info across a run. They are surfaced verbatim at the end.
	ForeignDeps []string `yaml:"-"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		NimExe:     "nim",
		DepsPolicy: PolicyNormal,
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures fields fall back to sensible defaults when the YAML
// omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.NimExe == "" {
		c.NimExe = defaults.NimExe
	}
	if c.DepsPolicy == "" {
		c.DepsPolicy = defaults.DepsPolicy
	}
}

// AddForeignDep records a foreign dependency exactly once, preserving the
// order of first discovery.
func (c *Config) AddForeignDep(dep string) {
	for _, existing := range c.ForeignDeps {
		if existing == dep {
			return
		}
	}
	c.ForeignDeps = append(c.ForeignDeps, dep)
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}
