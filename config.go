package pushdown

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the machine-level construction configuration plus optional
// per-state policy overlays. Handlers and fault routes cannot be
// expressed in YAML and stay programmatic on the Registry; everything
// declarative (timeouts, retries, declared targets, the three machine
// sentinels) can live in a config file.
type Config struct {
	Name              string        `json:"name"              yaml:"name"`
	InitialState      string        `json:"initialState"      yaml:"initialState"`
	FinalState        string        `json:"finalState"        yaml:"finalState"`
	DefaultErrorState string        `json:"defaultErrorState" yaml:"defaultErrorState"`
	States            []StatePolicy `json:"states"            yaml:"states"`
}

// StatePolicy overlays declarative policy onto a registered descriptor.
type StatePolicy struct {
	Name          string   `json:"name"          yaml:"name"`
	Timeout       string   `json:"timeout"       yaml:"timeout"` // Go duration string, e.g. "1500ms"
	TimeoutTarget string   `json:"timeoutTarget" yaml:"timeoutTarget"`
	Retries       *int     `json:"retries"       yaml:"retries"`
	RetryTarget   string   `json:"retryTarget"   yaml:"retryTarget"`
	Targets       []string `json:"targets"       yaml:"targets"`
}

// LoadConfig loads a machine configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Intentional path-based loading
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	return LoadConfigFromBytes(data)
}

// LoadConfigFromBytes loads a machine configuration from YAML bytes.
func LoadConfigFromBytes(data []byte) (*Config, error) {
	var config Config

	err := yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigFromFS loads a configuration from an embedded filesystem.
// This is a convenience function for loading from embed.FS.
func LoadConfigFromFS(fsys fs.FS, path string) (*Config, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from FS: %w", err)
	}

	return LoadConfigFromBytes(data)
}

// Validate checks if the configuration is valid. Target existence is
// checked later, against the registry, at machine construction.
func (c *Config) Validate() error {
	if c.Name == "" {
		return ErrConfigNameRequired
	}

	if c.InitialState == "" {
		return ErrInitialStateRequired
	}

	if c.FinalState == "" {
		return ErrFinalStateRequired
	}

	if c.DefaultErrorState == "" {
		return ErrDefaultErrorStateRequired
	}

	seen := make(map[string]bool)

	for _, policy := range c.States {
		if policy.Name == "" {
			return ErrStateNameRequired
		}

		if seen[policy.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateStateName, policy.Name)
		}

		seen[policy.Name] = true

		if policy.Timeout != "" {
			if _, err := policy.timeoutBudget(); err != nil {
				return err
			}
		}

		if policy.TimeoutTarget != "" && policy.Timeout == "" {
			return WrapStateError(policy.Name, ErrTimeoutTargetWithoutDuration)
		}

		if policy.RetryTarget != "" && policy.Retries == nil {
			return WrapStateError(policy.Name, ErrRetryTargetWithoutLimit)
		}

		if policy.Retries != nil && *policy.Retries < 0 {
			return WrapStateError(policy.Name, ErrNegativeRetryLimit)
		}
	}

	return nil
}

// timeoutBudget parses the policy's timeout duration string.
func (p StatePolicy) timeoutBudget() (time.Duration, error) {
	budget, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, WrapStateError(p.Name, fmt.Errorf("%w: %q", ErrInvalidTimeout, p.Timeout))
	}

	return budget, nil
}

// apply overlays the per-state policies onto registered descriptors.
func (c *Config) apply(reg *Registry) error {
	for _, policy := range c.States {
		d, ok := reg.Lookup(policy.Name)
		if !ok {
			return WrapStateError(policy.Name, ErrStateNotFound)
		}

		if policy.Timeout != "" {
			budget, err := policy.timeoutBudget()
			if err != nil {
				return err
			}

			d.timeout = budget
			d.timeoutTarget = policy.TimeoutTarget
		}

		if policy.Retries != nil {
			d.retryLimit = *policy.Retries
			d.hasRetry = true
			d.retryTarget = policy.RetryTarget
		}

		if len(policy.Targets) > 0 {
			d.targets = append(d.targets, policy.Targets...)
		}
	}

	return nil
}
