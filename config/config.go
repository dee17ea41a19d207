// Package config loads a run's configuration from a YAML file —
// the domain-stack addition to the ambient stack this module carries
// regardless of the spec's feature Non-goals (SPEC_FULL.md §4). The
// spec's external collaborators (mesh parsing, the console) still own
// their own configuration; this package only owns the simulation run's
// own numeric/physical parameters.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"waterfall/sph"
	"waterfall/vector"
)

// RunConfig is the on-disk shape of a run's configuration file.
type RunConfig struct {
	NumSimulators     int        `yaml:"num_simulators"`
	NumberOfTimesteps int        `yaml:"timesteps"`
	Dt                float64    `yaml:"dt"`
	SinkHeight        float64    `yaml:"sink_height"`
	MaxVelocity       float64    `yaml:"max_velocity"`
	Sources           [][3]float64 `yaml:"sources"`

	// MeshPath names the static-boundary mesh file. Parsing it is the
	// out-of-scope mesh loader (§1); this field only lets the config
	// round-trip the path so an external loader can find it.
	MeshPath string `yaml:"mesh_path,omitempty"`
}

// Load reads and validates a RunConfig from path.
func Load(path string) (RunConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, errors.Wrapf(err, "reading config %q", path)
	}
	var cfg RunConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RunConfig{}, errors.Wrapf(err, "parsing config %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

// Validate reports the configuration errors §7 asks to be surfaced
// before a run starts.
func (c RunConfig) Validate() error {
	if c.NumSimulators < 1 {
		return errors.Errorf("num_simulators must be >= 1, got %d", c.NumSimulators)
	}
	if c.NumberOfTimesteps < 0 {
		return errors.Errorf("timesteps must be >= 0, got %d", c.NumberOfTimesteps)
	}
	if c.Dt <= 0 {
		return errors.Errorf("dt must be > 0, got %g", c.Dt)
	}
	if c.MaxVelocity <= 0 {
		return errors.Errorf("max_velocity must be > 0, got %g", c.MaxVelocity)
	}
	return nil
}

// SphConfig converts the on-disk configuration into sph.Config, with
// gravity fixed to the §4.4 default.
func (c RunConfig) SphConfig() sph.Config {
	cfg := sph.DefaultConfig()
	cfg.NumberOfTimesteps = c.NumberOfTimesteps
	cfg.Dt = c.Dt
	cfg.SinkHeight = c.SinkHeight
	cfg.MaxVelocity = c.MaxVelocity
	cfg.Sources = make([]vector.Vector3, len(c.Sources))
	for i, s := range c.Sources {
		cfg.Sources[i] = vector.Vector3{X: s[0], Y: s[1], Z: s[2]}
	}
	return cfg
}
