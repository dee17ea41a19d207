// Command simulator runs the single-rank case: one simulator process and
// its rank-0 coordinator in one binary. It is the minimal harness for
// exercising the sph/exchange/comm stack without a multi-rank cluster;
// cmd/coordinator is the general N-simulator entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"waterfall/archive"
	"waterfall/comm"
	"waterfall/config"
	"waterfall/coordinator"
	"waterfall/exchange"
	"waterfall/particle"
	"waterfall/sph"
	"waterfall/vector"
)

type flags struct {
	configPath  string
	timesteps   int
	dt          float64
	sinkHeight  float64
	maxVelocity float64
	sources     []string
	outDir      string
	seed        int64
}

func main() {
	var f flags

	root := &cobra.Command{
		Use:   "simulator",
		Short: "runs a single-rank waterfall simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "path to a YAML run configuration (overrides the flags below when set)")
	pf.IntVar(&f.timesteps, "timesteps", 100, "number of timesteps to run")
	pf.Float64Var(&f.dt, "dt", 0.01, "integration timestep")
	pf.Float64Var(&f.sinkHeight, "sink-height", -10.0, "y coordinate below which fluid particles are removed")
	pf.Float64Var(&f.maxVelocity, "max-velocity", 50.0, "velocity clamp magnitude")
	pf.StringArrayVar(&f.sources, "source", nil, "source position as \"x,y,z\" (repeatable)")
	pf.StringVar(&f.outDir, "out", "./out", "directory for VTK frames and the archive")
	pf.Int64Var(&f.seed, "seed", 1, "RNG seed for source spawning jitter")

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Fatal("simulator run failed")
	}
}

func run(ctx context.Context, f flags) error {
	cfg, err := resolveConfig(f)
	if err != nil {
		return errors.Wrap(err, "resolving configuration")
	}
	if err := os.MkdirAll(f.outDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating output directory %q", f.outDir)
	}

	cluster := comm.NewCluster(1)
	coord := coordinator.New(cluster, nil)
	backend := newFileBackend(f.outDir, coord.RunID)
	coord.Backend = backend

	router := exchange.NewRouter(cluster, 0)
	for _, s := range cfg.Sources {
		router.AddParticles([]particle.Particle{particle.New(particle.Fluid, s, vector.Zero)})
	}

	mgr, err := sph.NewManager(cfg, router, cluster, f.seed)
	if err != nil {
		return errors.Wrap(err, "constructing manager")
	}

	simErrCh := make(chan error, 1)
	go func() { simErrCh <- mgr.Simulate(ctx) }()

	frames, err := coord.ReceiveExports(ctx, 1, cfg.NumberOfTimesteps)
	if err != nil {
		return errors.Wrap(err, "export loop")
	}
	if err := <-simErrCh; err != nil {
		return errors.Wrap(err, "simulate")
	}

	if err := backend.PersistArchive(filepath.Join(f.outDir, "run.archive"), frames); err != nil {
		return errors.Wrap(err, "persisting archive")
	}
	logrus.WithField("frames", len(frames)).Info("run complete")
	return nil
}

func resolveConfig(f flags) (sph.Config, error) {
	if f.configPath != "" {
		rc, err := config.Load(f.configPath)
		if err != nil {
			return sph.Config{}, err
		}
		return rc.SphConfig(), nil
	}
	cfg := sph.DefaultConfig()
	cfg.NumberOfTimesteps = f.timesteps
	cfg.Dt = f.dt
	cfg.SinkHeight = f.sinkHeight
	cfg.MaxVelocity = f.maxVelocity
	for _, s := range f.sources {
		var x, y, z float64
		if _, err := fmt.Sscanf(s, "%g,%g,%g", &x, &y, &z); err != nil {
			return sph.Config{}, errors.Wrapf(err, "parsing --source %q", s)
		}
		cfg.Sources = append(cfg.Sources, vector.Vector3{X: x, Y: y, Z: z})
	}
	return cfg, nil
}

type fileBackend struct {
	dir   string
	runID uuid.UUID
}

func newFileBackend(dir string, runID uuid.UUID) *fileBackend {
	return &fileBackend{dir: dir, runID: runID}
}

func (b *fileBackend) ExportFrame(frame int, particles []particle.Particle) error {
	path := filepath.Join(b.dir, fmt.Sprintf("frame_%05d.vtk", frame))
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %q", path)
	}
	defer f.Close()
	return archive.WriteVTK(f, particles, true)
}

func (b *fileBackend) WriteVTK(path string, particles []particle.Particle) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %q", path)
	}
	defer f.Close()
	return archive.WriteVTK(f, particles, true)
}

func (b *fileBackend) PersistArchive(path string, frames []archive.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %q", path)
	}
	defer f.Close()
	return archive.WriteArchive(f, b.runID, frames)
}
