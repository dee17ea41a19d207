// Command coordinator runs a complete waterfall simulation: it builds the
// in-process cluster (§5), spawns one goroutine per simulator rank plus
// the rank-0 coordinator, drives the command and export loops, and
// persists the resulting frames.
//
// The retrieved corpus has no MPI binding (comm's doc comment explains
// why ranks are goroutines instead of OS processes), so a standalone
// cmd/simulator binary cannot usefully talk to this one over a network
// transport yet; this binary is the practical entry point for a run.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"waterfall/archive"
	"waterfall/command"
	"waterfall/comm"
	"waterfall/config"
	"waterfall/coordinator"
	"waterfall/exchange"
	"waterfall/particle"
	"waterfall/render"
	"waterfall/sph"
	"waterfall/vector"
)

type runFlags struct {
	configPath  string
	simulators  int
	timesteps   int
	dt          float64
	sinkHeight  float64
	maxVelocity float64
	sources     []string
	outDir      string
	seed        int64
}

func main() {
	var flags runFlags

	root := &cobra.Command{
		Use:   "coordinator",
		Short: "runs a waterfall SPH simulation to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to a YAML run configuration (overrides the flags below when set)")
	pf.IntVar(&flags.simulators, "simulators", 1, "number of simulator ranks")
	pf.IntVar(&flags.timesteps, "timesteps", 100, "number of timesteps to run")
	pf.Float64Var(&flags.dt, "dt", 0.01, "integration timestep")
	pf.Float64Var(&flags.sinkHeight, "sink-height", -10.0, "y coordinate below which fluid particles are removed")
	pf.Float64Var(&flags.maxVelocity, "max-velocity", 50.0, "velocity clamp magnitude")
	pf.StringArrayVar(&flags.sources, "source", nil, "source position as \"x,y,z\" (repeatable)")
	pf.StringVar(&flags.outDir, "out", "./out", "directory for VTK frames and the archive")
	pf.Int64Var(&flags.seed, "seed", 1, "RNG seed for source spawning jitter")

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Fatal("coordinator run failed")
	}
}

func run(ctx context.Context, flags runFlags) error {
	cfg, numSimulators, err := resolveConfig(flags)
	if err != nil {
		return errors.Wrap(err, "resolving configuration")
	}

	if err := os.MkdirAll(flags.outDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating output directory %q", flags.outDir)
	}
	cluster := comm.NewCluster(numSimulators)
	coord := coordinator.New(cluster, nil)
	backend := newFileBackend(flags.outDir, coord.RunID)
	coord.Backend = backend

	var wg sync.WaitGroup
	simErrs := make([]error, numSimulators)
	for rank := 0; rank < numSimulators; rank++ {
		rank := rank
		wg.Add(1)
		go func() {
			defer wg.Done()
			simErrs[rank] = runSimulator(ctx, cluster, cfg, rank, flags.seed+int64(rank))
		}()
	}

	mailbox := make(chan command.Command, 1)
	mailbox <- command.Command{Code: command.Simulate, Line: "simulate"}
	close(mailbox)

	var coordErr, exportErr error
	var frames []archive.Frame
	coordWg := sync.WaitGroup{}
	coordWg.Add(2)
	go func() {
		defer coordWg.Done()
		coordErr = coord.RunCommandLoop(ctx, mailbox)
	}()
	go func() {
		defer coordWg.Done()
		frames, exportErr = coord.ReceiveExports(ctx, numSimulators, cfg.NumberOfTimesteps)
	}()
	coordWg.Wait()
	wg.Wait()

	for rank, err := range simErrs {
		if err != nil {
			return errors.Wrapf(err, "simulator %d", rank)
		}
	}
	if coordErr != nil {
		return errors.Wrap(coordErr, "command loop")
	}
	if exportErr != nil {
		return errors.Wrap(exportErr, "export loop")
	}

	if err := backend.PersistArchive(filepath.Join(flags.outDir, "run.archive"), frames); err != nil {
		return errors.Wrap(err, "persisting archive")
	}
	logrus.WithField("frames", len(frames)).Info("run complete")
	return nil
}

func resolveConfig(flags runFlags) (sph.Config, int, error) {
	if flags.configPath != "" {
		rc, err := config.Load(flags.configPath)
		if err != nil {
			return sph.Config{}, 0, err
		}
		return rc.SphConfig(), rc.NumSimulators, nil
	}

	cfg := sph.DefaultConfig()
	cfg.NumberOfTimesteps = flags.timesteps
	cfg.Dt = flags.dt
	cfg.SinkHeight = flags.sinkHeight
	cfg.MaxVelocity = flags.maxVelocity
	for _, s := range flags.sources {
		v, err := parseVector3(s)
		if err != nil {
			return sph.Config{}, 0, errors.Wrapf(err, "parsing --source %q", s)
		}
		cfg.Sources = append(cfg.Sources, v)
	}
	if flags.simulators < 1 {
		return sph.Config{}, 0, errors.Errorf("--simulators must be >= 1, got %d", flags.simulators)
	}
	return cfg, flags.simulators, nil
}

func parseVector3(s string) (vector.Vector3, error) {
	var x, y, z float64
	if _, err := fmt.Sscanf(s, "%g,%g,%g", &x, &y, &z); err != nil {
		return vector.Vector3{}, errors.Wrap(err, "expected \"x,y,z\"")
	}
	return vector.Vector3{X: x, Y: y, Z: z}, nil
}

func runSimulator(ctx context.Context, cluster *comm.Cluster, cfg sph.Config, rank int, seed int64) error {
	worldRank := comm.SimulatorWorldRank(rank)
	if _, err := command.Receive(ctx, cluster, worldRank); err != nil {
		return errors.Wrap(err, "receiving simulate command")
	}

	router := exchange.NewRouter(cluster, rank)
	seedInitialParticles(router, cfg, rank)

	mgr, err := sph.NewManager(cfg, router, cluster, seed)
	if err != nil {
		return errors.Wrap(err, "constructing manager")
	}
	return mgr.Simulate(ctx)
}

// seedInitialParticles places each configured source as an immediate
// fluid particle on rank 0, standing in for the LOAD_MESH/GENERATE
// command pair the external console would otherwise drive (§6); mesh
// parsing itself remains the out-of-scope collaborator.
func seedInitialParticles(router *exchange.Router, cfg sph.Config, rank int) {
	if rank != 0 {
		return
	}
	for _, s := range cfg.Sources {
		router.AddParticles([]particle.Particle{particle.New(particle.Fluid, s, vector.Zero)})
	}
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

var _ render.Backend = (*fileBackend)(nil)
