package sph

import (
	"context"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"waterfall/comm"
	"waterfall/exchange"
	"waterfall/particle"
	"waterfall/phys"
	"waterfall/wire"
)

// Manager is SphManager: the integrator and per-step orchestrator (§4.4).
// It owns no domains itself — those live in the Router — and holds only
// the run configuration, the communication context, and its private RNG
// for source spawning.
type Manager struct {
	Config  Config
	Router  *exchange.Router
	Cluster *comm.Cluster

	rng *rand.Rand
	log *logrus.Entry
}

// NewManager constructs a Manager for one simulator process. It asserts
// the R_MAX <= L/2 precondition from Design Notes §9; with
// phys.DomainDimension fixed at 2*phys.RMax this always holds, but the
// assertion documents the invariant NeighbourSearch depends on.
func NewManager(cfg Config, router *exchange.Router, cluster *comm.Cluster, seed int64) (*Manager, error) {
	if phys.RMax > phys.DomainDimension/2+1e-9 {
		return nil, errors.Errorf("precondition violated: R_MAX (%g) must be <= domain dimension/2 (%g)", phys.RMax, phys.DomainDimension/2)
	}
	return &Manager{
		Config:  cfg,
		Router:  router,
		Cluster: cluster,
		rng:     rand.New(rand.NewSource(seed)),
		log:     logrus.WithField("simulator_rank", router.Rank),
	}, nil
}

// Simulate runs the full control flow from §4.4/§2 on a simulator
// process: place the initial input, exchange the (immobile) static rim
// once, then for every timestep exchange the fluid rim, integrate,
// spawn sources, migrate, and export to the coordinator.
func (m *Manager) Simulate(ctx context.Context) error {
	if err := m.Router.ExchangeParticles(ctx, m.Config.SinkHeight); err != nil {
		return errors.Wrap(err, "initial exchange_particles")
	}
	if err := m.Router.ExchangeRim(ctx, particle.Static); err != nil {
		return errors.Wrap(err, "initial static rim exchange")
	}
	if err := m.Router.ExchangeRim(ctx, particle.Shutter); err != nil {
		return errors.Wrap(err, "initial shutter rim exchange")
	}

	for t := 1; t <= m.Config.NumberOfTimesteps; t++ {
		if err := m.Router.ExchangeRim(ctx, particle.Fluid); err != nil {
			return errors.Wrapf(err, "step %d: fluid rim exchange", t)
		}

		m.update()
		m.spawnSources()

		if err := m.Router.ExchangeParticles(ctx, m.Config.SinkHeight); err != nil {
			return errors.Wrapf(err, "step %d: exchange_particles", t)
		}

		if err := m.export(ctx); err != nil {
			return errors.Wrapf(err, "step %d: export", t)
		}
	}
	return nil
}

// export implements §6's export channel: send the fluid particle count,
// then (if non-zero) the payload, to the coordinator over the world
// communicator, and cross the world barrier to synchronize with the
// coordinator's export receive loop (§5).
func (m *Manager) export(ctx context.Context) error {
	var fluid []particle.Particle
	for _, d := range m.Router.Domains {
		for _, p := range d.Particles() {
			if p.Kind == particle.Fluid {
				fluid = append(fluid, p)
			}
		}
	}

	self := comm.SimulatorWorldRank(m.Router.Rank)
	if err := m.Cluster.World.Send(ctx, self, comm.CoordinatorWorldRank, comm.TagExportParticlesNumber, comm.Message{Ints: []int{len(fluid)}}); err != nil {
		return errors.Wrap(err, "export count")
	}
	if len(fluid) > 0 {
		if err := m.Cluster.World.Send(ctx, self, comm.CoordinatorWorldRank, comm.TagExport, comm.Message{Bytes: wire.EncodeAll(fluid)}); err != nil {
			return errors.Wrap(err, "export payload")
		}
	}
	m.Cluster.WorldBarrier.Wait()
	return nil
}
