// Package exchange implements the two message-passing protocols that
// keep a distributed spatial decomposition consistent each step: particle
// migration (§4.5) and the rim/halo exchange (§4.6).
package exchange

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"waterfall/comm"
	"waterfall/domain"
	"waterfall/particle"
	"waterfall/phys"
	"waterfall/vector"
	"waterfall/wire"
)

// Router owns one simulator process's domain map and drives both
// exchange protocols against it. It replaces the source's module-level
// slave_comm globals with an explicit, constructed-once context object
// (Design Notes §9).
type Router struct {
	Cluster *comm.Cluster
	Rank    int // this process's simulator-subgroup rank
	Domains map[int]*domain.Domain

	staged map[int][]particle.Particle
	log    *logrus.Entry
}

// NewRouter builds a router for simulator-subgroup rank `rank`.
func NewRouter(cluster *comm.Cluster, rank int) *Router {
	return &Router{
		Cluster: cluster,
		Rank:    rank,
		Domains: make(map[int]*domain.Domain),
		staged:  make(map[int][]particle.Particle),
		log:     logrus.WithField("simulator_rank", rank),
	}
}

// Owner returns the simulator-subgroup rank that owns cellID.
func (r *Router) Owner(cellID int) int {
	return vector.Owner(cellID, r.Cluster.NSimulators)
}

// domainFor returns (creating lazily, per §3) the local domain owning
// cellID.
func (r *Router) domainFor(cellID int) *domain.Domain {
	d, ok := r.Domains[cellID]
	if !ok {
		d = domain.New(cellID)
		r.Domains[cellID] = d
	}
	return d
}

// AddParticles routes each particle to its owning local domain, or, if
// this rank does not own the particle's cell, re-stages it for the next
// exchange round and logs a warning — the routing-bug case from §7.
func (r *Router) AddParticles(particles []particle.Particle) {
	for _, p := range particles {
		id := p.CellID(phys.DomainDimension)
		owner := r.Owner(id)
		if owner == r.Rank {
			r.domainFor(id).Add(p)
			continue
		}
		r.log.WithFields(logrus.Fields{
			"cell_id":   id,
			"owner":     owner,
			"this_rank": r.Rank,
		}).Warn("particle arrived at non-owning rank; re-staging for next exchange")
		r.stage(owner, p)
	}
}

func (r *Router) stage(targetRank int, p particle.Particle) {
	r.staged[targetRank] = append(r.staged[targetRank], p)
}

// ExchangeParticles implements §4.5: collect particles to migrate (both
// previously staged arrivals and leavers discovered by RemoveOutside),
// exchange counts, then payloads, then install arrivals locally.
func (r *Router) ExchangeParticles(ctx context.Context, sinkHeight float64) error {
	targetMap := r.staged
	r.staged = make(map[int][]particle.Particle)

	for _, d := range r.Domains {
		for _, p := range d.RemoveOutside(sinkHeight) {
			owner := r.Owner(p.CellID(phys.DomainDimension))
			targetMap[owner] = append(targetMap[owner], p)
		}
	}

	local := targetMap[r.Rank]
	delete(targetMap, r.Rank)

	received, err := exchangeBuffers(ctx, r.Cluster, r.Rank, comm.TagMetaExchange, comm.TagExchange, targetMap)
	if err != nil {
		return errors.Wrap(err, "exchange_particles")
	}

	r.Cluster.SimulatorsBarrier.Wait()

	r.AddParticles(local)
	r.AddParticles(received)
	return nil
}

// exchangeBuffers implements the count-then-payload round of
// ExchangeParticles (ExchangeRim runs its own phases): post non-blocking
// receives for every peer's META, send a META int (count) to every peer,
// then synchronously send payloads only where a count was announced, per
// the deadlock-avoidance rule in §4.5/§5.
func exchangeBuffers(ctx context.Context, cluster *comm.Cluster, rank int, metaTag, dataTag comm.Tag, targetMap map[int][]particle.Particle) ([]particle.Particle, error) {
	size := cluster.NSimulators
	pending := make([]*comm.Pending, size)
	for peer := 0; peer < size; peer++ {
		if peer == rank {
			continue
		}
		pending[peer] = cluster.Simulators.IRecv(ctx, peer, rank, metaTag)
	}

	for peer := 0; peer < size; peer++ {
		if peer == rank {
			continue
		}
		count := len(targetMap[peer])
		if err := cluster.Simulators.Send(ctx, rank, peer, metaTag, comm.Message{Ints: []int{count}}); err != nil {
			return nil, errors.Wrapf(err, "meta send to peer %d", peer)
		}
	}

	counts := make([]int, size)
	for peer := 0; peer < size; peer++ {
		if peer == rank {
			continue
		}
		msg, err := recvPending(ctx, pending[peer])
		if err != nil {
			return nil, errors.Wrapf(err, "meta recv from peer %d", peer)
		}
		if len(msg.Ints) != 1 {
			return nil, errors.Errorf("meta size mismatch from peer %d: got %d ints, want 1", peer, len(msg.Ints))
		}
		counts[peer] = msg.Ints[0]
	}

	dataPending := make([]*comm.Pending, size)
	for peer := 0; peer < size; peer++ {
		if peer == rank || counts[peer] == 0 {
			continue
		}
		dataPending[peer] = cluster.Simulators.IRecv(ctx, peer, rank, dataTag)
	}

	for peer := 0; peer < size; peer++ {
		if peer == rank {
			continue
		}
		ps := targetMap[peer]
		if len(ps) == 0 {
			continue
		}
		if err := cluster.Simulators.Send(ctx, rank, peer, dataTag, comm.Message{Bytes: wire.EncodeAll(ps)}); err != nil {
			return nil, errors.Wrapf(err, "data send to peer %d", peer)
		}
	}

	var received []particle.Particle
	for peer := 0; peer < size; peer++ {
		if peer == rank || counts[peer] == 0 {
			continue
		}
		msg, err := recvPending(ctx, dataPending[peer])
		if err != nil {
			return nil, errors.Wrapf(err, "data recv from peer %d", peer)
		}
		ps, err := wire.DecodeAll(msg.Bytes)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding payload from peer %d", peer)
		}
		if len(ps) != counts[peer] {
			return nil, errors.Errorf("payload size mismatch from peer %d: meta said %d, got %d", peer, counts[peer], len(ps))
		}
		received = append(received, ps...)
	}
	return received, nil
}

func recvPending(ctx context.Context, p *comm.Pending) (comm.Message, error) {
	select {
	case msg, ok := <-p.Done:
		if !ok {
			return comm.Message{}, ctx.Err()
		}
		return msg, nil
	case <-ctx.Done():
		return comm.Message{}, ctx.Err()
	}
}
