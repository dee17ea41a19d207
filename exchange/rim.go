package exchange

import (
	"context"

	"github.com/pkg/errors"

	"waterfall/comm"
	"waterfall/particle"
	"waterfall/wire"
)

// rimTriple is one (target_cell, source_cell, particle_count) entry,
// §4.6's unit of accounting between a (peer, kind) pair.
type rimTriple struct {
	targetCell, sourceCell, count int
}

// ExchangeRim implements the three-phase rim halo protocol of §4.6 for
// one particle kind. Rim caches for kind are cleared at the start, both
// the bypass-installed and network-received entries repopulate them from
// scratch.
func (r *Router) ExchangeRim(ctx context.Context, kind particle.Kind) error {
	for _, d := range r.Domains {
		d.ClearRim(&kind)
	}

	size := r.Cluster.NSimulators
	peerTriples := make([][]rimTriple, size)
	peerPayload := make([][]particle.Particle, size)

	for _, d := range r.Domains {
		targetMap := d.RimTargetMap(kind)
		for targetCell, ps := range targetMap {
			owner := r.Owner(targetCell)
			if owner == r.Rank {
				r.domainFor(targetCell).AddRim(d.ID, ps, kind)
				continue
			}
			peerTriples[owner] = append(peerTriples[owner], rimTriple{targetCell, d.ID, len(ps)})
			peerPayload[owner] = append(peerPayload[owner], ps...)
		}
	}

	// Phase 1: META-META — total (target,source) pair count per peer.
	metaMetaPending := make([]*comm.Pending, size)
	for peer := 0; peer < size; peer++ {
		if peer == r.Rank {
			continue
		}
		metaMetaPending[peer] = r.Cluster.Simulators.IRecv(ctx, peer, r.Rank, comm.TagMetaMetaRim)
	}
	for peer := 0; peer < size; peer++ {
		if peer == r.Rank {
			continue
		}
		n := len(peerTriples[peer])
		if err := r.Cluster.Simulators.Send(ctx, r.Rank, peer, comm.TagMetaMetaRim, comm.Message{Ints: []int{n}}); err != nil {
			return errors.Wrapf(err, "rim(%s) meta-meta send to peer %d", kind, peer)
		}
	}
	incomingTripleCount := make([]int, size)
	for peer := 0; peer < size; peer++ {
		if peer == r.Rank {
			continue
		}
		msg, err := recvPending(ctx, metaMetaPending[peer])
		if err != nil {
			return errors.Wrapf(err, "rim(%s) meta-meta recv from peer %d", kind, peer)
		}
		if len(msg.Ints) != 1 {
			return errors.Errorf("rim(%s) meta-meta size mismatch from peer %d", kind, peer)
		}
		incomingTripleCount[peer] = msg.Ints[0]
	}

	// Phase 2: META — flat (target,source,count) triples.
	metaPending := make([]*comm.Pending, size)
	for peer := 0; peer < size; peer++ {
		if peer == r.Rank || incomingTripleCount[peer] == 0 {
			continue
		}
		metaPending[peer] = r.Cluster.Simulators.IRecv(ctx, peer, r.Rank, comm.TagMetaRim)
	}
	for peer := 0; peer < size; peer++ {
		if peer == r.Rank || len(peerTriples[peer]) == 0 {
			continue
		}
		ints := make([]int, 0, 3*len(peerTriples[peer]))
		for _, t := range peerTriples[peer] {
			ints = append(ints, t.targetCell, t.sourceCell, t.count)
		}
		if err := r.Cluster.Simulators.Send(ctx, r.Rank, peer, comm.TagMetaRim, comm.Message{Ints: ints}); err != nil {
			return errors.Wrapf(err, "rim(%s) meta send to peer %d", kind, peer)
		}
	}
	incomingTriples := make([][]rimTriple, size)
	for peer := 0; peer < size; peer++ {
		if peer == r.Rank || incomingTripleCount[peer] == 0 {
			continue
		}
		msg, err := recvPending(ctx, metaPending[peer])
		if err != nil {
			return errors.Wrapf(err, "rim(%s) meta recv from peer %d", kind, peer)
		}
		if len(msg.Ints) != 3*incomingTripleCount[peer] {
			return errors.Errorf("rim(%s) meta size mismatch from peer %d: meta-meta said %d triples, got %d ints", kind, peer, incomingTripleCount[peer], len(msg.Ints))
		}
		triples := make([]rimTriple, incomingTripleCount[peer])
		for i := range triples {
			triples[i] = rimTriple{msg.Ints[3*i], msg.Ints[3*i+1], msg.Ints[3*i+2]}
		}
		incomingTriples[peer] = triples
	}

	r.Cluster.SimulatorsBarrier.Wait()

	// Phase 3: DATA — concatenated particle payload, same order as the
	// META triples for that (peer, kind) pair.
	dataPending := make([]*comm.Pending, size)
	for peer := 0; peer < size; peer++ {
		if peer == r.Rank || len(incomingTriples[peer]) == 0 {
			continue
		}
		dataPending[peer] = r.Cluster.Simulators.IRecv(ctx, peer, r.Rank, comm.TagRim)
	}
	for peer := 0; peer < size; peer++ {
		if peer == r.Rank || len(peerPayload[peer]) == 0 {
			continue
		}
		if err := r.Cluster.Simulators.Send(ctx, r.Rank, peer, comm.TagRim, comm.Message{Bytes: wire.EncodeAll(peerPayload[peer])}); err != nil {
			return errors.Wrapf(err, "rim(%s) data send to peer %d", kind, peer)
		}
	}

	for peer := 0; peer < size; peer++ {
		if peer == r.Rank || len(incomingTriples[peer]) == 0 {
			continue
		}
		msg, err := recvPending(ctx, dataPending[peer])
		if err != nil {
			return errors.Wrapf(err, "rim(%s) data recv from peer %d", kind, peer)
		}
		ps, err := wire.DecodeAll(msg.Bytes)
		if err != nil {
			return errors.Wrapf(err, "rim(%s) decoding payload from peer %d", kind, peer)
		}
		wantTotal := 0
		for _, t := range incomingTriples[peer] {
			wantTotal += t.count
		}
		if len(ps) != wantTotal {
			return errors.Errorf("rim(%s) payload size mismatch from peer %d: meta said %d particles, got %d", kind, peer, wantTotal, len(ps))
		}
		offset := 0
		for _, t := range incomingTriples[peer] {
			slice := ps[offset : offset+t.count]
			offset += t.count
			r.domainFor(t.targetCell).AddRim(t.sourceCell, slice, kind)
		}
	}

	r.Cluster.SimulatorsBarrier.Wait()
	return nil
}
