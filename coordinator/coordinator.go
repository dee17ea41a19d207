// Package coordinator implements the rank-0 process: the command loop,
// the export receive loop, and the per-step timing log (§5, §6, §7). The
// console that produces commands, and the renderer that consumes frames
// beyond the render.Backend capability, are external collaborators.
package coordinator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"waterfall/archive"
	"waterfall/comm"
	"waterfall/command"
	"waterfall/particle"
	"waterfall/render"
	"waterfall/wire"
)

// Coordinator is the world-rank-0 process.
type Coordinator struct {
	Cluster *comm.Cluster
	Backend render.Backend
	RunID   uuid.UUID

	log *logrus.Entry
}

// New constructs a Coordinator. If backend is nil, a render.NoOp is used.
func New(cluster *comm.Cluster, backend render.Backend) *Coordinator {
	if backend == nil {
		backend = render.NoOp{}
	}
	runID := uuid.New()
	return &Coordinator{
		Cluster: cluster,
		Backend: backend,
		RunID:   runID,
		log:     logrus.WithField("run_id", runID.String()),
	}
}

// RunCommandLoop consumes commands from mailbox (populated by the
// out-of-scope interactive console's input-reader task, decoupled from
// this loop exactly as §5 describes) and broadcasts each one over the
// world communicator. It returns when mailbox is closed or an EXIT
// command is broadcast.
func (c *Coordinator) RunCommandLoop(ctx context.Context, mailbox <-chan command.Command) error {
	for {
		select {
		case cmd, ok := <-mailbox:
			if !ok {
				return nil
			}
			if err := command.Broadcast(ctx, c.Cluster, cmd); err != nil {
				return errors.Wrap(err, "broadcasting command")
			}
			if cmd.Code == command.Exit {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ReceiveExports implements the coordinator side of §6's export channel:
// for each of numTimesteps frames, consume numSimulators (count, payload?)
// pairs in rank order, cross the world barrier, and log the per-step
// wall-clock timing §7 requires.
func (c *Coordinator) ReceiveExports(ctx context.Context, numSimulators, numTimesteps int) ([]archive.Frame, error) {
	frames := make([]archive.Frame, 0, numTimesteps)
	for t := 1; t <= numTimesteps; t++ {
		start := time.Now()

		var frameParticles []particle.Particle
		for rank := 0; rank < numSimulators; rank++ {
			worldRank := comm.SimulatorWorldRank(rank)
			countMsg, err := c.Cluster.World.Recv(ctx, worldRank, comm.CoordinatorWorldRank, comm.TagExportParticlesNumber)
			if err != nil {
				return nil, errors.Wrapf(err, "step %d: export count from simulator %d", t, rank)
			}
			if len(countMsg.Ints) != 1 {
				return nil, errors.Errorf("step %d: export count malformed from simulator %d", t, rank)
			}
			count := countMsg.Ints[0]
			if count == 0 {
				continue
			}
			dataMsg, err := c.Cluster.World.Recv(ctx, worldRank, comm.CoordinatorWorldRank, comm.TagExport)
			if err != nil {
				return nil, errors.Wrapf(err, "step %d: export payload from simulator %d", t, rank)
			}
			ps, err := wire.DecodeAll(dataMsg.Bytes)
			if err != nil {
				return nil, errors.Wrapf(err, "step %d: decoding export payload from simulator %d", t, rank)
			}
			if len(ps) != count {
				return nil, errors.Errorf("step %d: simulator %d announced %d particles, sent %d", t, rank, count, len(ps))
			}
			frameParticles = append(frameParticles, ps...)
		}

		c.Cluster.WorldBarrier.Wait()

		c.log.WithFields(logrus.Fields{
			"step":        t,
			"elapsed_ms":  time.Since(start).Milliseconds(),
			"particles":   len(frameParticles),
		}).Info("timestep exported")

		frame := archive.Frame{Number: t, Particles: frameParticles}
		frames = append(frames, frame)
		if err := c.Backend.ExportFrame(t, frameParticles); err != nil {
			return nil, errors.Wrapf(err, "step %d: render backend export", t)
		}
	}
	return frames, nil
}
