package comm

// CoordinatorWorldRank is rank 0 of the world communicator, per §2: "all
// processes except rank 0 of the world, which is a coordinator".
const CoordinatorWorldRank = 0

// Cluster bundles the two communicators every process needs (§5): the
// world (coordinator + simulators), used for command broadcast and
// export, and the simulator subgroup, used for every per-step exchange.
// It is built once at startup and passed explicitly to every exchange
// routine — replacing the source's module-level slave_comm /
// slave_comm_size globals (Design Notes §9).
type Cluster struct {
	NSimulators int

	World        *Comm
	WorldBarrier *Barrier

	Simulators        *Comm
	SimulatorsBarrier *Barrier
}

// NewCluster builds the communicators for a run with nSimulators
// simulator processes plus one coordinator.
func NewCluster(nSimulators int) *Cluster {
	return &Cluster{
		NSimulators:       nSimulators,
		World:             NewComm(nSimulators + 1),
		WorldBarrier:      NewBarrier(nSimulators + 1),
		Simulators:        NewComm(nSimulators),
		SimulatorsBarrier: NewBarrier(nSimulators),
	}
}

// SimulatorWorldRank maps a simulator-subgroup rank to its world rank.
func SimulatorWorldRank(simRank int) int { return simRank + 1 }

// SimulatorSubgroupRank maps a world rank known to be a simulator back to
// its simulator-subgroup rank.
func SimulatorSubgroupRank(worldRank int) int { return worldRank - 1 }
