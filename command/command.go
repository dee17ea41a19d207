// Package command implements the command channel external interface
// (§6): the coordinator broadcasts a parsed console command over the
// world communicator and every simulator reconstructs and dispatches it.
// Parsing the console input itself is the out-of-scope interactive
// console (§1); this package only owns the wire codec and the command
// code vocabulary.
package command

import (
	"context"

	"waterfall/comm"
)

// Code enumerates the command vocabulary from §6.
type Code int

const None Code = -1

const (
	Exit Code = iota
	LoadMesh
	LoadShutter
	GenerateParticles
	MoveShutter
	Simulate
	Render
	AddSource
	AddSink
)

// Param is one length-prefixed name/value pair.
type Param struct {
	Name  string
	Value string
}

// Command is the reconstructed form of a broadcast console command.
type Command struct {
	Code    Code
	Line    string
	Name    string
	Params  []Param
}

// tagCommand is this package's own mailbox tag. It is not one of the
// seven tags §6 requires to stay distinct from each other, but it must
// not collide with them either; comm.Tag values are scoped per (from,
// to) pair so reusing the numeric range is safe as long as the constant
// itself is unambiguous within this package.
const tagCommand comm.Tag = 100

// Broadcast sends cmd from the coordinator to every simulator in rank
// order, synchronously, mirroring an MPI_Bcast built from point-to-point
// sends (§6).
func Broadcast(ctx context.Context, cluster *comm.Cluster, cmd Command) error {
	msg := encode(cmd)
	for sim := 0; sim < cluster.NSimulators; sim++ {
		to := comm.SimulatorWorldRank(sim)
		if err := cluster.World.Send(ctx, comm.CoordinatorWorldRank, to, tagCommand, msg); err != nil {
			return err
		}
	}
	return nil
}

// Receive blocks until the coordinator broadcasts a command to this
// simulator (identified by its world rank).
func Receive(ctx context.Context, cluster *comm.Cluster, simulatorWorldRank int) (Command, error) {
	msg, err := cluster.World.Recv(ctx, comm.CoordinatorWorldRank, simulatorWorldRank, tagCommand)
	if err != nil {
		return Command{}, err
	}
	return decode(msg), nil
}

// encode lays a Command out as: int code; length-prefixed line; length-
// prefixed name; int param count; per param, length-prefixed name then
// value. The int header alone cannot carry string bytes, so the encoded
// form keeps the strings in the message's Bytes blob, length-prefixed in
// the same order the header describes.
func encode(cmd Command) comm.Message {
	ints := []int{int(cmd.Code), len(cmd.Params)}
	// The int header alone cannot carry string bytes; Message stores the
	// companion strings in Bytes as a simple length-prefixed blob so the
	// whole command still crosses the mailbox as one envelope, matching
	// the single broadcast message implied by §6.
	return comm.Message{Ints: ints, Bytes: packStrings(cmd)}
}

func decode(msg comm.Message) Command {
	var cmd Command
	if len(msg.Ints) >= 1 {
		cmd.Code = Code(msg.Ints[0])
	}
	unpackStrings(msg.Bytes, &cmd)
	return cmd
}

func packStrings(cmd Command) []byte {
	var out []byte
	out = appendLP(out, cmd.Line)
	out = appendLP(out, cmd.Name)
	for _, p := range cmd.Params {
		out = appendLP(out, p.Name)
		out = appendLP(out, p.Value)
	}
	return out
}

func unpackStrings(b []byte, cmd *Command) {
	pos := 0
	cmd.Line, pos = readLP(b, pos)
	cmd.Name, pos = readLP(b, pos)
	for pos < len(b) {
		var name, value string
		name, pos = readLP(b, pos)
		value, pos = readLP(b, pos)
		cmd.Params = append(cmd.Params, Param{Name: name, Value: value})
	}
}

func appendLP(b []byte, s string) []byte {
	n := len(s)
	b = append(b, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	return append(b, s...)
}

func readLP(b []byte, pos int) (string, int) {
	if pos+4 > len(b) {
		return "", pos
	}
	n := int(b[pos]) | int(b[pos+1])<<8 | int(b[pos+2])<<16 | int(b[pos+3])<<24
	pos += 4
	if pos+n > len(b) {
		return "", pos
	}
	return string(b[pos : pos+n]), pos + n
}
