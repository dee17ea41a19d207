// Package render defines the capability the core links against for
// output that is otherwise out of scope (Design Notes §9): a ray-cast
// renderer, a VTK writer, and an archive persister selected once at
// startup. Only a no-op Backend ships here; a real rasterizing renderer
// is the external collaborator named in spec §1/§6.
package render

import (
	"waterfall/archive"
	"waterfall/particle"
)

// Backend is the three-method capability the coordinator drives each
// frame.
type Backend interface {
	ExportFrame(frame int, particles []particle.Particle) error
	WriteVTK(path string, particles []particle.Particle) error
	PersistArchive(path string, frames []archive.Frame) error
}

// NoOp is a Backend that does nothing; it satisfies the interface for
// runs and tests that don't need file output (e.g. the console/renderer
// collaborator is not present).
type NoOp struct{}

func (NoOp) ExportFrame(int, []particle.Particle) error  { return nil }
func (NoOp) WriteVTK(string, []particle.Particle) error  { return nil }
func (NoOp) PersistArchive(string, []archive.Frame) error { return nil }
