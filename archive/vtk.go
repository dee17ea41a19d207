package archive

import (
	"bufio"
	"fmt"
	"io"

	"waterfall/particle"
)

// WriteVTK writes one legacy VTK polydata file for a single timestep's
// particles, per §6: header, POINTS, and optionally VECTORS velocity.
func WriteVTK(w io.Writer, particles []particle.Particle, includeVelocity bool) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# vtk DataFile Version 3.0")
	fmt.Fprintln(bw, "waterfall SPH frame")
	fmt.Fprintln(bw, "ASCII")
	fmt.Fprintln(bw, "DATASET POLYDATA")
	fmt.Fprintf(bw, "POINTS %d double\n", len(particles))
	for _, p := range particles {
		fmt.Fprintf(bw, "%g %g %g\n", p.Position.X, p.Position.Y, p.Position.Z)
	}
	if includeVelocity {
		fmt.Fprintf(bw, "POINT_DATA %d\n", len(particles))
		fmt.Fprintln(bw, "VECTORS velocity double")
		for _, p := range particles {
			fmt.Fprintf(bw, "%g %g %g\n", p.Velocity.X, p.Velocity.Y, p.Velocity.Z)
		}
	}
	return bw.Flush()
}
