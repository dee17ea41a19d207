// Package archive implements the two coordinator-owned file outputs that
// are part of this module's specified wire surface: the persisted frame
// archive and the legacy VTK polydata writer (§6). Actually rasterizing
// a frame to a bitmap is the out-of-scope ray-cast renderer (§1); these
// writers only serialize particle records and text, never pixels.
package archive

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"waterfall/particle"
	"waterfall/wire"
)

// Frame is one timestep's worth of exported particles, keyed by frame
// number.
type Frame struct {
	Number     int
	Particles  []particle.Particle
}

// WriteArchive serialises runID and frames per §6: a 16-byte run id (the
// domain-stack addition from SPEC_FULL.md §4), then number_of_frames,
// then per frame: frame_number, count, records.
func WriteArchive(w io.Writer, runID uuid.UUID, frames []Frame) error {
	bw := bufio.NewWriter(w)
	idBytes := runID
	if _, err := bw.Write(idBytes[:]); err != nil {
		return errors.Wrap(err, "writing run id")
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(len(frames))); err != nil {
		return errors.Wrap(err, "writing frame count")
	}
	for _, f := range frames {
		if err := binary.Write(bw, binary.LittleEndian, int32(f.Number)); err != nil {
			return errors.Wrapf(err, "writing frame %d number", f.Number)
		}
		if err := binary.Write(bw, binary.LittleEndian, int32(len(f.Particles))); err != nil {
			return errors.Wrapf(err, "writing frame %d count", f.Number)
		}
		if _, err := bw.Write(wire.EncodeAll(f.Particles)); err != nil {
			return errors.Wrapf(err, "writing frame %d records", f.Number)
		}
	}
	return bw.Flush()
}

// ReadArchive is the inverse of WriteArchive.
func ReadArchive(r io.Reader) (uuid.UUID, []Frame, error) {
	var runID uuid.UUID
	if _, err := io.ReadFull(r, runID[:]); err != nil {
		return uuid.UUID{}, nil, errors.Wrap(err, "reading run id")
	}
	var frameCount int32
	if err := binary.Read(r, binary.LittleEndian, &frameCount); err != nil {
		return uuid.UUID{}, nil, errors.Wrap(err, "reading frame count")
	}
	frames := make([]Frame, frameCount)
	for i := range frames {
		var number, count int32
		if err := binary.Read(r, binary.LittleEndian, &number); err != nil {
			return uuid.UUID{}, nil, errors.Wrapf(err, "reading frame %d number", i)
		}
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return uuid.UUID{}, nil, errors.Wrapf(err, "reading frame %d count", i)
		}
		buf := make([]byte, int(count)*wire.RecordSize)
		if _, err := io.ReadFull(r, buf); err != nil {
			return uuid.UUID{}, nil, errors.Wrapf(err, "reading frame %d records", i)
		}
		ps, err := wire.DecodeAll(buf)
		if err != nil {
			return uuid.UUID{}, nil, errors.Wrapf(err, "decoding frame %d", i)
		}
		frames[i] = Frame{Number: int(number), Particles: ps}
	}
	return runID, frames, nil
}
