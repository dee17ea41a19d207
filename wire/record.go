// Package wire implements the fixed-size particle record layout from
// §6: position (3*f64), velocity (3*f64), mass (f64), local_density
// (f64), kind (one byte), padded to a natural 8-byte boundary. Byte
// order is fixed to little-endian, standing in for "the machine's
// native order" under the homogeneous-cluster assumption (§6/§7).
package wire

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"waterfall/particle"
	"waterfall/vector"
)

// RecordSize is the fixed byte length of one encoded particle record:
// 6 float64 fields (48 bytes) + mass + density (16 bytes) + kind byte
// padded out to the next 8-byte boundary (8 bytes).
const RecordSize = 8*6 + 8 + 8 + 8

// EncodeParticle writes one particle record into a RecordSize buffer.
func EncodeParticle(p particle.Particle, buf []byte) {
	le := binary.LittleEndian
	putF64(le, buf[0:8], p.Position.X)
	putF64(le, buf[8:16], p.Position.Y)
	putF64(le, buf[16:24], p.Position.Z)
	putF64(le, buf[24:32], p.Velocity.X)
	putF64(le, buf[32:40], p.Velocity.Y)
	putF64(le, buf[40:48], p.Velocity.Z)
	putF64(le, buf[48:56], p.Mass)
	putF64(le, buf[56:64], p.LocalDensity)
	buf[64] = byte(p.Kind)
	for i := 65; i < RecordSize; i++ {
		buf[i] = 0
	}
}

// DecodeParticle reads one particle record from a RecordSize buffer.
func DecodeParticle(buf []byte) particle.Particle {
	le := binary.LittleEndian
	return particle.Particle{
		Position: vector.Vector3{
			X: getF64(le, buf[0:8]),
			Y: getF64(le, buf[8:16]),
			Z: getF64(le, buf[16:24]),
		},
		Velocity: vector.Vector3{
			X: getF64(le, buf[24:32]),
			Y: getF64(le, buf[32:40]),
			Z: getF64(le, buf[40:48]),
		},
		Mass:         getF64(le, buf[48:56]),
		LocalDensity: getF64(le, buf[56:64]),
		Kind:         particle.Kind(buf[64]),
	}
}

// EncodeAll concatenates the wire records for ps in order.
func EncodeAll(ps []particle.Particle) []byte {
	out := make([]byte, len(ps)*RecordSize)
	for i, p := range ps {
		EncodeParticle(p, out[i*RecordSize:(i+1)*RecordSize])
	}
	return out
}

// DecodeAll is the inverse of EncodeAll. It errors if b is not an exact
// multiple of RecordSize, the size-mismatch diagnostic required by §7.
func DecodeAll(b []byte) ([]particle.Particle, error) {
	if len(b)%RecordSize != 0 {
		return nil, errors.Errorf("particle payload size %d is not a multiple of record size %d", len(b), RecordSize)
	}
	n := len(b) / RecordSize
	out := make([]particle.Particle, n)
	for i := 0; i < n; i++ {
		out[i] = DecodeParticle(b[i*RecordSize : (i+1)*RecordSize])
	}
	return out, nil
}

func putF64(order binary.ByteOrder, b []byte, v float64) {
	order.PutUint64(b, math.Float64bits(v))
}

func getF64(order binary.ByteOrder, b []byte) float64 {
	return math.Float64frombits(order.Uint64(b))
}
