package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waterfall/particle"
	"waterfall/vector"
)

func sampleParticles() []particle.Particle {
	return []particle.Particle{
		particle.New(particle.Fluid, vector.Vector3{X: 1, Y: 2, Z: 3}, vector.Vector3{X: 0.1, Y: -0.2, Z: 0}),
		particle.New(particle.Static, vector.Vector3{X: -1, Y: 0, Z: 5}, vector.Zero),
		particle.New(particle.Shutter, vector.Vector3{X: 10, Y: 10, Z: 10}, vector.Vector3{X: 0, Y: 0, Z: 0}),
	}
}

func TestEncodeDecodeParticleRoundTrip(t *testing.T) {
	p := sampleParticles()[0]
	p.LocalDensity = 1.234
	buf := make([]byte, RecordSize)
	EncodeParticle(p, buf)
	got := DecodeParticle(buf)

	assert.True(t, p.Equal(got))
	assert.Equal(t, p.Mass, got.Mass)
	assert.Equal(t, p.LocalDensity, got.LocalDensity)
	assert.Equal(t, p.Kind, got.Kind)
}

func TestEncodeAllDecodeAllRoundTrip(t *testing.T) {
	ps := sampleParticles()
	buf := EncodeAll(ps)
	require.Len(t, buf, len(ps)*RecordSize)

	got, err := DecodeAll(buf)
	require.NoError(t, err)
	require.Len(t, got, len(ps))
	for i := range ps {
		assert.True(t, ps[i].Equal(got[i]))
		assert.Equal(t, ps[i].Kind, got[i].Kind)
	}
}

func TestDecodeAllRejectsMisalignedBuffers(t *testing.T) {
	_, err := DecodeAll(make([]byte, RecordSize+1))
	assert.Error(t, err)
}

func TestDecodeAllEmptyBuffer(t *testing.T) {
	got, err := DecodeAll(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
