package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waterfall/comm"
)

func TestBroadcastReceiveRoundTrip(t *testing.T) {
	cluster := comm.NewCluster(3)
	cmd := Command{
		Code: AddSource,
		Line: "add_source 1 2 3",
		Name: "add_source",
		Params: []Param{
			{Name: "x", Value: "1"},
			{Name: "y", Value: "2"},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	broadcastErr := make(chan error, 1)
	go func() { broadcastErr <- Broadcast(ctx, cluster, cmd) }()

	for sim := 0; sim < cluster.NSimulators; sim++ {
		worldRank := comm.SimulatorWorldRank(sim)
		got, err := Receive(ctx, cluster, worldRank)
		require.NoError(t, err)
		assert.Equal(t, cmd.Code, got.Code)
		assert.Equal(t, cmd.Line, got.Line)
		assert.Equal(t, cmd.Name, got.Name)
		assert.Equal(t, cmd.Params, got.Params)
	}
	require.NoError(t, <-broadcastErr)
}

func TestCommandCodeVocabulary(t *testing.T) {
	assert.Equal(t, Code(-1), None)
	assert.Equal(t, Code(0), Exit)
	assert.Equal(t, Code(1), LoadMesh)
	assert.Equal(t, Code(2), LoadShutter)
	assert.Equal(t, Code(3), GenerateParticles)
	assert.Equal(t, Code(4), MoveShutter)
	assert.Equal(t, Code(5), Simulate)
	assert.Equal(t, Code(6), Render)
	assert.Equal(t, Code(7), AddSource)
	assert.Equal(t, Code(8), AddSink)
}

func TestEncodeDecodeHandlesEmptyParams(t *testing.T) {
	cmd := Command{Code: Exit, Line: "exit"}
	msg := encode(cmd)
	got := decode(msg)
	assert.Equal(t, cmd.Code, got.Code)
	assert.Equal(t, cmd.Line, got.Line)
	assert.Empty(t, got.Params)
}
