package comm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRecvRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewComm(2)

	var wg sync.WaitGroup
	wg.Add(1)
	var got Message
	var recvErr error
	go func() {
		defer wg.Done()
		got, recvErr = c.Recv(ctx, 0, 1, TagExchange)
	}()

	require.NoError(t, c.Send(ctx, 0, 1, TagExchange, Message{Ints: []int{42}}))
	wg.Wait()
	require.NoError(t, recvErr)
	assert.Equal(t, []int{42}, got.Ints)
}

func TestIRecvCompletesAfterSend(t *testing.T) {
	ctx := context.Background()
	c := NewComm(2)

	pending := c.IRecv(ctx, 0, 1, TagMetaExchange)
	require.NoError(t, c.Send(ctx, 0, 1, TagMetaExchange, Message{Ints: []int{7}}))

	select {
	case msg := <-pending.Done:
		assert.Equal(t, []int{7}, msg.Ints)
	case <-time.After(time.Second):
		t.Fatal("pending receive never completed")
	}
}

func TestMailboxesAreFIFOPerTriple(t *testing.T) {
	ctx := context.Background()
	c := NewComm(2)

	require.NoError(t, c.Send(ctx, 0, 1, TagRim, Message{Ints: []int{1}}))
	require.NoError(t, c.Send(ctx, 0, 1, TagRim, Message{Ints: []int{2}}))

	first, err := c.Recv(ctx, 0, 1, TagRim)
	require.NoError(t, err)
	second, err := c.Recv(ctx, 0, 1, TagRim)
	require.NoError(t, err)

	assert.Equal(t, []int{1}, first.Ints)
	assert.Equal(t, []int{2}, second.Ints)
}

func TestDistinctTagsDoNotInterfere(t *testing.T) {
	ctx := context.Background()
	c := NewComm(2)

	require.NoError(t, c.Send(ctx, 0, 1, TagMetaRim, Message{Ints: []int{1}}))
	require.NoError(t, c.Send(ctx, 0, 1, TagRim, Message{Ints: []int{2}}))

	metaMsg, err := c.Recv(ctx, 0, 1, TagMetaRim)
	require.NoError(t, err)
	rimMsg, err := c.Recv(ctx, 0, 1, TagRim)
	require.NoError(t, err)

	assert.Equal(t, []int{1}, metaMsg.Ints)
	assert.Equal(t, []int{2}, rimMsg.Ints)
}

func TestSendRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewComm(2)
	// the mailbox has no reader and a small buffer; enough sends will
	// eventually block and observe the cancelled context.
	var err error
	for i := 0; i < 16; i++ {
		err = c.Send(ctx, 0, 1, TagExchange, Message{})
		if err != nil {
			break
		}
	}
	assert.Error(t, err)
}
