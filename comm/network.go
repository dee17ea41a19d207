// Package comm is the message-passing substrate. The source program used
// MPI; nothing in the retrieved corpus binds to an MPI library, so ranks
// are modeled as goroutines and a Comm communicator is a fixed set of
// per (sender, receiver, tag) FIFO mailboxes — the same ordering and
// non-blocking-receive-then-synchronous-send semantics spec §5 asks for,
// built on Go channels instead of a wire protocol. There is no transport
// abstraction: a Comm only connects goroutines of one process.
package comm

import (
	"context"
	"fmt"
	"sync"
)

// Tag disambiguates concurrent messages between the same pair of ranks
// (§6, "Tag constants").
type Tag int

const (
	TagMetaExchange Tag = iota
	TagExchange
	TagMetaMetaRim
	TagMetaRim
	TagRim
	TagExportParticlesNumber
	TagExport
)

func (t Tag) String() string {
	switch t {
	case TagMetaExchange:
		return "META_EXCHANGE"
	case TagExchange:
		return "EXCHANGE"
	case TagMetaMetaRim:
		return "META_META_RIM"
	case TagMetaRim:
		return "META_RIM"
	case TagRim:
		return "RIM"
	case TagExportParticlesNumber:
		return "EXPORT_PARTICLES_NUMBER"
	case TagExport:
		return "EXPORT"
	default:
		return fmt.Sprintf("TAG(%d)", int(t))
	}
}

// Message is the envelope carried over a mailbox: a small int header
// (counts, triples) plus an optional raw particle-record payload.
type Message struct {
	Ints  []int
	Bytes []byte
}

type mailboxKey struct {
	from, to int
	tag      Tag
}

// Comm is a communicator over ranks [0, Size). Sends and receives are
// addressed by (from, to, tag); delivery within one (from, to, tag)
// triple is FIFO, matching the ordering guarantee §5 requires for rim
// exchange meta/data pairing.
type Comm struct {
	size     int
	mu       sync.Mutex // guards mailbox; ranks call box from their own goroutines
	mailbox  map[mailboxKey]chan Message
	children map[mailboxKey]bool
}

// NewComm constructs a communicator of the given size. Mailboxes are
// created lazily on first use.
func NewComm(size int) *Comm {
	return &Comm{
		size:    size,
		mailbox: make(map[mailboxKey]chan Message),
	}
}

func (c *Comm) Size() int { return c.size }

func (c *Comm) box(from, to int, tag Tag) chan Message {
	k := mailboxKey{from, to, tag}
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.mailbox[k]
	if !ok {
		// Buffered: each exchange phase posts at most one message per
		// (from, to, tag) triple, so a capacity of 4 lets a sender run a
		// few messages ahead of a receiver that has not yet read them.
		ch = make(chan Message, 4)
		c.mailbox[k] = ch
	}
	return ch
}

// Send is a synchronous send: it blocks until the message is accepted by
// the receiver's mailbox (or ctx is cancelled). Protocol code must post
// the matching receive first, per §5.
func (c *Comm) Send(ctx context.Context, from, to int, tag Tag, msg Message) error {
	select {
	case c.box(from, to, tag) <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv blocks for a single message addressed (from, to, tag).
func (c *Comm) Recv(ctx context.Context, from, to int, tag Tag) (Message, error) {
	select {
	case msg := <-c.box(from, to, tag):
		return msg, nil
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

// Pending is a posted non-blocking receive (MPI's Irecv): the message
// arrives on Done once available.
type Pending struct {
	Done chan Message
}

// IRecv posts a non-blocking receive for (from, to, tag). The caller can
// post every phase's non-blocking receives up front, then issue
// synchronous sends, matching the deadlock-avoidance rule in §4.5/§5.
func (c *Comm) IRecv(ctx context.Context, from, to int, tag Tag) *Pending {
	box := c.box(from, to, tag)
	done := make(chan Message, 1)
	go func() {
		select {
		case msg := <-box:
			done <- msg
		case <-ctx.Done():
			close(done)
		}
	}()
	return &Pending{Done: done}
}
