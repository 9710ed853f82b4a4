// Package payload builds the application payloads carried by simulated
// publications.
package payload

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BlockBreakSize is the length of a block-break payload in bytes.
const BlockBreakSize = 32

const (
	opBlockBreak = 6
	blockLayer   = 3
)

// Context carries the run-scoped state shared by every payload of one
// simulation: the world identifier, the clock and the per-second sequence
// number. It is safe for concurrent use.
type Context struct {
	worldID uuid.UUID
	start   time.Time
	now     func() time.Time

	mu          sync.Mutex
	lastSeconds int64
	sequence    uint8
}

// NewContext returns a Context for worldID whose clock starts at start.
// A nil now uses time.Now.
func NewContext(worldID uuid.UUID, start time.Time, now func() time.Time) *Context {
	if now == nil {
		now = time.Now
	}
	return &Context{worldID: worldID, start: start, now: now, lastSeconds: -1}
}

// WorldID returns the world identifier stamped into every payload.
func (c *Context) WorldID() uuid.UUID { return c.worldID }

// tick returns the whole seconds elapsed since start and the sequence number
// within that second.
func (c *Context) tick() (uint16, uint8) {
	secs := int64(c.now().Sub(c.start) / time.Second)
	c.mu.Lock()
	defer c.mu.Unlock()
	if secs != c.lastSeconds {
		c.lastSeconds = secs
		c.sequence = 0
	} else {
		c.sequence++
	}
	return uint16(secs), c.sequence
}

// BlockBreak returns the 32-byte big-endian block-break payload for the block
// at (x, y):
//
//	[0]      opcode 6
//	[1:3]    seconds since start (wraps)
//	[3]      sequence within that second (wraps)
//	[4:20]   world id
//	[20:24]  x
//	[24:28]  layer, always 3
//	[28:32]  y
func (c *Context) BlockBreak(x, y uint32) []byte {
	secs, seq := c.tick()
	b := make([]byte, BlockBreakSize)
	b[0] = opBlockBreak
	binary.BigEndian.PutUint16(b[1:3], secs)
	b[3] = seq
	copy(b[4:20], c.worldID[:])
	binary.BigEndian.PutUint32(b[20:24], x)
	binary.BigEndian.PutUint32(b[24:28], blockLayer)
	binary.BigEndian.PutUint32(b[28:32], y)
	return b
}
