package uuidv47

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	"sync"
	"time"
)

// DefaultGenerator is used by New().
var DefaultGenerator = NewGenerator()

// New returns a fresh version 7 UUID from the DefaultGenerator.
// Values drawn from one process are strictly increasing, even within
// a single millisecond.
func New() UUID {
	return DefaultGenerator.Generate()
}

// NewAt returns a version 7 UUID carrying the given timestamp and a
// fully random payload. It bypasses the monotonic counter, so two
// calls with the same timestamp are unordered.
func NewAt(t time.Time) UUID {
	var b [10]byte
	_, _ = rand.Read(b[:])
	var u UUID
	putUint48(u[:6], uint64(t.UnixMilli()))
	u[6] = 0x70 | b[0]&0x0f
	u[7] = b[1]
	u[8] = 0x80 | b[2]&0x3f
	copy(u[9:], b[3:])
	return u
}

// Generator produces monotonic version 7 UUIDs. The 74 payload bits
// split into 42 random bits, redrawn each millisecond, and a 32-bit
// counter in the low bytes that orders values within the millisecond.
type Generator struct {
	mu     sync.Mutex
	lastMS uint64
	hi     uint64 // 42 random bits for the current millisecond
	ctr    uint32
}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns the next UUID in strictly increasing byte order.
func (g *Generator) Generate() UUID {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := uint64(time.Now().UnixMilli())
	for {
		if now > g.lastMS {
			g.lastMS = now
			g.hi = rand42()
			g.ctr = 0
			break
		}
		// Same millisecond, or the clock stepped back. Keep the
		// last timestamp and bump the counter.
		if g.ctr < math.MaxUint32 {
			g.ctr++
			break
		}
		// Counter exhausted, wait out the millisecond.
		time.Sleep(100 * time.Microsecond)
		now = uint64(time.Now().UnixMilli())
	}

	var u UUID
	putUint48(u[:6], g.lastMS)
	u[6] = 0x70 | byte(g.hi>>38)&0x0f
	u[7] = byte(g.hi >> 30)
	u[8] = 0x80 | byte(g.hi>>24)&0x3f
	u[9] = byte(g.hi >> 16)
	u[10] = byte(g.hi >> 8)
	u[11] = byte(g.hi)
	binary.BigEndian.PutUint32(u[12:16], g.ctr)
	return u
}

// rand42 draws the 42 random payload bits for a fresh millisecond.
func rand42() uint64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:]) & 0x3ffffffffff
}
