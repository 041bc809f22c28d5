package core

import (
	"runtime"

	"escctl/protocol"
)

// ByteQueue is the fixed capacity receive queue between the serial receive
// interrupt (producer) and the main loop (consumer). It counts the complete
// lines it holds and never blocks the producer: when full, the oldest line
// (or everything, if no line is complete) is dropped to make room.
//
// Every operation runs inside a short critical section so the indices are
// never observed half updated.
type ByteQueue struct {
	buf   []byte
	head  int // Next byte to pop
	count int
	lines int

	dropped uint32 // Overflow events
}

// NewByteQueue creates a queue holding up to capacity bytes
func NewByteQueue(capacity int) *ByteQueue {
	return &ByteQueue{buf: make([]byte, capacity)}
}

// Push appends a byte. Called from the receive path only.
// Returns true if queued data had to be discarded to make room.
func (q *ByteQueue) Push(b byte) bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	overflow := false
	if q.count >= len(q.buf) {
		overflow = true
		q.dropped++
		for q.count > 0 {
			old := q.buf[q.head]
			q.head = q.wrap(q.head + 1)
			q.count--
			if old == protocol.Terminator {
				q.lines--
				break
			}
		}
	}

	q.buf[q.wrap(q.head+q.count)] = b
	q.count++
	if b == protocol.Terminator {
		q.lines++
	}
	return overflow
}

// TryPop removes the oldest byte if one is queued
func (q *ByteQueue) TryPop() (byte, bool) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if q.count == 0 {
		return 0, false
	}
	b := q.buf[q.head]
	q.head = q.wrap(q.head + 1)
	q.count--
	if b == protocol.Terminator {
		q.lines--
	}
	return b, true
}

// Pop removes the oldest byte, spinning while the queue is empty.
// Called from the main loop only.
func (q *ByteQueue) Pop() byte {
	for {
		if b, ok := q.TryPop(); ok {
			return b
		}
		runtime.Gosched()
	}
}

// Next implements protocol.ByteSource
func (q *ByteQueue) Next() byte {
	return q.Pop()
}

// PutBack implements protocol.ByteSource
func (q *ByteQueue) PutBack(b byte) {
	q.PushBack(b)
}

// PushBack reinserts b at the front of the queue. It must directly follow
// the Pop that returned b. If the producer refilled the freed slot in
// between, the newest byte is discarded so the put-back byte keeps its place.
func (q *ByteQueue) PushBack(b byte) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if q.count >= len(q.buf) {
		q.dropped++
		q.count--
		if q.buf[q.wrap(q.head+q.count)] == protocol.Terminator {
			q.lines--
		}
	}
	q.head = q.wrap(q.head - 1 + len(q.buf))
	q.buf[q.head] = b
	q.count++
	if b == protocol.Terminator {
		q.lines++
	}
}

// Len returns the number of queued bytes
func (q *ByteQueue) Len() int {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return q.count
}

// LinesAvailable returns the number of complete lines queued
func (q *ByteQueue) LinesAvailable() int {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return q.lines
}

// Cap returns the queue capacity
func (q *ByteQueue) Cap() int {
	return len(q.buf)
}

// Dropped returns the number of overflow events so far
func (q *ByteQueue) Dropped() uint32 {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return q.dropped
}

// Reset discards everything queued
func (q *ByteQueue) Reset() {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	q.head = 0
	q.count = 0
	q.lines = 0
}

func (q *ByteQueue) wrap(i int) int {
	if i >= len(q.buf) {
		return i - len(q.buf)
	}
	return i
}
