package core

import (
	"testing"

	"escctl/protocol"
)

var _ protocol.ByteSource = (*ByteQueue)(nil)

func TestByteQueuePushPop(t *testing.T) {
	q := NewByteQueue(10)

	for _, b := range []byte("ab\r") {
		q.Push(b)
	}

	if q.Len() != 3 {
		t.Errorf("Expected 3 bytes queued, got %d", q.Len())
	}
	if q.LinesAvailable() != 1 {
		t.Errorf("Expected 1 line, got %d", q.LinesAvailable())
	}

	for _, want := range []byte("ab\r") {
		if got := q.Pop(); got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	}
	if q.LinesAvailable() != 0 {
		t.Errorf("Expected 0 lines after draining, got %d", q.LinesAvailable())
	}
	if _, ok := q.TryPop(); ok {
		t.Error("TryPop on empty queue should fail")
	}
}

func TestByteQueueOverflowWithoutLine(t *testing.T) {
	q := NewByteQueue(100)

	for i := 0; i < 100; i++ {
		if q.Push('x') {
			t.Fatalf("Unexpected overflow at byte %d", i)
		}
	}
	if q.Len() != 100 {
		t.Fatalf("Expected full queue, got %d", q.Len())
	}

	// No line boundary: the whole buffer goes
	if !q.Push('y') {
		t.Error("Expected overflow on byte 101")
	}
	if q.Len() != 1 {
		t.Errorf("Expected only the new byte to remain, got %d bytes", q.Len())
	}
	if q.Len() > q.Cap() {
		t.Errorf("Count %d exceeds capacity %d", q.Len(), q.Cap())
	}
	if got := q.Pop(); got != 'y' {
		t.Errorf("Expected 'y', got %q", got)
	}
	if q.Dropped() != 1 {
		t.Errorf("Expected 1 overflow event, got %d", q.Dropped())
	}
}

func TestByteQueueOverflowDropsOldestLine(t *testing.T) {
	q := NewByteQueue(8)

	for _, b := range []byte("ab\rcd\ref") {
		q.Push(b)
	}
	if q.Len() != 8 || q.LinesAvailable() != 2 {
		t.Fatalf("Expected 8 bytes and 2 lines, got %d and %d", q.Len(), q.LinesAvailable())
	}

	// Mid third line: only "ab\r" is dropped
	q.Push('g')
	if q.LinesAvailable() != 1 {
		t.Errorf("Expected 1 line after overflow, got %d", q.LinesAvailable())
	}

	var got []byte
	for q.Len() > 0 {
		got = append(got, q.Pop())
	}
	if string(got) != "cd\refg" {
		t.Errorf("Expected %q, got %q", "cd\refg", got)
	}
}

func TestByteQueuePushBackRestoresCounts(t *testing.T) {
	q := NewByteQueue(4)
	for _, b := range []byte("1\r2\r") {
		q.Push(b)
	}

	q.Pop() // '1'
	count, lines := q.Len(), q.LinesAvailable()

	b := q.Pop()
	if b != '\r' {
		t.Fatalf("Expected terminator, got %q", b)
	}
	q.PushBack(b)

	if q.Len() != count || q.LinesAvailable() != lines {
		t.Errorf("PushBack should restore count=%d lines=%d, got count=%d lines=%d",
			count, lines, q.Len(), q.LinesAvailable())
	}
	if got := q.Pop(); got != '\r' {
		t.Errorf("Expected put back terminator first, got %q", got)
	}
}

func TestByteQueuePushBackWrap(t *testing.T) {
	q := NewByteQueue(3)
	q.Push('a')
	q.Pop()
	q.Push('b')
	q.Pop()
	q.Push('c')
	q.Push('d')

	// head is at index 2, 'd' wrapped to 0
	b := q.Pop()
	q.PushBack(b)
	if got := q.Pop(); got != 'c' {
		t.Errorf("Expected 'c', got %q", got)
	}
	if got := q.Pop(); got != 'd' {
		t.Errorf("Expected 'd', got %q", got)
	}
}

func TestByteQueuePushBackWhenRefilled(t *testing.T) {
	q := NewByteQueue(3)
	q.Push('a')
	q.Push('b')
	q.Push('c')

	b := q.Pop()
	q.Push('d') // producer refills the freed slot
	q.PushBack(b)

	if q.Len() != 3 {
		t.Fatalf("Expected full queue, got %d", q.Len())
	}
	var got []byte
	for q.Len() > 0 {
		got = append(got, q.Pop())
	}
	if string(got) != "abc" {
		t.Errorf("Expected newest byte dropped, got %q", got)
	}
}

func TestByteQueueReset(t *testing.T) {
	q := NewByteQueue(4)
	q.Push('\r')
	q.Reset()
	if q.Len() != 0 || q.LinesAvailable() != 0 {
		t.Errorf("Expected empty queue after reset, got %d bytes %d lines", q.Len(), q.LinesAvailable())
	}
}

func TestByteQueueAsByteSource(t *testing.T) {
	q := NewByteQueue(8)
	for _, b := range []byte("-42 7\r") {
		q.Push(b)
	}

	if v := protocol.ReadDecimal(q); v != -42 {
		t.Errorf("Expected -42, got %d", v)
	}
	if b := q.Next(); b != ' ' {
		t.Errorf("Expected separator to be put back, got %q", b)
	}
	if v := protocol.ReadDecimal(q); v != 7 {
		t.Errorf("Expected 7, got %d", v)
	}
	if q.LinesAvailable() != 1 {
		t.Errorf("Expected the put back terminator to count as a line, got %d", q.LinesAvailable())
	}
}
