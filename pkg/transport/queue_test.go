package transport

import (
	"bytes"
	"testing"
)

func TestSendQueueOrder(t *testing.T) {
	var q sendQueue

	if _, ok := q.dequeue(); ok {
		t.Fatal("dequeue on empty queue should report no frame")
	}

	q.enqueue([]byte("first"))
	q.enqueue([]byte("second"))
	q.enqueue([]byte("third"))

	if got := q.size(); got != 3 {
		t.Fatalf("size = %d, want 3", got)
	}

	for _, want := range []string{"first", "second", "third"} {
		frame, ok := q.dequeue()
		if !ok {
			t.Fatalf("dequeue returned no frame, want %q", want)
		}
		if !bytes.Equal(frame, []byte(want)) {
			t.Errorf("dequeue = %q, want %q", frame, want)
		}
	}

	if got := q.size(); got != 0 {
		t.Errorf("size after drain = %d, want 0", got)
	}
}

func TestSendQueueClear(t *testing.T) {
	var q sendQueue
	q.enqueue([]byte("a"))
	q.enqueue([]byte("b"))
	q.clear()

	if got := q.size(); got != 0 {
		t.Errorf("size after clear = %d, want 0", got)
	}
	if _, ok := q.dequeue(); ok {
		t.Error("dequeue after clear should report no frame")
	}
}
