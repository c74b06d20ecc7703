package transport

import "sync"

// sendQueue is the outbound frame queue. It is locked because frames
// are enqueued by the host thread while flushes may race with teardown.
type sendQueue struct {
	mu     sync.Mutex
	frames [][]byte
}

// enqueue appends a frame to the queue.
func (q *sendQueue) enqueue(frame []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.frames = append(q.frames, frame)
}

// dequeue removes and returns the oldest queued frame.
func (q *sendQueue) dequeue() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.frames) == 0 {
		return nil, false
	}
	frame := q.frames[0]
	q.frames = q.frames[1:]
	return frame, true
}

// size returns the number of queued frames.
func (q *sendQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}

// clear drops all queued frames.
func (q *sendQueue) clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.frames = nil
}
