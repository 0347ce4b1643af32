package sink

import (
	"main/internal/bus"
	"main/internal/model"
)

// QueueSink serializes records and hands them to the output queue as CSV
// lines. It is the default sink between the books and the output writer.
type QueueSink struct {
	q *bus.Queue[string]
}

// NewQueueSink wraps an output queue.
func NewQueueSink(q *bus.Queue[string]) *QueueSink {
	return &QueueSink{q: q}
}

// Emit pushes the serialized record, blocking while the queue is full.
func (s *QueueSink) Emit(rec model.OutputRecord) {
	_ = s.q.Push(rec.String())
}
