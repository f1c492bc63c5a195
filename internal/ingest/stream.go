package ingest

import (
	"sync"

	"go.uber.org/zap"
)

// Stream is the ordered event feed of one run. A single producer goroutine
// writes to it and closes it after the terminal event.
type Stream struct {
	events   chan Event
	stop     chan struct{}
	stopOnce sync.Once
}

func newStream() *Stream {
	return &Stream{
		events: make(chan Event),
		stop:   make(chan struct{}),
	}
}

// Events returns the channel to range over. It is closed after the terminal
// event.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Stop tells the producer the consumer has gone away. Pending and future
// events are dropped; the run itself is not cancelled.
func (s *Stream) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Collect drains the stream and returns every event in order.
func (s *Stream) Collect() []Event {
	var out []Event
	for e := range s.events {
		out = append(out, e)
	}
	return out
}

// emitter is the producer side. It refuses anything after a terminal event.
type emitter struct {
	s    *Stream
	done bool
	log  *zap.Logger
}

// send delivers e unless a terminal event was already sent or the consumer
// stopped listening. It reports whether e was delivered.
func (em *emitter) send(e Event) bool {
	if em.done {
		em.log.Warn("ingest: event after terminal dropped", zap.String("kind", string(e.EventKind())))
		return false
	}
	if e.EventKind().Terminal() {
		em.done = true
	}
	select {
	case em.s.events <- e:
		return true
	case <-em.s.stop:
		return false
	}
}

func (em *emitter) close() {
	close(em.s.events)
}
