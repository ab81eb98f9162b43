package mqtt

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/sweeney/greenhouse-relay/internal/logic"
)

// DefaultQueueSize bounds the events waiting to be published.
const DefaultQueueSize = 256

// Async is a logic.Sink that publishes events on its own goroutine so the
// caller never waits on the broker. When the queue is full, events are dropped.
type Async struct {
	pub     Publisher
	events  chan logic.Event
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

// NewAsync starts publishing to pub through a queue of size entries.
func NewAsync(pub Publisher, size int) *Async {
	if size <= 0 {
		size = DefaultQueueSize
	}
	a := &Async{
		pub:    pub,
		events: make(chan logic.Event, size),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

// Emit queues event for publishing without blocking.
func (a *Async) Emit(event logic.Event) {
	select {
	case <-a.stop:
		return
	default:
	}

	select {
	case a.events <- event:
	default:
		if a.dropped.Add(1) == 1 {
			log.Printf("mqtt: event queue full, dropping events")
		}
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (a *Async) Dropped() int64 {
	return a.dropped.Load()
}

// Close publishes events already queued and stops the worker. It does not
// close the underlying publisher.
func (a *Async) Close() error {
	a.once.Do(func() { close(a.stop) })
	<-a.done
	return nil
}

func (a *Async) run() {
	defer close(a.done)
	for {
		select {
		case e := <-a.events:
			a.publish(e)
		case <-a.stop:
			for {
				select {
				case e := <-a.events:
					a.publish(e)
				default:
					return
				}
			}
		}
	}
}

func (a *Async) publish(e logic.Event) {
	if err := a.pub.Publish(e); err != nil {
		log.Printf("mqtt: publish %s error: %v", e.Type, err)
	}
}
