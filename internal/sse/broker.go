// Package sse streams workspace change events to HTTP clients as
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultClientBuffer is the per-client queue length used when none is configured.
const DefaultClientBuffer = 64

// Event is one named change event. Data is encoded as JSON.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// frame is an encoded event kept for delivery and replay.
type frame struct {
	id  string
	typ string
	raw []byte
}

type subscription struct {
	ch     chan []byte
	types  map[string]struct{}
	lastID string
}

func (s *subscription) wants(typ string) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[typ]
	return ok
}

// Broker fans events out to subscribers.
//
// A single goroutine owns the subscriber set and the replay history; the
// public methods talk to it over channels.
type Broker struct {
	clientBuffer int
	heartbeat    time.Duration

	subscribeCh   chan *subscription
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	countReqCh    chan chan int

	dropped atomic.Int64
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker whose clients each queue up to clientBuffer
// messages. Slow clients miss events rather than stall the others. The same
// number of recent events is kept for Last-Event-ID replay. A positive
// heartbeat makes ServeHTTP write a comment line at that interval.
func NewBroker(clientBuffer int, heartbeat time.Duration) *Broker {
	if clientBuffer <= 0 {
		clientBuffer = DefaultClientBuffer
	}

	b := &Broker{
		clientBuffer:  clientBuffer,
		heartbeat:     heartbeat,
		subscribeCh:   make(chan *subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	subs := make(map[chan []byte]*subscription)
	history := make([]frame, 0, b.clientBuffer)

	deliver := func(s *subscription, f frame) {
		if !s.wants(f.typ) {
			return
		}
		select {
		case s.ch <- f.raw:
		default:
			b.dropped.Add(1)
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range subs {
				close(ch)
			}
			return

		case s := <-b.subscribeCh:
			subs[s.ch] = s
			if s.lastID == "" {
				continue
			}
			for i, f := range history {
				if f.id != s.lastID {
					continue
				}
				for _, missed := range history[i+1:] {
					deliver(s, missed)
				}
				break
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			f, err := encode(event)
			if err != nil {
				continue
			}
			if len(history) == b.clientBuffer {
				history = append(history[:0], history[1:]...)
			}
			history = append(history, f)
			for _, s := range subs {
				deliver(s, f)
			}

		case resp := <-b.countReqCh:
			resp <- len(subs)
		}
	}
}

// encode renders one event in the text/event-stream wire format.
func encode(event Event) (frame, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return frame{}, err
	}
	id := uuid.NewString()
	return frame{
		id:  id,
		typ: event.Type,
		raw: []byte(fmt.Sprintf("id: %s\nevent: %s\ndata: %s\n\n", id, event.Type, payload)),
	}, nil
}

// Close stops the broker and closes every subscriber channel. It is safe to
// call more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client for the given event types (all types when
// none are given) and returns its channel.
func (b *Broker) Subscribe(types ...string) chan []byte {
	return b.SubscribeFrom("", types...)
}

// SubscribeFrom is Subscribe for a reconnecting client: events published
// after lastID that are still in the history are queued first. An unknown
// lastID replays nothing.
func (b *Broker) SubscribeFrom(lastID string, types ...string) chan []byte {
	s := &subscription{
		ch:     make(chan []byte, b.clientBuffer),
		lastID: lastID,
	}
	if len(types) > 0 {
		s.types = make(map[string]struct{}, len(types))
		for _, t := range types {
			s.types[t] = struct{}{}
		}
	}

	if b.closed.Load() {
		close(s.ch)
		return s.ch
	}
	select {
	case b.subscribeCh <- s:
	case <-b.stopped:
		close(s.ch)
	}
	return s.ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Dropped returns how many client deliveries were skipped on full buffers.
func (b *Broker) Dropped() int64 {
	return b.dropped.Load()
}

// Publish queues an event for every interested client.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to one client (GET /api/events). Repeated
// ?type= parameters restrict the stream to those event types; a
// Last-Event-ID header resumes after that event.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.SubscribeFrom(r.Header.Get("Last-Event-ID"), r.URL.Query()["type"]...)
	defer b.Unsubscribe(ch)

	var tick <-chan time.Time
	if b.heartbeat > 0 {
		t := time.NewTicker(b.heartbeat)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
