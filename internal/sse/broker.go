// Package sse streams index events to HTTP clients as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// Event is one message on the stream. Data is sent as JSON.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Event types.
const (
	TypeSourceChanged = "source.changed"
	TypeIndexRebuilt  = "index.rebuilt"
	TypeRebuildFailed = "index.failed"
)

const (
	clientBuffer = 64
	queueSize    = 256
	heartbeat    = 30 * time.Second
)

// hub is the state owned by the broker goroutine.
type hub struct {
	clients map[chan []byte]struct{}
	seq     int
	// lastBuild is the latest index.rebuilt message, replayed to clients
	// that connect after it was sent.
	lastBuild []byte
}

func (h *hub) broadcast(typ string, payload []byte) {
	h.seq++
	msg := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", h.seq, typ, payload))
	if typ == TypeIndexRebuilt {
		h.lastBuild = msg
	}
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
			// slow client, drop
		}
	}
}

// Broker fans index events out to subscribers. A single goroutine owns the
// hub; every method hands it a closure, so operations apply in call order.
type Broker struct {
	ops    chan func(*hub)
	quit   chan struct{}
	done   chan struct{}
	closed atomic.Bool
}

// NewBroker creates a broker and starts its loop.
func NewBroker() *Broker {
	b := &Broker{
		ops:  make(chan func(*hub), queueSize),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.done)
	h := &hub{clients: make(map[chan []byte]struct{})}
	for {
		select {
		case <-b.quit:
			for ch := range h.clients {
				close(ch)
			}
			return
		case op := <-b.ops:
			op(h)
		}
	}
}

// send queues op and reports whether the broker accepted it.
func (b *Broker) send(op func(*hub)) bool {
	if b.closed.Load() {
		return false
	}
	select {
	case b.ops <- op:
		return true
	case <-b.done:
		return false
	}
}

// call runs op on the loop and waits for it. It reports false when op did
// not run because the broker stopped.
func (b *Broker) call(op func(*hub)) bool {
	ran := make(chan struct{})
	if !b.send(func(h *hub) { op(h); close(ran) }) {
		return false
	}
	select {
	case <-ran:
		return true
	case <-b.done:
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}
}

// Close stops the loop and closes every subscriber channel. It is safe to
// call more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.quit)
	}
	<-b.done
}

// Subscribe registers a client. If an index has been built, the client
// receives the latest index.rebuilt message first. The channel is closed by
// Unsubscribe or Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	ok := b.call(func(h *hub) {
		h.clients[ch] = struct{}{}
		if h.lastBuild != nil {
			ch <- h.lastBuild
		}
	})
	if !ok {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.send(func(h *hub) {
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	n := 0
	if !b.call(func(h *hub) { n = len(h.clients) }) {
		return 0
	}
	return n
}

// Publish encodes event and queues it for every client.
func (b *Broker) Publish(event Event) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		slog.Error("sse: encode event", slog.String("type", event.Type), slog.String("error", err.Error()))
		return
	}
	b.send(func(h *hub) { h.broadcast(event.Type, payload) })
}

// PublishChange announces a source file change. kind is "created",
// "updated" or "deleted".
func (b *Broker) PublishChange(kind, path string) {
	b.Publish(Event{Type: TypeSourceChanged, Data: map[string]string{
		"kind": kind,
		"path": path,
	}})
}

// PublishRebuild announces a finished rebuild with its summary as payload.
func (b *Broker) PublishRebuild(summary any) {
	b.Publish(Event{Type: TypeIndexRebuilt, Data: summary})
}

// PublishFailure announces a rebuild that did not complete.
func (b *Broker) PublishFailure(err error) {
	b.Publish(Event{Type: TypeRebuildFailed, Data: map[string]string{"error": err.Error()}})
}

// ServeHTTP streams events to one client until it disconnects or the broker
// closes. A comment line is sent on idle connections to keep proxies open.
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
	h.Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(heartbeat)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
		}
		flusher.Flush()
	}
}
