package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dyluth/commviz/internal/watch"
)

// HeartbeatInterval is how often idle event streams receive a heartbeat.
var HeartbeatInterval = 30 * time.Second

// hub fans watcher events out to event-stream subscribers.
type hub struct {
	mu      sync.RWMutex
	clients map[chan watch.Event]struct{}
	done    chan struct{}
	once    sync.Once
}

func newHub() *hub {
	return &hub{
		clients: make(map[chan watch.Event]struct{}),
		done:    make(chan struct{}),
	}
}

func (h *hub) subscribe() chan watch.Event {
	ch := make(chan watch.Event, 16)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan watch.Event) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

func (h *hub) broadcast(ev watch.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.clients {
		select {
		case ch <- ev:
		default:
			// Subscriber buffer full, skip
		}
	}
}

func (h *hub) subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// close ends every open stream.
func (h *hub) close() {
	h.once.Do(func() { close(h.done) })
}

// handleEvents streams store changes as server-sent events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeStatus(w, http.StatusNotFound, "change events are disabled (start the server with --watch)")
		return
	}

	rc := http.NewResponseController(w)
	// Streams outlive the server write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.hub.subscribe()
	defer s.hub.unsubscribe(ch)

	fmt.Fprint(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	if err := rc.Flush(); err != nil {
		return
	}

	ticker := time.NewTicker(HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-ch:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
		case t := <-ticker.C:
			fmt.Fprintf(w, "event: heartbeat\ndata: {\"time\":\"%s\"}\n\n", t.UTC().Format(time.RFC3339))
		case <-s.hub.done:
			return
		case <-r.Context().Done():
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
