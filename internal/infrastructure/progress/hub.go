package progress

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/g-g-pletnev/docan/internal/core/domain"
)

// EventSink receives every published event synchronously. A sink must not
// block and must swallow its own failures; the hub offers no redelivery.
type EventSink interface {
	Publish(event domain.ProgressEvent)
}

// Hub fans progress events out to subscribed observers and optional sinks.
// One process-wide timestamp feeds elapsedSeconds: the value is the delta
// since the previous publish from any pipeline, not a per-request duration.
type Hub struct {
	logger     *slog.Logger
	bufferSize int
	sinks      []EventSink

	mu          sync.Mutex
	lastPublish time.Time
	observers   map[string]chan domain.ProgressEvent
	closed      bool
}

type Options struct {
	// ObserverBuffer is each subscriber's channel capacity. A full buffer
	// marks the observer as not ready and it silently misses the event.
	ObserverBuffer int
	Sinks          []EventSink
}

func NewHub(logger *slog.Logger, options Options) *Hub {
	buffer := options.ObserverBuffer
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		logger:      logger,
		bufferSize:  buffer,
		sinks:       options.Sinks,
		lastPublish: time.Now(),
		observers:   make(map[string]chan domain.ProgressEvent),
	}
}

// Publish stamps the event and delivers it to every ready observer. Events
// for busy observers are dropped, not queued; there is no replay.
func (h *Hub) Publish(step domain.ProgressStep, message string) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	now := time.Now()
	elapsed := math.Round(now.Sub(h.lastPublish).Seconds()*100) / 100
	h.lastPublish = now

	event := domain.ProgressEvent{Step: step, Message: message, ElapsedSeconds: elapsed}
	for id, ch := range h.observers {
		select {
		case ch <- event:
		default:
			h.logger.Debug("progress_observer_not_ready", "observer_id", id, "step", string(step))
		}
	}
	h.mu.Unlock()

	for _, sink := range h.sinks {
		sink.Publish(event)
	}
}

func (h *Hub) Subscribe() (string, <-chan domain.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan domain.ProgressEvent, h.bufferSize)
	if h.closed {
		close(ch)
		return id, ch
	}
	h.observers[id] = ch
	return id, ch
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.observers[id]; ok {
		delete(h.observers, id)
		close(ch)
	}
}

// Close drops all observers. Buffered events stay readable by consumers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.observers {
		delete(h.observers, id)
		close(ch)
	}
}
