package events

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultBuffer is the channel buffer given to each listener.
const DefaultBuffer = 100

// ErrTooManyListeners is returned when the listener limit has been reached.
var ErrTooManyListeners = errors.New("too many listeners")

// DroppedEvents is the number of events that could not be delivered because a listener was full.
var DroppedEvents = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tickets_events_dropped_total",
		Help: "Total number of ticket events dropped because a listener was not keeping up",
	},
	[]string{"kind"},
)

type listener struct {
	kinds map[Kind]bool
	ch    chan Event
}

// Bus fans events out to listeners. Publishing never blocks: an event is dropped for a listener whose buffer is
// full.
type Bus struct {
	l *slog.Logger

	mu           sync.RWMutex
	maxListeners int
	next         int
	listeners    map[int]*listener
}

// NewBus creates a bus that accepts at most maxListeners listeners. Zero or less means no limit.
func NewBus(l *slog.Logger, maxListeners int) *Bus {
	return &Bus{
		l:            l,
		maxListeners: maxListeners,
		listeners:    make(map[int]*listener),
	}
}

// Subscribe registers a listener for the given kinds, or every kind if none are given. The returned function
// removes the listener and closes its channel.
func (b *Bus) Subscribe(kinds ...Kind) (<-chan Event, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.maxListeners > 0 && len(b.listeners) >= b.maxListeners {
		return nil, nil, fmt.Errorf("%w: limit is %d", ErrTooManyListeners, b.maxListeners)
	}

	lis := &listener{
		ch: make(chan Event, DefaultBuffer),
	}
	if len(kinds) > 0 {
		lis.kinds = make(map[Kind]bool, len(kinds))
		for _, k := range kinds {
			lis.kinds[k] = true
		}
	}

	id := b.next
	b.next++
	b.listeners[id] = lis

	var once sync.Once
	return lis.ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.listeners, id)
			close(lis.ch)
		})
	}, nil
}

// Publish delivers e to every listener interested in its kind.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, lis := range b.listeners {
		if lis.kinds != nil && !lis.kinds[e.Kind] {
			continue
		}

		select {
		case lis.ch <- e:
		default:
			DroppedEvents.WithLabelValues(string(e.Kind)).Inc()
			b.l.Warn("Dropped event for slow listener",
				slog.String("kind", string(e.Kind)),
				slog.String("ticket", e.TicketID),
			)
		}
	}
}
