package tickets

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Jacobbrewer1/discordgo"
)

type collectorState int32

const (
	collectorAwaiting collectorState = iota
	collectorResolved
)

// collector waits for a single message that passes its filter. It resolves exactly once: with the first
// qualifying message, when the timeout expires, or when its context is cancelled, whichever happens first.
type collector struct {
	timeout time.Duration
	filter  func(m *discordgo.Message) bool
	state   atomic.Int32
}

func newCollector(timeout time.Duration, filter func(m *discordgo.Message) bool) *collector {
	return &collector{
		timeout: timeout,
		filter:  filter,
	}
}

// resolve moves the collector from awaiting to resolved. Only the first call returns true.
func (c *collector) resolve() bool {
	return c.state.CompareAndSwap(int32(collectorAwaiting), int32(collectorResolved))
}

func (c *collector) resolved() bool {
	return collectorState(c.state.Load()) == collectorResolved
}

// collect reads messages until one qualifies. Messages arriving after that are never looked at.
func (c *collector) collect(ctx context.Context, messages <-chan *discordgo.Message) (*discordgo.Message, error) {
	if c.resolved() {
		return nil, errCollectorResolved
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if c.resolve() {
				return nil, ctx.Err()
			}
			return nil, errCollectorResolved
		case <-timer.C:
			if c.resolve() {
				return nil, ErrCollectorTimeout
			}
			return nil, errCollectorResolved
		case m, ok := <-messages:
			if !ok {
				// The stream has ended, only the timer or the context can resolve now.
				messages = nil
				continue
			}
			if m == nil || !c.filter(m) {
				continue
			}
			if c.resolve() {
				return m, nil
			}
			return nil, errCollectorResolved
		}
	}
}
