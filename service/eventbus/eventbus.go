package eventbus

import (
	"sync"

	"github.com/meridian-chain/corecontracts/base/ctx"
	"github.com/meridian-chain/corecontracts/base/log"
	"github.com/meridian-chain/corecontracts/domain"
	"github.com/meridian-chain/corecontracts/domain/event"
)

// Bus is an in-process append-only notification log implementing
// runtime.EventBus. Emission never fails from the caller's point of view;
// serialization problems are logged and swallowed.
type Bus struct {
	mu     sync.Mutex
	events []event.Event
}

func New() *Bus {
	return &Bus{}
}

func (b *Bus) Notify(ctx ctx.Ctx, kind domain.EventKind, addr domain.Address, data interface{}) {
	evt := event.New(kind, addr, data)
	if _, err := evt.Serialize(); err != nil {
		ctx.WithFields(log.Fields{
			"err":  err,
			"kind": kind,
		}).Warn("dropping unserializable event")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, evt)
}

// Events returns the emitted envelopes in order.
func (b *Bus) Events() []event.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]event.Event, len(b.events))
	copy(out, b.events)
	return out
}

// Reset clears the log.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}
