// Package events is the in-process publish/subscribe layer used to tell
// listeners that visits or invoices changed.
package events

import (
	"sync"

	"salonpro-checkout/models"

	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	TopicInvoiceCommitted = "invoice:committed"
	TopicVisitChanged     = "visit:changed"
)

// InvoiceCommitted is published by the caller of checkout after a new
// invoice has been committed.
type InvoiceCommitted struct {
	SalonID uuid.UUID
	Invoice *models.Invoice
	Visit   *models.Visit
}

// VisitChanged carries the visit after any state or item change.
type VisitChanged struct {
	SalonID uuid.UUID
	Visit   *models.Visit
}

type Bus struct {
	bus EventBus.Bus

	mu       sync.Mutex
	nextID   int
	watchers map[int]watcher
}

type watcher struct {
	salonID uuid.UUID
	ch      chan VisitChanged
}

func NewBus() *Bus {
	b := &Bus{bus: EventBus.New(), watchers: make(map[int]watcher)}
	if err := b.bus.Subscribe(TopicVisitChanged, b.fanOut); err != nil {
		panic(err)
	}
	return b
}

// Subscribe registers fn asynchronously on topic and returns the function
// that removes it. EventBus identifies handlers by code pointer, so closures
// made from one literal cannot be removed individually; per-client listeners
// use Watch instead.
func (b *Bus) Subscribe(topic string, fn any) (func(), error) {
	if err := b.bus.SubscribeAsync(topic, fn, false); err != nil {
		return nil, err
	}
	return func() {
		if err := b.bus.Unsubscribe(topic, fn); err != nil {
			zap.L().Debug("unsubscribe", zap.String("topic", topic), zap.Error(err))
		}
	}, nil
}

func (b *Bus) OnInvoiceCommitted(fn func(InvoiceCommitted)) (func(), error) {
	return b.Subscribe(TopicInvoiceCommitted, fn)
}

func (b *Bus) OnVisitChanged(fn func(VisitChanged)) (func(), error) {
	return b.Subscribe(TopicVisitChanged, fn)
}

func (b *Bus) PublishInvoiceCommitted(e InvoiceCommitted) {
	b.bus.Publish(TopicInvoiceCommitted, e)
}

func (b *Bus) PublishVisitChanged(e VisitChanged) {
	b.bus.Publish(TopicVisitChanged, e)
}

// Wait blocks until every asynchronous handler has returned.
func (b *Bus) Wait() {
	b.bus.WaitAsync()
}

// Watch streams visit changes for one salon until the returned cancel func
// is called. Slow readers miss events rather than block publishers.
func (b *Bus) Watch(salonID uuid.UUID, buffer int) (<-chan VisitChanged, func()) {
	ch := make(chan VisitChanged, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.watchers[id] = watcher{salonID: salonID, ch: ch}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.watchers, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Bus) fanOut(e VisitChanged) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, w := range b.watchers {
		if w.salonID != e.SalonID {
			continue
		}
		select {
		case w.ch <- e:
		default:
		}
	}
}
