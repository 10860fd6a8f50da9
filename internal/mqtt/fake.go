package mqtt

import (
	"sync"

	"github.com/sweeney/medclock/internal/logic"
)

// FakePublisher keeps everything handed to it in memory. Events and
// SystemEvents hold what was published, Payloads and SystemPayloads the
// encoded JSON at the same index. Setting PublishError or PublishSystemError
// makes the matching call fail without recording anything.
type FakePublisher struct {
	mu sync.Mutex

	Events   []logic.Event
	Payloads [][]byte

	SystemEvents   []SystemEvent
	SystemPayloads [][]byte

	PublishError       error
	PublishSystemError error

	Connected bool
	Closed    bool
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) Publish(event logic.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	b, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Events, f.Payloads = append(f.Events, event), append(f.Payloads, b)
	return nil
}

func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	b, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents, f.SystemPayloads = append(f.SystemEvents, event), append(f.SystemPayloads, b)
	return nil
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Types lists the recorded controller event types in publish order.
func (f *FakePublisher) Types() []logic.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]logic.EventType, 0, len(f.Events))
	for _, e := range f.Events {
		types = append(types, e.Type)
	}
	return types
}

// SystemTypes lists the recorded system event names in publish order.
func (f *FakePublisher) SystemTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.SystemEvents))
	for _, e := range f.SystemEvents {
		names = append(names, e.Event)
	}
	return names
}
