// Package events defines the structured domain events the engine emits and
// the sink they are delivered to.
package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/vaultlane/custody/pkg/address"
	"github.com/vaultlane/custody/pkg/hash"

	"github.com/tokenized/pkg/logger"
)

// Event is a structured domain event.
type Event interface {
	Name() string
}

// Sink receives emitted events. Delivery happens inside the call that caused
// the event; sinks must not fail the call.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// HolderCreated is emitted when a holder record is first persisted.
type HolderCreated struct {
	HolderID     hash.Hash       `json:"holder_id"`
	Symbol       string          `json:"symbol"`
	OwnerAddress address.Address `json:"owner_address"`
}

func (HolderCreated) Name() string { return "HolderCreated" }

// AssetMovedToMainAddress is emitted when funds move from a virtual address
// into the holder's main address.
type AssetMovedToMainAddress struct {
	HolderID hash.Hash       `json:"holder_id"`
	From     address.Address `json:"from"`
	Amount   int64           `json:"amount"`
}

func (AssetMovedToMainAddress) Name() string { return "AssetMovedToMainAddress" }

// AssetMovedFromMainAddress is emitted when funds move from the holder's main
// address out to a virtual address.
type AssetMovedFromMainAddress struct {
	HolderID hash.Hash       `json:"holder_id"`
	To       address.Address `json:"to"`
	Amount   int64           `json:"amount"`
}

func (AssetMovedFromMainAddress) Name() string { return "AssetMovedFromMainAddress" }

// WithdrawRequested is emitted when a withdrawal request is opened.
type WithdrawRequested struct {
	HolderID        hash.Hash       `json:"holder_id"`
	WithdrawID      hash.Hash       `json:"withdraw_id"`
	Amount          int64           `json:"amount"`
	RequestAddress  address.Address `json:"request_address"`
	WithdrawAddress address.Address `json:"withdraw_address"`
}

func (WithdrawRequested) Name() string { return "WithdrawRequested" }

// WithdrawReleased is emitted when a withdrawal reaches its approval
// threshold and the funds transfer out.
type WithdrawReleased struct {
	HolderID        hash.Hash       `json:"holder_id"`
	WithdrawID      hash.Hash       `json:"withdraw_id"`
	Amount          int64           `json:"amount"`
	WithdrawAddress address.Address `json:"withdraw_address"`
}

func (WithdrawReleased) Name() string { return "WithdrawReleased" }

// LogSink writes events to the context logger as JSON.
type LogSink struct{}

// Emit implements Sink.
func (LogSink) Emit(ctx context.Context, event Event) {
	b, err := json.Marshal(event)
	if err != nil {
		logger.Error(ctx, "Failed to marshal event %s : %s", event.Name(), err)
		return
	}
	logger.Info(ctx, "Event %s : %s", event.Name(), b)
}

// Capture collects emitted events in memory for tests.
type Capture struct {
	mu     sync.Mutex
	events []Event
}

// NewCapture returns an empty capture sink.
func NewCapture() *Capture {
	return &Capture{}
}

// Emit implements Sink.
func (c *Capture) Emit(ctx context.Context, event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

// All returns every captured event in emission order.
func (c *Capture) All() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]Event, len(c.events))
	copy(result, c.events)
	return result
}

// Named returns the captured events with the given name.
func (c *Capture) Named(name string) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result []Event
	for _, e := range c.events {
		if e.Name() == name {
			result = append(result, e)
		}
	}
	return result
}

// Reset drops all captured events.
func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}
