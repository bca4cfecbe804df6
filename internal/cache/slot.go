// Package cache provides the single durable slot the simulation service
// persists its message log into. The slot is overwritten wholesale after
// every mutation and read once at service construction.
package cache

import "context"

// SlotKey is the fixed key the message log lives under.
const SlotKey = "nexus_messages"

// Slot is a durable single-document store. Load returns (nil, nil) when the
// slot has never been written.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Store(ctx context.Context, data []byte) error
}
