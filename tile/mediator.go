// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tile

import (
	"sync"
	"sync/atomic"
)

// OwnerID identifies a tile owner (a Manager or a Memento) to a Mediator.
type OwnerID uint64

var nextOwner atomic.Uint64

// newOwnerID returns a process-unique owner identifier.
func newOwnerID() OwnerID {
	return OwnerID(nextOwner.Add(1))
}

// Mediator records which owners hold which tiles, and at which grid index.
//
// Managers that share tiles must share a Mediator. Attach and Detach keep a
// tile's share count equal to the number of owners that hold it.
//
// Thread safety: Mediator is safe for concurrent use.
type Mediator struct {
	mu     sync.Mutex
	owners map[*Tile]map[OwnerID]int
}

// NewMediator creates an empty mediator.
func NewMediator() *Mediator {
	return &Mediator{owners: make(map[*Tile]map[OwnerID]int)}
}

// Attach records that owner holds t at index and increments the tile's
// share count. Attaching an owner twice only updates the index.
func (md *Mediator) Attach(t *Tile, owner OwnerID, index int) {
	md.mu.Lock()
	defer md.mu.Unlock()

	m := md.owners[t]
	if m == nil {
		m = make(map[OwnerID]int, 1)
		md.owners[t] = m
	}
	if _, ok := m[owner]; !ok {
		t.ShareRef()
	}
	m[owner] = index
}

// Detach removes owner from t and decrements the tile's share count.
// Detaching an owner that does not hold t is a no-op. Returns the share
// count after the call.
func (md *Mediator) Detach(t *Tile, owner OwnerID) int32 {
	md.mu.Lock()
	defer md.mu.Unlock()

	m := md.owners[t]
	if _, ok := m[owner]; !ok {
		return t.ShareCount()
	}
	delete(m, owner)
	if len(m) == 0 {
		delete(md.owners, t)
	}
	return t.ShareRelease()
}

// Index returns the grid index at which owner holds t.
func (md *Mediator) Index(t *Tile, owner OwnerID) (int, bool) {
	md.mu.Lock()
	defer md.mu.Unlock()

	idx, ok := md.owners[t][owner]
	return idx, ok
}

// Owners returns the number of owners holding t.
func (md *Mediator) Owners(t *Tile) int {
	md.mu.Lock()
	defer md.mu.Unlock()

	return len(md.owners[t])
}

// Len returns the number of tiles with at least one owner.
func (md *Mediator) Len() int {
	md.mu.Lock()
	defer md.mu.Unlock()

	return len(md.owners)
}
