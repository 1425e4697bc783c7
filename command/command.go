// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package command adapts tile mementos to an undo stack.
//
// The stack itself lives outside this module; it only needs the Command
// interface. TileCommand records, through a memento, every tile written
// while it is open and swaps those tiles back on Unexecute.
package command

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gogpu/paintcore/tile"
)

// Command is an undoable edit.
type Command interface {
	Name() string
	Execute()
	Unexecute()
}

// TileCommand undoes and redoes the tile writes captured by a memento.
//
// A new command is applied: the writes it records are visible on the
// manager. Unexecute reverts them and Execute restores them; repeated
// calls in the same state do nothing.
type TileCommand struct {
	id      uuid.UUID
	name    string
	mem     *tile.Memento
	applied bool
}

// NewTileCommand starts capturing writes to mgr.
func NewTileCommand(name string, mgr *tile.Manager) *TileCommand {
	return &TileCommand{
		id:      uuid.New(),
		name:    name,
		mem:     mgr.NewMemento(),
		applied: true,
	}
}

// ID identifies the command to an external history.
func (c *TileCommand) ID() uuid.UUID { return c.id }

// Name returns the user-visible label.
func (c *TileCommand) Name() string { return c.name }

// Memento returns the memento holding the saved tiles.
func (c *TileCommand) Memento() *tile.Memento { return c.mem }

// Applied reports whether the recorded writes are currently visible.
func (c *TileCommand) Applied() bool { return c.applied }

// Finish stops recording. Writes made afterwards are not undone.
func (c *TileCommand) Finish() { c.mem.Finish() }

// Execute reapplies undone writes.
func (c *TileCommand) Execute() {
	if c.applied {
		return
	}
	c.mem.Swap()
	c.applied = true
}

// Unexecute reverts the recorded writes. It also stops recording.
func (c *TileCommand) Unexecute() {
	if !c.applied {
		c.mem.Finish()
		return
	}
	c.mem.Swap()
	c.applied = false
}

// MemSize returns the bytes held only by the command.
func (c *TileCommand) MemSize() int { return c.mem.MemSize() }

// Release drops the saved tiles. The command cannot be undone or redone
// afterwards.
func (c *TileCommand) Release() { c.mem.Release() }

func (c *TileCommand) String() string {
	return fmt.Sprintf("%s (%s, %d tiles)", c.name, c.id, len(c.mem.Saved()))
}
