// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gogpu/paintcore/tile"
)

// ErrNotFound is returned when a named stream does not exist.
var ErrNotFound = errors.New("store: stream not found")

// ErrName is returned for stream names that are empty or contain path
// separators.
var ErrName = errors.New("store: invalid stream name")

// Container holds named streams, one per serialized plane.
type Container interface {
	// Create starts writing stream name. The stream replaces any previous
	// one of the same name when the writer is closed.
	Create(name string) (io.WriteCloser, error)

	// Open reads stream name.
	Open(name string) (io.ReadCloser, error)

	// Names lists the streams in lexical order.
	Names() ([]string, error)

	// Remove deletes stream name.
	Remove(name string) error
}

const streamExt = ".tiles"

// DirContainer stores each stream as a file in a directory. Writes go to
// a temporary file that is renamed into place on Close, so readers never
// see a partial stream.
type DirContainer struct {
	dir string
}

// NewDirContainer opens a container rooted at dir, creating it if needed.
func NewDirContainer(dir string) (*DirContainer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create container directory: %w", err)
	}
	return &DirContainer{dir: dir}, nil
}

// Dir returns the container directory.
func (c *DirContainer) Dir() string { return c.dir }

func (c *DirContainer) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrName, name)
	}
	return filepath.Join(c.dir, name+streamExt), nil
}

func (c *DirContainer) Create(name string) (io.WriteCloser, error) {
	p, err := c.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(c.dir, name+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("store: create %q: %w", name, err)
	}
	return &atomicFile{File: f, final: p}, nil
}

func (c *DirContainer) Open(name string) (io.ReadCloser, error) {
	p, err := c.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", name, err)
	}
	return f, nil
}

func (c *DirContainer) Names() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", c.dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), streamExt); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

func (c *DirContainer) Remove(name string) error {
	p, err := c.path(name)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("store: remove %q: %w", name, err)
	}
	return nil
}

// Save writes mgr to stream name of c. A failed write leaves any previous
// stream in place when the container supports aborting.
func Save(c Container, name string, mgr *tile.Manager) error {
	w, err := c.Create(name)
	if err != nil {
		return err
	}
	if err := Write(w, mgr); err != nil {
		if a, ok := w.(interface{ Abort() error }); ok {
			_ = a.Abort()
		} else {
			_ = w.Close()
		}
		return fmt.Errorf("store: save %q: %w", name, err)
	}
	return w.Close()
}

// Load reads stream name of c.
func Load(c Container, name string, opts ...tile.Option) (*tile.Manager, error) {
	r, err := c.Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	mgr, err := Read(r, opts...)
	if err != nil {
		return nil, fmt.Errorf("store: load %q: %w", name, err)
	}
	return mgr, nil
}

// atomicFile renames itself to final when closed.
type atomicFile struct {
	*os.File
	final  string
	closed bool
}

func (f *atomicFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	tmp := f.Name()
	if err := f.File.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("store: close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("store: rename %s: %w", f.final, err)
	}
	return nil
}

// Abort discards the temporary file.
func (f *atomicFile) Abort() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.File.Close()
	return os.Remove(f.Name())
}
