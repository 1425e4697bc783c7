// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package colorspace

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/text/cases"
)

// ErrDuplicate is returned when a strategy is registered twice for the
// same kind or name.
var ErrDuplicate = errors.New("colorspace: strategy already registered")

// Registry maps kinds and names to the strategy flyweights. Create one
// with NewRegistry and pass it to whatever needs to resolve colour models.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byKind map[Kind]Strategy
	byName map[string]Strategy
}

// NewRegistry creates a registry holding the RGBA, CMYKA, GrayA and
// AlphaMask strategies.
func NewRegistry() *Registry {
	r := &Registry{
		byKind: make(map[Kind]Strategy),
		byName: make(map[string]Strategy),
	}
	for _, s := range []Strategy{NewRGBA(), NewCMYKA(), NewGrayA(), NewAlphaMask()} {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds s under its Kind and Name.
func (r *Registry) Register(s Strategy) error {
	name := cases.Fold().String(s.Name())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byKind[s.Kind()]; ok {
		return fmt.Errorf("%w: kind %v", ErrDuplicate, s.Kind())
	}
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("%w: name %q", ErrDuplicate, s.Name())
	}
	r.byKind[s.Kind()] = s
	r.byName[name] = s
	return nil
}

// Get returns the strategy for kind.
func (r *Registry) Get(kind Kind) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byKind[kind]
	return s, ok
}

// ByName returns the strategy registered under name. Matching ignores
// case.
func (r *Registry) ByName(name string) (Strategy, bool) {
	folded := cases.Fold().String(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byName[folded]
	return s, ok
}

// Kinds returns the registered kinds in ascending order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.byKind))
	for k := range r.byKind {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}
