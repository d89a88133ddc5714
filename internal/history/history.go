/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package history provides a linear undo/redo engine over whole-value
// snapshots of an arbitrary state type.
package history

import (
	"fmt"
	"sync"

	"github.com/tiendc/go-deepcopy"
)

// Config controls depth caps.
type Config struct {
	// MaxDepth bounds the undo stack; the oldest entries are discarded once it
	// is exceeded, so the very first states become unreachable. 0 means
	// unbounded.
	MaxDepth int
}

// Cloner returns an independent copy of a state value.
type Cloner[T any] func(T) (T, error)

// Engine holds past, present and future states. Set and Update are the only
// operations that discard the redo stack. It is safe for concurrent use;
// each operation is atomic with respect to readers.
type Engine[T any] struct {
	cfg   Config
	clone Cloner[T]

	mu      sync.RWMutex
	past    []T
	present T
	// future is stored top-last: the next redo target is the final element.
	future []T
}

// New creates an engine holding initial as its present state. Snapshots are
// deep copies made with go-deepcopy.
func New[T any](initial T, cfg Config) *Engine[T] {
	return NewWithCloner(initial, cfg, DeepCopy[T])
}

// NewWithCloner is New with a custom snapshot function.
func NewWithCloner[T any](initial T, cfg Config, clone Cloner[T]) *Engine[T] {
	if cfg.MaxDepth < 0 {
		cfg.MaxDepth = 0
	}
	if clone == nil {
		clone = DeepCopy[T]
	}
	return &Engine[T]{cfg: cfg, clone: clone, present: initial}
}

// DeepCopy clones any value with github.com/tiendc/go-deepcopy.
func DeepCopy[T any](v T) (T, error) {
	var out T
	if err := deepcopy.Copy(&out, v); err != nil {
		return out, fmt.Errorf("deep copy snapshot: %w", err)
	}
	return out, nil
}

// Set installs v as the present state. Ownership of v passes to the engine.
func (e *Engine[T]) Set(v T) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pushPastLocked(e.present)
	e.present = v
	e.future = nil
}

// Update computes the next state from a private copy of the present one, so
// fn may mutate its argument. fn runs under the engine lock and must not call
// back into the engine. If the snapshot cannot be taken nothing changes.
func (e *Engine[T]) Update(fn func(prev T) T) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	work, err := e.clone(e.present)
	if err != nil {
		return err
	}
	next := fn(work)
	e.pushPastLocked(e.present)
	e.present = next
	e.future = nil
	return nil
}

// Undo restores the previous state. It reports false when there is nothing
// to undo.
func (e *Engine[T]) Undo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := len(e.past)
	if n == 0 {
		return false
	}
	prev := e.past[n-1]
	var zero T
	e.past[n-1] = zero
	e.past = e.past[:n-1]
	e.future = append(e.future, e.present)
	e.present = prev
	return true
}

// Redo re-applies the most recently undone state. It reports false when
// there is nothing to redo.
func (e *Engine[T]) Redo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := len(e.future)
	if n == 0 {
		return false
	}
	next := e.future[n-1]
	var zero T
	e.future[n-1] = zero
	e.future = e.future[:n-1]
	e.pushPastLocked(e.present)
	e.present = next
	return true
}

func (e *Engine[T]) CanUndo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.past) > 0
}

func (e *Engine[T]) CanRedo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.future) > 0
}

// Present returns the current state. The value shares memory with the
// engine's snapshot and must be treated as read-only; use Snapshot for a copy
// that may be modified.
func (e *Engine[T]) Present() T {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.present
}

// Snapshot returns a deep copy of the present state.
func (e *Engine[T]) Snapshot() (T, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.clone(e.present)
}

// Depth returns the sizes of the undo and redo stacks for diagnostics.
func (e *Engine[T]) Depth() (past int, future int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.past), len(e.future)
}

func (e *Engine[T]) pushPastLocked(v T) {
	e.past = append(e.past, v)
	if e.cfg.MaxDepth > 0 && len(e.past) > e.cfg.MaxDepth {
		// drop the oldest extras
		toDrop := len(e.past) - e.cfg.MaxDepth
		e.past = append([]T(nil), e.past[toDrop:]...)
	}
}
