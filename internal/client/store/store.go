// Package store holds the in-memory resource stores the client views read.
//
// A Store keeps an ordered collection (server order, unique by id), an
// optional current entity and a set of loading flags. When the current entity
// is also part of the collection both slots point at the same value, so a
// merge through either one is visible through the other. Lookups are always
// by id.
//
// The mutex only covers state assignment. Callers perform network I/O outside
// the store and then publish the result, so of two overlapping fetches the one
// that completes last wins.
package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Identifiable is implemented by every resource entity.
type Identifiable interface {
	EntityID() string
}

// Flag names a fetch operation whose progress is tracked.
type Flag string

const (
	FlagList        Flag = "list"
	FlagCurrent     Flag = "current"
	FlagSettings    Flag = "settings"
	FlagFileContent Flag = "file_content"
)

// Op describes what changed in a Change notification.
type Op string

const (
	OpReplace Op = "replace"
	OpCurrent Op = "current"
	OpAppend  Op = "append"
	OpRemove  Op = "remove"
	OpMerge   Op = "merge"
	OpLoading Op = "loading"
)

type Change struct {
	Op Op
	ID string
}

type Store[T Identifiable] struct {
	name string

	mu      sync.RWMutex
	items   []*T
	current *T
	scope   string
	loading map[Flag]int

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// New returns an empty store. name only shows up in errors.
func New[T Identifiable](name string) *Store[T] {
	return &Store[T]{
		name:    name,
		loading: make(map[Flag]int),
		subs:    make(map[int]func(Change)),
	}
}

func idOf[T Identifiable](p *T) string {
	return (*p).EntityID()
}

func (s *Store[T]) indexOf(id string) int {
	for i, p := range s.items {
		if idOf(p) == id {
			return i
		}
	}
	return -1
}

// ReplaceAll swaps the collection for items and records the scope (for
// example the server id of a backup list). A current entity present in items
// takes the fresh values and stays shared with the collection.
func (s *Store[T]) ReplaceAll(scope string, items []T) {
	s.mu.Lock()
	next := make([]*T, 0, len(items))
	seen := make(map[string]int, len(items))
	for i := range items {
		v := items[i]
		id := v.EntityID()
		if at, dup := seen[id]; dup {
			*next[at] = v
			continue
		}

		var p *T
		if s.current != nil && idOf(s.current) == id {
			p = s.current
			*p = v
		} else {
			p = &v
		}
		seen[id] = len(next)
		next = append(next, p)
	}
	s.items = next
	s.scope = scope
	s.mu.Unlock()

	s.notify(Change{Op: OpReplace})
}

// SetCurrent replaces the current entity. nil clears it.
func (s *Store[T]) SetCurrent(v *T) {
	if v == nil {
		s.ClearCurrent()
		return
	}

	s.mu.Lock()
	val := *v
	id := val.EntityID()
	if i := s.indexOf(id); i >= 0 {
		*s.items[i] = val
		s.current = s.items[i]
	} else {
		s.current = &val
	}
	s.mu.Unlock()

	s.notify(Change{Op: OpCurrent, ID: id})
}

func (s *Store[T]) ClearCurrent() {
	s.mu.Lock()
	had := s.current != nil
	s.current = nil
	s.mu.Unlock()

	if had {
		s.notify(Change{Op: OpCurrent})
	}
}

// Append adds v to the end of the collection, or overwrites the entry with
// the same id.
func (s *Store[T]) Append(v T) {
	id := v.EntityID()

	s.mu.Lock()
	switch i := s.indexOf(id); {
	case i >= 0:
		*s.items[i] = v
	case s.current != nil && idOf(s.current) == id:
		*s.current = v
		s.items = append(s.items, s.current)
	default:
		s.items = append(s.items, &v)
	}
	s.mu.Unlock()

	s.notify(Change{Op: OpAppend, ID: id})
}

// Remove drops id from the collection and from current.
func (s *Store[T]) Remove(id string) bool {
	s.mu.Lock()
	removed := false
	kept := s.items[:0]
	for _, p := range s.items {
		if idOf(p) == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	for i := len(kept); i < len(s.items); i++ {
		s.items[i] = nil
	}
	s.items = kept

	if s.current != nil && idOf(s.current) == id {
		s.current = nil
		removed = true
	}
	s.mu.Unlock()

	if removed {
		s.notify(Change{Op: OpRemove, ID: id})
	}
	return removed
}

// targets returns the distinct slots holding id. Caller holds mu.
func (s *Store[T]) targets(id string) []*T {
	var out []*T
	if i := s.indexOf(id); i >= 0 {
		out = append(out, s.items[i])
	}
	if s.current != nil && idOf(s.current) == id && (len(out) == 0 || out[0] != s.current) {
		out = append(out, s.current)
	}
	return out
}

// Merge applies the JSON object patch to every slot holding id. Each field
// the patch carries replaces that field as a whole, maps and nested objects
// included; fields it does not mention keep their values. An "id" field in
// the patch is ignored. A patch that does not decode changes nothing. It
// reports whether any slot held id.
func (s *Store[T]) Merge(id string, patch []byte) (bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return false, fmt.Errorf("%s: decode patch for %s: %w", s.name, id, err)
	}
	for k := range fields {
		if strings.EqualFold(k, "id") {
			delete(fields, k)
		}
	}

	s.mu.Lock()
	targets := s.targets(id)
	merged := make([]T, len(targets))
	for i, p := range targets {
		v, err := overlay(p, fields)
		if err != nil {
			s.mu.Unlock()
			return false, fmt.Errorf("%s: merge %s: %w", s.name, id, err)
		}
		merged[i] = v
	}
	for i, p := range targets {
		*p = merged[i]
	}
	s.mu.Unlock()

	if len(targets) == 0 {
		return false, nil
	}
	s.notify(Change{Op: OpMerge, ID: id})
	return true, nil
}

// Update applies fn to every slot holding id.
func (s *Store[T]) Update(id string, fn func(*T)) bool {
	s.mu.Lock()
	targets := s.targets(id)
	for _, p := range targets {
		fn(p)
	}
	s.mu.Unlock()

	if len(targets) == 0 {
		return false
	}
	s.notify(Change{Op: OpMerge, ID: id})
	return true
}

// Track raises flag until the returned func is called. Overlapping fetches
// keep the flag up until the last one finishes.
func (s *Store[T]) Track(flag Flag) (done func()) {
	s.mu.Lock()
	s.loading[flag]++
	s.mu.Unlock()
	s.notify(Change{Op: OpLoading})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.loading[flag]--; s.loading[flag] <= 0 {
				delete(s.loading, flag)
			}
			s.mu.Unlock()
			s.notify(Change{Op: OpLoading})
		})
	}
}

func (s *Store[T]) IsLoading(flag Flag) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading[flag] > 0
}

// List returns a snapshot of the collection.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.items))
	for _, p := range s.items {
		out = append(out, clone(p))
	}
	return out
}

// Current returns a snapshot of the current entity, or nil.
func (s *Store[T]) Current() *T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	v := clone(s.current)
	return &v
}

// Get returns a snapshot of the collection entry with id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return clone(s.items[i]), true
	}
	var zero T
	return zero, false
}

// Scope returns the scope given to the last ReplaceAll.
func (s *Store[T]) Scope() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scope
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Subscribe registers fn for change notifications. fn runs on the goroutine
// that made the change, after the store lock is released.
func (s *Store[T]) Subscribe(fn func(Change)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store[T]) notify(c Change) {
	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
