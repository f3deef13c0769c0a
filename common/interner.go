// Package common provides process-wide primitives shared by every pass of
// the toolchain: identifier interning and source spans.
package common

import "sync"

// Ident is an opaque handle into an Interner. Equality between two Idents
// issued by the same Interner is pointer-cheap integer comparison.
type Ident uint32

// Interner maps strings to stable, dense Ident handles. get_or_intern is
// total and idempotent: the same input string always yields the same
// handle. resolve is total for any handle the Interner issued. There is no
// eviction. Two Interners never share handles.
//
// Safe for concurrent GetOrIntern/Resolve calls from multiple goroutines,
// using the same mutex-guarded named-enum registry discipline as
// cgra.Side's sideNames/sideNamesMu.
type Interner struct {
	mu      sync.RWMutex
	strings []string
	byValue map[string]Ident
}

// NewInterner creates an empty interner.
func NewInterner() *Interner {
	return &Interner{
		byValue: make(map[string]Ident),
	}
}

// GetOrIntern returns the Ident for s, allocating a new one if s has never
// been interned by this Interner.
func (in *Interner) GetOrIntern(s string) Ident {
	in.mu.RLock()
	if id, ok := in.byValue[s]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()

	// Re-check: another goroutine may have interned s while we waited for
	// the write lock.
	if id, ok := in.byValue[s]; ok {
		return id
	}

	id := Ident(len(in.strings))
	in.strings = append(in.strings, s)
	in.byValue[s] = id
	return id
}

// Resolve returns the string that id was interned from. Panics if id was
// never issued by this Interner — the contract is "total for any handle
// the interner issued", not for arbitrary integers.
func (in *Interner) Resolve(id Ident) string {
	in.mu.RLock()
	defer in.mu.RUnlock()

	if int(id) >= len(in.strings) {
		panic("common: Ident not issued by this Interner")
	}
	return in.strings[id]
}

// Len returns the number of distinct strings interned so far.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.strings)
}
