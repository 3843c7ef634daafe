package timeline

import "sync"

// Expansion tracks which sections of the current lookup are expanded. The
// state belongs to one lookup: presenting a different serial clears it.
type Expansion struct {
	mu     sync.Mutex
	serial string
	open   map[int]bool
}

// Reset collapses every section and binds the state to a fresh lookup of
// serial.
func (e *Expansion) Reset(serial string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.serial = serial
	e.open = map[int]bool{}
}

// Follow keeps the state when serial is the lookup already shown and resets
// it otherwise. It reports whether a reset happened.
func (e *Expansion) Follow(serial string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if serial == e.serial && e.open != nil {
		return false
	}
	e.serial = serial
	e.open = map[int]bool{}
	return true
}

// Serial returns the lookup the state belongs to.
func (e *Expansion) Serial() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.serial
}

// Toggle flips section i and returns its new state.
func (e *Expansion) Toggle(i int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.open == nil {
		e.open = map[int]bool{}
	}
	e.open[i] = !e.open[i]
	return e.open[i]
}

// Expanded reports whether section i is expanded.
func (e *Expansion) Expanded(i int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open[i]
}
