package console

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Workspaces keeps per-session UI state (one CRUD controller per entity page,
// the stock lookup expansion state) in memory and evicts it once idle.
type Workspaces struct {
	mu    sync.Mutex
	idle  time.Duration
	now   func() time.Time
	items map[string]*slot
}

type slot struct {
	value    any
	lastUsed time.Time
}

// NewWorkspaces constructs a registry evicting entries idle for longer than
// idle. A non-positive idle disables eviction.
func NewWorkspaces(idle time.Duration) *Workspaces {
	return &Workspaces{idle: idle, now: time.Now, items: make(map[string]*slot)}
}

func workspaceKey(session, name string) string {
	return session + "|" + name
}

// acquire returns the value stored for session and name, building it when
// missing. The second result reports whether it was built.
func acquire[V any](ws *Workspaces, session, name string, build func() V) (V, bool) {
	key := workspaceKey(session, name)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if s, ok := ws.items[key]; ok {
		if v, ok := s.value.(V); ok {
			s.lastUsed = ws.now()
			return v, false
		}
	}
	v := build()
	ws.items[key] = &slot{value: v, lastUsed: ws.now()}
	return v, true
}

// Drop forgets everything held for session.
func (ws *Workspaces) Drop(session string) {
	prefix := session + "|"
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for key := range ws.items {
		if strings.HasPrefix(key, prefix) {
			delete(ws.items, key)
		}
	}
}

// Sweep evicts idle entries and returns how many were removed.
func (ws *Workspaces) Sweep() int {
	if ws.idle <= 0 {
		return 0
	}
	cutoff := ws.now().Add(-ws.idle)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	removed := 0
	for key, s := range ws.items {
		if s.lastUsed.Before(cutoff) {
			delete(ws.items, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of live entries.
func (ws *Workspaces) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.items)
}

// Run sweeps on every interval until ctx is cancelled.
func (ws *Workspaces) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || ws.idle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ws.Sweep()
		}
	}
}
