// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for a single client.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, code string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[normalizeCode(code)]
	return s, ok
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, code string, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[normalizeCode(code)] = s
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, normalizeCode(code))
	return nil
}

var _ Store = (*MemoryStore)(nil)
