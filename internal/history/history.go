// Package history holds per-chat conversation turns and persists them
// between runs.
package history

import (
	"strconv"
	"sync"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation. Reasoning carries the hidden
// segment of an assistant turn so that prompt reconstruction can
// reinsert it between the think markers.
type Turn struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Reasoning string `json:"reasoning,omitempty"`
}

type Manager struct {
	mu            sync.RWMutex
	conversations map[int64][]Turn
	repo          Repository
	maxPairs      int
}

// NewManager loads the stored conversations wholesale. A nil repo
// keeps everything in memory only.
func NewManager(repo Repository, maxPairs int) (*Manager, error) {
	m := &Manager{
		conversations: make(map[int64][]Turn),
		repo:          repo,
		maxPairs:      maxPairs,
	}
	if repo != nil {
		stored, err := repo.Load()
		if err != nil {
			return nil, err
		}
		for key, turns := range stored {
			chatID, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				continue
			}
			m.conversations[chatID] = turns
		}
	}
	return m, nil
}

// Get returns a copy of the chat's turns.
func (m *Manager) Get(chatID int64) []Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	turns := m.conversations[chatID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Commit appends a completed exchange, trims the window and rewrites
// the store. An aborted exchange never reaches Commit, so the store is
// untouched by failures.
func (m *Manager) Commit(chatID int64, user, assistant Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	turns := append(m.conversations[chatID], user, assistant)
	m.conversations[chatID] = trimTurns(turns, m.maxPairs)
	return m.saveLocked()
}

// Reset drops the chat's conversation and persists the removal.
func (m *Manager) Reset(chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conversations, chatID)
	return m.saveLocked()
}

// Maintain re-trims every conversation and flushes the store. Wired to
// the cron scheduler.
func (m *Manager) Maintain() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for chatID, turns := range m.conversations {
		m.conversations[chatID] = trimTurns(turns, m.maxPairs)
	}
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	if m.repo == nil {
		return nil
	}
	out := make(map[string][]Turn, len(m.conversations))
	for chatID, turns := range m.conversations {
		out[strconv.FormatInt(chatID, 10)] = turns
	}
	return m.repo.Save(out)
}

// trimTurns keeps at most 2*maxPairs of the most recent turns, then
// advances the start past any leading assistant turns so the window
// never opens mid-pair.
func trimTurns(turns []Turn, maxPairs int) []Turn {
	limit := 2 * maxPairs
	if len(turns) <= limit {
		return turns
	}
	trimmed := turns[len(turns)-limit:]
	start := 0
	for start < len(trimmed) && trimmed[start].Role != RoleUser {
		start++
	}
	return trimmed[start:]
}
