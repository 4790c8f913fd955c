package history

import (
	"fmt"
	"strings"
	"time"
)

// Entry is one recorded command line
type Entry struct {
	Command   string
	Timestamp time.Time
}

// Manager keeps the append-only command history of a single session.
// Entries live for the lifetime of the session and are never persisted.
type Manager struct {
	entries []Entry
	now     func() time.Time
}

// NewManager creates an empty history
func NewManager() *Manager {
	return &Manager{
		entries: make([]Entry, 0),
		now:     time.Now,
	}
}

// Add records a command line verbatim
func (m *Manager) Add(command string) {
	m.entries = append(m.entries, Entry{
		Command:   command,
		Timestamp: m.now(),
	})
}

// Len returns the number of recorded commands
func (m *Manager) Len() int {
	return len(m.entries)
}

// Entries returns a snapshot of the recorded entries in invocation order
func (m *Manager) Entries() []Entry {
	snapshot := make([]Entry, len(m.entries))
	copy(snapshot, m.entries)
	return snapshot
}

// Commands returns a snapshot of the recorded command lines in invocation order
func (m *Manager) Commands() []string {
	commands := make([]string, len(m.entries))
	for i, entry := range m.entries {
		commands[i] = entry.Command
	}
	return commands
}

// Format renders the history as a 1-indexed listing, one command per line
func (m *Manager) Format() string {
	lines := make([]string, len(m.entries))
	for i, entry := range m.entries {
		lines[i] = fmt.Sprintf("%4d %s", i+1, entry.Command)
	}
	return strings.Join(lines, "\n")
}
