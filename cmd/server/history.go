package main

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DanieloDark/philemma"
)

// historyEntry records one batch analysis.
type historyEntry struct {
	ID             string           `json:"id"`
	Text           string           `json:"text"`
	Dialect        philemma.Dialect `json:"dialect"`
	Lemmas         []string         `json:"lemmas"`
	IrregularCount int              `json:"irregularCount"`
	TokenCount     int              `json:"tokenCount"`
	Timestamp      time.Time        `json:"timestamp"`
}

// historyStore keeps the most recent analyses in memory. Once full the
// oldest entry is dropped. A store of size 0 records nothing.
type historyStore struct {
	mu      sync.Mutex
	size    int
	entries []historyEntry
	now     func() time.Time
}

func newHistoryStore(size int) *historyStore {
	return &historyStore{size: size, now: time.Now}
}

// Add appends an entry for ta and returns it.
func (h *historyStore) Add(ta *philemma.TextAnalysis) historyEntry {
	lemmas := ta.Lemmas()
	if lemmas == nil {
		lemmas = []string{}
	}
	e := historyEntry{
		ID:             uuid.NewString(),
		Text:           ta.Text,
		Dialect:        ta.Dialect,
		Lemmas:         lemmas,
		IrregularCount: ta.IrregularCount(),
		TokenCount:     len(ta.Tokens),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	e.Timestamp = h.now().UTC()
	if h.size <= 0 {
		return e
	}
	if len(h.entries) == h.size {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, e)
	return e
}

// Recent returns up to limit entries, newest first. A limit of 0
// returns everything.
func (h *historyStore) Recent(limit int) []historyEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]historyEntry, 0, n)
	for i := len(h.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h.entries[i])
	}
	return out
}
