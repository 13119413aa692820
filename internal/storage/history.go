package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/onursal82-hash/Vortexbot/internal/model"
)

// HistoryLimit caps the durable trade log; newest entries win.
const HistoryLimit = 1000

type historyDocument struct {
	Entries []model.HistoryEntry `json:"entries"`
}

// HistoryLog is the append-only durable trade record, kept in its own file so
// frequent trade events never force a rewrite of the full ledger document.
type HistoryLog struct {
	mu   sync.Mutex
	path string
}

func NewHistoryLog(path string) *HistoryLog {
	return &HistoryLog{path: path}
}

// Append adds entries at the head of the log and rewrites the file, trimming
// the oldest entries past the cap.
func (h *HistoryLog) Append(entries []model.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	existing, err := h.readLocked()
	if err != nil {
		return err
	}

	merged := make([]model.HistoryEntry, 0, len(entries)+len(existing))
	merged = append(merged, entries...)
	merged = append(merged, existing...)
	if len(merged) > HistoryLimit {
		merged = merged[:HistoryLimit]
	}
	return atomicWriteJSON(h.path, historyDocument{Entries: merged})
}

// Recent returns up to n entries, newest first.
func (h *HistoryLog) Recent(n int) ([]model.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := h.readLocked()
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

func (h *HistoryLog) readLocked() ([]model.HistoryEntry, error) {
	raw, err := os.ReadFile(h.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", h.path, err)
	}

	doc := historyDocument{}
	if err := json.Unmarshal(raw, &doc); err == nil {
		return doc.Entries, nil
	}

	// Older releases wrote a bare array.
	var bare []model.HistoryEntry
	if err := json.Unmarshal(raw, &bare); err != nil {
		return nil, fmt.Errorf("parse %s: unrecognized history shape", h.path)
	}
	return bare, nil
}
