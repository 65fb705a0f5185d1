// Package ledger is the expense store: per user, per ISO date, an append-only
// sequence of categorized amounts serialized as one JSON document.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Categories recognized by the expense command, in display order. The first
// three are meals and trigger the meal-description follow-up.
var Categories = []string{"早餐", "中餐", "晚餐", "娛樂"}

// IsMeal reports whether category is one of the meal categories.
func IsMeal(category string) bool {
	return category == "早餐" || category == "中餐" || category == "晚餐"
}

// Record is one expense entry. Immutable once written.
type Record struct {
	Category string `json:"category"`
	Amount   int    `json:"amount"`
}

// Totals is a per-category sum for one user and day.
type Totals struct {
	ByCategory map[string]int
	Total      int
}

// Store persists expense records and answers same-day totals.
type Store interface {
	RecordExpense(userID, category string, amount int) error
	TodayTotals(userID string) Totals
}

// store layout in the file: userID -> "YYYY-MM-DD" -> records.
type fileData map[string]map[string][]Record

// FileStore keeps the whole ledger in one JSON file and rewrites it on every
// append. Writes are serialized within the process by the mutex; a second
// process writing the same file still races and the last whole-file write
// wins. That contract is accepted for the single-user deployment this serves.
type FileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	return &FileStore{path: path, now: time.Now}, nil
}

// RecordExpense appends one record under (userID, today) and rewrites the
// file. The caller vouches for category and amount; nothing is validated
// beyond what the expense matcher already established.
func (s *FileStore) RecordExpense(userID, category string, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := s.loadUnlocked()
	date := s.today()
	if data[userID] == nil {
		data[userID] = make(map[string][]Record)
	}
	data[userID][date] = append(data[userID][date], Record{Category: category, Amount: amount})
	return s.saveUnlocked(data)
}

// TodayTotals sums today's records for userID by category. Every read
// failure — missing file, corrupt JSON, unknown user or date — reads as "no
// data"; this is best-effort by policy, not an error path.
func (s *FileStore) TodayTotals(userID string) Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := Totals{ByCategory: make(map[string]int)}
	data := s.loadUnlocked()
	for _, rec := range data[userID][s.today()] {
		totals.ByCategory[rec.Category] += rec.Amount
		totals.Total += rec.Amount
	}
	return totals
}

func (s *FileStore) today() string { return s.now().Format("2006-01-02") }

func (s *FileStore) loadUnlocked() fileData {
	data := make(fileData)
	b, err := os.ReadFile(s.path)
	if err != nil {
		return data
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return make(fileData)
	}
	return data
}

func (s *FileStore) saveUnlocked(data fileData) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open write: %w", err)
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
