// Package transcript appends plain-text conversation logs per persona room.
// Rooms that opted in (velvet, persuade) get every exchange written as a
// timestamped block; the log is append-only and never read back by the
// service.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Recorder persists one exchange. Implementations must be safe for
// concurrent use.
type Recorder interface {
	AppendExchange(room, userInput, reply string) error
}

type FileRecorder struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

func NewFileRecorder(dir string) (*FileRecorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure log dir: %w", err)
	}
	return &FileRecorder{dir: dir, now: time.Now}, nil
}

// AppendExchange writes one block to <dir>/<room>_log.txt.
func (r *FileRecorder) AppendExchange(room, userInput, reply string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	path := filepath.Join(r.dir, room+"_log.txt")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open append: %w", err)
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	block := fmt.Sprintf("\n--- %s ---\nRubina（%s）：%s\nLumie：%s\n",
		r.now().Format("2006-01-02 15:04:05"), room, userInput, reply)
	if _, err := f.WriteString(block); err != nil {
		return fmt.Errorf("write block: %w", err)
	}
	return nil
}
