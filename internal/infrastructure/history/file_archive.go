package history

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// FileArchive appends history entries to a jsonl file.
type FileArchive struct {
	path string
	mu   sync.Mutex
}

// NewFileArchive archives into path.
func NewFileArchive(path string) *FileArchive {
	return &FileArchive{path: path}
}

// Append writes entries, one JSON document per line.
func (f *FileArchive) Append(_ context.Context, entries []domain.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	var buf bytes.Buffer
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return err
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, domain.SecureFilePermissions)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = file.Write(buf.Bytes())
	return err
}

// Load returns the last limit entries (all when limit <= 0), oldest first.
// Lines that do not decode are skipped.
func (f *FileArchive) Load(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []domain.HistoryEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry domain.HistoryEntry
		if err := json.Unmarshal(line, &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

// Path returns the backing file path.
func (f *FileArchive) Path() string {
	return f.path
}

// Close is a no-op; the file is opened per call.
func (f *FileArchive) Close() error {
	return nil
}

var _ ports.HistoryArchive = (*FileArchive)(nil)
