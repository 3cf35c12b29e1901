package audit

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Event types recorded in the history.
const (
	EventPatchApplied  = "patch_applied"
	EventPatchFailed   = "patch_failed"
	EventRestored      = "restored"
	EventRestoreFailed = "restore_failed"
)

const genesisHash = "genesis"

// Entry is a single history record.
type Entry struct {
	Timestamp string         `json:"timestamp"`
	EventType string         `json:"eventType"`
	Details   map[string]any `json:"details,omitempty"`
	PrevHash  string         `json:"prevHash"`
	EntryHash string         `json:"entryHash"`
}

// Logger appends tamper-evident JSONL history entries linked by a SHA-256
// hash chain. Reopening an existing file continues its chain.
type Logger struct {
	mu       sync.Mutex
	log      *slog.Logger
	file     *os.File
	filePath string
	prevHash string
	dropped  atomic.Int64
}

// NewLogger opens (or creates) the history file at path.
func NewLogger(path string, log *slog.Logger) (*Logger, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	prevHash := genesisHash
	entries, err := ReadEntries(path)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		prevHash = entries[len(entries)-1].EntryHash
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	return &Logger{
		log:      log,
		file:     f,
		filePath: path,
		prevHash: prevHash,
	}, nil
}

// Log writes one entry and fsyncs it. The chain only advances after a
// successful write. Safe to call on a nil receiver (no-op).
func (l *Logger) Log(eventType string, details map[string]any) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		EventType: eventType,
		Details:   details,
		PrevHash:  l.prevHash,
	}

	entryHash, err := computeHash(entry)
	if err != nil {
		l.log.Error("failed to compute history entry hash", "error", err, "eventType", eventType)
		l.dropped.Add(1)
		return
	}
	entry.EntryHash = entryHash

	data, err := json.Marshal(entry)
	if err != nil {
		l.log.Error("failed to marshal history entry", "error", err, "eventType", eventType)
		l.dropped.Add(1)
		return
	}
	data = append(data, '\n')

	if _, err := l.file.Write(data); err != nil {
		l.log.Error("failed to write history entry", "error", err, "eventType", eventType)
		l.dropped.Add(1)
		return
	}
	l.prevHash = entry.EntryHash

	if err := l.file.Sync(); err != nil {
		l.log.Warn("failed to fsync history entry", "error", err)
	}
}

// Close closes the history file. Safe to call on a nil receiver.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// DroppedCount returns how many entries failed to write, or -1 for a nil logger.
func (l *Logger) DroppedCount() int64 {
	if l == nil {
		return -1
	}
	return l.dropped.Load()
}

// ReadEntries loads every entry of a history file. A missing file is empty.
func ReadEntries(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("history line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}

// Verify checks every entry hash and the links between entries.
func Verify(entries []Entry) error {
	prev := genesisHash
	for i, e := range entries {
		if e.PrevHash != prev {
			return fmt.Errorf("entry %d: prevHash %q does not link to %q", i, e.PrevHash, prev)
		}
		want, err := computeHash(e)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if e.EntryHash != want {
			return fmt.Errorf("entry %d: hash mismatch", i)
		}
		prev = e.EntryHash
	}
	return nil
}

// computeHash length-prefixes each field so values cannot collide by
// shifting a delimiter between fields.
func computeHash(entry Entry) (string, error) {
	h := sha256.New()
	for _, field := range []string{entry.Timestamp, entry.EventType, entry.PrevHash} {
		fmt.Fprintf(h, "%d:%s", len(field), field)
	}
	if entry.Details != nil {
		detailBytes, err := json.Marshal(entry.Details)
		if err != nil {
			return "", fmt.Errorf("marshal details for hash: %w", err)
		}
		fmt.Fprintf(h, "%d:", len(detailBytes))
		h.Write(detailBytes)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
