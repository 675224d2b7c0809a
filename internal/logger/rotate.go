package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// maxLogFileBytes is the rotation threshold: once
// a day's log file reaches this size, it is rotated to "YYYY-MM-DD.N.log"
// and a fresh file is opened.
const maxLogFileBytes = 10 * 1024 * 1024

// RotatingFile is a zapcore.WriteSyncer that writes to
// "{dir}/YYYY-MM-DD.log", rotating to "YYYY-MM-DD.N.log" (next free N) once
// the current day's file reaches maxLogFileBytes. No library in the
// reference corpus reproduces this exact naming scheme, so it is
// hand-written; see DESIGN.md.
type RotatingFile struct {
	mu      sync.Mutex
	dir     string
	day     string
	file    *os.File
	written int64
}

// NewRotatingFile opens (or creates) today's log file under dir.
func NewRotatingFile(dir string) (*RotatingFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	rf := &RotatingFile{dir: dir}
	if err := rf.openForToday(); err != nil {
		return nil, err
	}

	return rf, nil
}

func (rf *RotatingFile) openForToday() error {
	day := time.Now().Format("2006-01-02")

	path := filepath.Join(rf.dir, day+".log")

	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}

	rf.file = f
	rf.day = day
	rf.written = info.Size()

	return nil
}

// Write implements io.Writer / zapcore.WriteSyncer.
func (rf *RotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if err := rf.rotateIfNeeded(len(p)); err != nil {
		return 0, err
	}

	n, err := rf.file.Write(p)
	rf.written += int64(n)

	return n, err
}

// Sync implements zapcore.WriteSyncer.
func (rf *RotatingFile) Sync() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	return rf.file.Sync()
}

// Close closes the underlying file.
func (rf *RotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	return rf.file.Close()
}

func (rf *RotatingFile) rotateIfNeeded(nextWriteLen int) error {
	today := time.Now().Format("2006-01-02")
	if today != rf.day {
		if err := rf.file.Close(); err != nil {
			return fmt.Errorf("close previous log file: %w", err)
		}

		return rf.openForToday()
	}

	if rf.written+int64(nextWriteLen) < maxLogFileBytes {
		return nil
	}

	if err := rf.file.Close(); err != nil {
		return fmt.Errorf("close log file for rotation: %w", err)
	}

	basePath := filepath.Join(rf.dir, rf.day+".log")

	for n := 1; ; n++ {
		candidate := filepath.Join(rf.dir, fmt.Sprintf("%s.%d.log", rf.day, n))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			if err := os.Rename(basePath, candidate); err != nil {
				return fmt.Errorf("rotate log file: %w", err)
			}

			break
		}
	}

	f, err := os.OpenFile(filepath.Clean(basePath), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create fresh log file: %w", err)
	}

	rf.file = f
	rf.written = 0

	return nil
}
