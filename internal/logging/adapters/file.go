package adapters

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"autojobfinder/internal/logging/types"
)

const backupTimeLayout = "20060102-150405.000"

// FileAdapter writes entries to a file, rotating it by size. Rotated files
// are renamed with a timestamp suffix and optionally gzip-compressed; at most
// MaxBackups of them are kept.
type FileAdapter struct {
	name        string
	config      FileConfig
	currentFile *os.File
	currentSize int64
	mu          sync.Mutex
	now         func() time.Time
}

// FileConfig represents configuration for the file adapter
type FileConfig struct {
	FilePath   string      // path to log file
	Format     string      // json or text
	MaxSize    int64       // rotate once the file reaches this many bytes (0 = never)
	MaxBackups int         // rotated files to keep (0 = discard on rotation)
	Compress   bool        // gzip rotated files
	FileMode   os.FileMode // defaults to 0644
}

// NewFileAdapter creates the parent directory and opens the log file for appending
func NewFileAdapter(name string, config FileConfig) (*FileAdapter, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("file path is required")
	}
	if config.FileMode == 0 {
		config.FileMode = 0644
	}
	if config.Format == "" {
		config.Format = "text"
	}

	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	adapter := &FileAdapter{name: name, config: config, now: time.Now}
	if err := adapter.openFile(); err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return adapter, nil
}

func (a *FileAdapter) Write(entry *types.LogEntry) error {
	output, err := formatEntry(entry, a.config.Format, false)
	if err != nil {
		return fmt.Errorf("failed to format log entry: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.currentFile == nil {
		return fmt.Errorf("log file %s is closed", a.config.FilePath)
	}

	if a.config.MaxSize > 0 && a.currentSize >= a.config.MaxSize {
		if err := a.rotate(); err != nil {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	n, err := a.currentFile.WriteString(output + "\n")
	a.currentSize += int64(n)
	if err != nil {
		return fmt.Errorf("failed to write to log file: %w", err)
	}
	return nil
}

func (a *FileAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.currentFile == nil {
		return nil
	}
	err := a.currentFile.Close()
	a.currentFile = nil
	if err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

func (a *FileAdapter) Name() string {
	return a.name
}

// Backups lists the rotated files, newest first
func (a *FileAdapter) Backups() ([]string, error) {
	dir := filepath.Dir(a.config.FilePath)
	prefix := filepath.Base(a.config.FilePath) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var backups []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		backups = append(backups, filepath.Join(dir, entry.Name()))
	}

	sort.SliceStable(backups, func(i, j int) bool {
		si, ni := backupOrder(backups[i], prefix)
		sj, nj := backupOrder(backups[j], prefix)
		if si != sj {
			return si > sj
		}
		return ni > nj
	})
	return backups, nil
}

// backupOrder splits a backup name into its timestamp and collision counter
func backupOrder(path, prefix string) (string, int) {
	rest := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), prefix), ".gz")
	if len(rest) <= len(backupTimeLayout) {
		return rest, 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(rest[len(backupTimeLayout):], "-"))
	if err != nil {
		return rest, 0
	}
	return rest[:len(backupTimeLayout)], n
}

func (a *FileAdapter) openFile() error {
	file, err := os.OpenFile(a.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, a.config.FileMode)
	if err != nil {
		return err
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}

	a.currentFile = file
	a.currentSize = stat.Size()
	return nil
}

func (a *FileAdapter) rotate() error {
	if err := a.currentFile.Close(); err != nil {
		return fmt.Errorf("failed to close current log file: %w", err)
	}
	a.currentFile = nil

	if a.config.MaxBackups > 0 {
		backupPath := a.backupPath()
		if err := os.Rename(a.config.FilePath, backupPath); err != nil {
			return fmt.Errorf("failed to rename log file: %w", err)
		}

		if a.config.Compress {
			if err := compressFile(backupPath); err != nil {
				// rotation still succeeds with an uncompressed backup
				fmt.Fprintf(os.Stderr, "failed to compress rotated log file %s: %v\n", backupPath, err)
			}
		}

		if err := a.pruneBackups(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to clean up old log backups: %v\n", err)
		}
	} else if err := os.Remove(a.config.FilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to discard log file: %w", err)
	}

	return a.openFile()
}

// backupPath returns an unused timestamped name for the file being rotated
func (a *FileAdapter) backupPath() string {
	base := fmt.Sprintf("%s.%s", a.config.FilePath, a.now().Format(backupTimeLayout))
	candidate := base
	for i := 1; ; i++ {
		if !exists(candidate) && !exists(candidate+".gz") {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (a *FileAdapter) pruneBackups() error {
	backups, err := a.Backups()
	if err != nil {
		return err
	}
	if len(backups) <= a.config.MaxBackups {
		return nil
	}
	for _, backup := range backups[a.config.MaxBackups:] {
		if err := os.Remove(backup); err != nil {
			return err
		}
	}
	return nil
}

// compressFile replaces path with path.gz
func compressFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(path+".gz", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	zw := gzip.NewWriter(dst)
	zw.Name = filepath.Base(path)
	if _, err := io.Copy(zw, src); err != nil {
		zw.Close()
		dst.Close()
		os.Remove(path + ".gz")
		return err
	}
	if err := zw.Close(); err != nil {
		dst.Close()
		os.Remove(path + ".gz")
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	return os.Remove(path)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
