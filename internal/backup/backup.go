// Package backup keeps rotating copies of the ago marks database.
//
// Before a command runs, the newest backup's age is compared against the
// configured interval; when it is stale the database is copied to
// <db>.bak.1 and older copies shift up (.bak.1 -> .bak.2 ...). Copies
// numbered above MaxCount are removed. Pending WAL frames are checkpointed
// into the database file before it is copied.
package backup

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spetersoncode/ago/internal/config"
	"github.com/spetersoncode/ago/internal/db"
)

// Manager handles database backup operations.
type Manager struct {
	dbPath    string
	backupDir string
	prefix    string
	cfg       config.BackupConfig
	now       func() time.Time
}

// NewManager creates a backup manager for the database at dbPath.
func NewManager(dbPath string, cfg config.BackupConfig) *Manager {
	backupDir := cfg.Path
	if backupDir == "" {
		backupDir = filepath.Dir(dbPath)
	}

	return &Manager{
		dbPath:    dbPath,
		backupDir: backupDir,
		prefix:    filepath.Base(dbPath) + ".bak.",
		cfg:       cfg,
		now:       time.Now,
	}
}

// BackupIfNeeded creates a backup when backups are enabled, the database
// exists and the newest backup is older than the interval. It returns the new
// backup's path, or "" when nothing was done.
func (m *Manager) BackupIfNeeded() (string, error) {
	if !m.cfg.Enabled {
		return "", nil
	}

	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return "", nil
	}

	last, err := m.LastBackupTime()
	if err != nil {
		return "", fmt.Errorf("checking last backup: %w", err)
	}
	if !m.isStale(last) {
		return "", nil
	}

	backupPath, err := m.createBackup()
	if err != nil {
		return "", fmt.Errorf("creating backup: %w", err)
	}
	return backupPath, nil
}

// isStale reports whether a backup taken at last is due for replacement.
// A zero time means no backup exists; an interval of zero hours means every run.
func (m *Manager) isStale(last time.Time) bool {
	if last.IsZero() || m.cfg.IntervalHours <= 0 {
		return true
	}
	threshold := time.Duration(m.cfg.IntervalHours) * time.Hour
	return m.now().Sub(last) > threshold
}

// LastBackupTime returns the modification time of the newest backup, or the
// zero time when there is none.
func (m *Manager) LastBackupTime() (time.Time, error) {
	backups, err := m.ListBackups()
	if err != nil {
		return time.Time{}, err
	}
	if len(backups) == 0 {
		return time.Time{}, nil
	}

	info, err := os.Stat(backups[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("stat backup file: %w", err)
	}
	return info.ModTime(), nil
}

type backupFile struct {
	path   string
	number int
}

func (m *Manager) backupFiles() ([]backupFile, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var backups []backupFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, m.prefix) {
			continue
		}
		num, err := strconv.Atoi(strings.TrimPrefix(name, m.prefix))
		if err != nil || num < 1 {
			continue
		}
		backups = append(backups, backupFile{path: filepath.Join(m.backupDir, name), number: num})
	}

	// 1 is the newest
	slices.SortFunc(backups, func(a, b backupFile) int { return cmp.Compare(a.number, b.number) })
	return backups, nil
}

// ListBackups returns the paths of all backups, newest first.
func (m *Manager) ListBackups() ([]string, error) {
	backups, err := m.backupFiles()
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(backups))
	for i, b := range backups {
		paths[i] = b.path
	}
	return paths, nil
}

// BackupDir returns the directory where backups are stored.
func (m *Manager) BackupDir() string {
	return m.backupDir
}

func (m *Manager) createBackup() (string, error) {
	if err := os.MkdirAll(m.backupDir, 0755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}
	if err := m.rotate(); err != nil {
		return "", fmt.Errorf("rotating backups: %w", err)
	}

	if err := m.checkpoint(); err != nil {
		return "", err
	}

	backupPath := filepath.Join(m.backupDir, m.prefix+"1")
	if err := copyFile(m.dbPath, backupPath); err != nil {
		return "", fmt.Errorf("copying database: %w", err)
	}
	return backupPath, nil
}

// checkpoint flushes the database's WAL into the main file. Without a WAL
// file there is nothing to flush.
func (m *Manager) checkpoint() error {
	if _, err := os.Stat(m.dbPath + "-wal"); os.IsNotExist(err) {
		return nil
	}

	database, err := db.Open(m.dbPath)
	if err != nil {
		return fmt.Errorf("opening database for checkpoint: %w", err)
	}
	defer database.Close()

	return database.Checkpoint()
}

// rotate shifts every backup up by one, deleting those that would exceed MaxCount.
func (m *Manager) rotate() error {
	backups, err := m.backupFiles()
	if err != nil {
		return err
	}

	// Oldest first so no rename overwrites a file still to be moved
	for i := len(backups) - 1; i >= 0; i-- {
		b := backups[i]
		next := b.number + 1
		if next > m.cfg.MaxCount {
			if err := os.Remove(b.path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("deleting old backup %s: %w", b.path, err)
			}
			continue
		}
		newPath := filepath.Join(m.backupDir, m.prefix+strconv.Itoa(next))
		if err := os.Rename(b.path, newPath); err != nil {
			return fmt.Errorf("renaming backup %s to %s: %w", b.path, newPath, err)
		}
	}
	return nil
}

// copyFile copies src to dst, keeping src's permissions.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return dstFile.Sync()
}
