package edit

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// Transaction is the in-memory record of one orchestrator run: original
// content per path, optional on-disk backups, and modified content.
// Rollback restores the first-read content from memory; backup files are an
// artifact for the caller, never the rollback mechanism of record.
//
// A Transaction is scoped to a single run and must not be shared across
// concurrent runs.
type Transaction struct {
	ID string

	originals map[string]string
	backups   map[string]string
	modified  map[string]string
}

// NewTransaction creates an empty transaction with a short unique ID.
func NewTransaction() *Transaction {
	return &Transaction{
		ID:        uuid.NewString()[:8],
		originals: make(map[string]string),
		backups:   make(map[string]string),
		modified:  make(map[string]string),
	}
}

// ReadFile reads and caches a file's original content. Repeat calls return
// the cached value without touching disk again.
func (t *Transaction) ReadFile(path string) (string, error) {
	if content, ok := t.originals[path]; ok {
		return content, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	content := string(data)
	t.originals[path] = content
	return content, nil
}

// ComputeHash returns the MD5 hex digest of content, the same digest callers
// use for expected_hash when planning edits.
func (t *Transaction) ComputeHash(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}

// CreateBackup copies the current on-disk content to a .bak sibling and
// records the backup path for reporting.
func (t *Transaction) CreateBackup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read for backup %s: %w", path, err)
	}
	backupPath := path + ".bak"
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup %s: %w", backupPath, err)
	}
	t.backups[path] = backupPath
	return backupPath, nil
}

// Apply writes content to disk and records it as the path's modified content.
func (t *Transaction) Apply(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	t.modified[path] = content
	return nil
}

// Rollback restores the path's first-read content. It reports false for
// paths this transaction never read.
func (t *Transaction) Rollback(path string) bool {
	original, ok := t.originals[path]
	if !ok {
		return false
	}
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		return false
	}
	return true
}

// RollbackAll restores every path modified in this transaction and returns
// how many were restored.
func (t *Transaction) RollbackAll() int {
	count := 0
	for path := range t.modified {
		if t.Rollback(path) {
			count++
		}
	}
	return count
}

// BackupPaths returns the recorded original-to-backup path mapping.
func (t *Transaction) BackupPaths() map[string]string {
	return t.backups
}
