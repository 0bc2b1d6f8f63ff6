// Package history lists the timestamped backups kept next to each menu
// document and restores a chosen backup over the live file. It works on
// whole files and never rewrites their JSON.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chero-kobuleti/menu/internal/filelock"
	"github.com/chero-kobuleti/menu/internal/jsonfile"
	"github.com/chero-kobuleti/menu/pkg/types"
)

// restoreLabel marks the safety backup taken right before a restore.
const restoreLabel = "restore"

// Retention decides which backups Prune removes. The zero value keeps
// everything.
type Retention struct {
	// MaxCount keeps at most this many of the newest backups per collection.
	MaxCount int
	// MaxAge removes backups whose timestamp is older than this.
	MaxAge time.Duration
}

// Unbounded reports whether the policy keeps every backup.
func (r Retention) Unbounded() bool {
	return r.MaxCount <= 0 && r.MaxAge <= 0
}

// Catalog manages the backups in one data directory. Restores and prunes
// run under the same guard the document store writes with.
type Catalog struct {
	dataDir   string
	guard     *filelock.Guard
	retention Retention
	log       *zap.Logger
	now       func() time.Time
}

// New returns a Catalog for dataDir. A nil logger discards output.
func New(dataDir string, guard *filelock.Guard, retention Retention, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{
		dataDir:   dataDir,
		guard:     guard,
		retention: retention,
		log:       log,
		now:       time.Now,
	}
}

// List returns the backups of kind, newest first. It takes no lock; a backup
// written while listing may or may not appear. A missing data directory has
// no backups.
func (c *Catalog) List(kind types.Kind) ([]types.Backup, error) {
	entries, err := os.ReadDir(c.dataDir)
	if errors.Is(err, fs.ErrNotExist) {
		return []types.Backup{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %w", types.ErrIO, c.dataDir, err)
	}

	prefix := kind.BackupPrefix()
	backups := []types.Backup{}
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasPrefix(name, prefix) || len(name) == len(prefix) {
			continue
		}
		b := types.Backup{File: name, Label: name[len(prefix):]}
		b.Token, b.Restore = strings.CutPrefix(b.Label, restoreLabel+".")
		if t, err := jsonfile.ParseToken(b.Token); err == nil {
			b.Time = t
		}
		if info, err := e.Info(); err == nil {
			b.Size = info.Size()
		}
		backups = append(backups, b)
	}

	// Tokens are fixed width, so this is also lexicographic token order.
	// Unparseable names carry a zero time and sort last.
	slices.SortStableFunc(backups, func(a, b types.Backup) int {
		if c := b.Time.Compare(a.Time); c != 0 {
			return c
		}
		return strings.Compare(b.File, a.File)
	})
	return backups, nil
}

// ValidateName checks a caller-supplied backup name for kind without
// touching the filesystem.
func ValidateName(kind types.Kind, file string) error {
	if strings.Contains(file, "/") || strings.Contains(file, `\`) || strings.Contains(file, "..") {
		return fmt.Errorf("%w: invalid backup filename %q", types.ErrValidation, file)
	}
	prefix := kind.BackupPrefix()
	if !strings.HasPrefix(file, prefix) || len(file) == len(prefix) {
		return fmt.Errorf("%w: backup %q does not belong to %s", types.ErrValidation, file, kind)
	}
	return nil
}

// Restore replaces the live document of kind with the bytes of the backup
// named file. The name is validated before any filesystem access. Under the
// guard, the current live file is first saved as a restore safety backup,
// then the backup is copied over it atomically. Backup content must be
// well-formed JSON but is otherwise copied verbatim. It returns the name of
// the safety backup, "" when there was no live file.
func (c *Catalog) Restore(ctx context.Context, kind types.Kind, file string) (string, error) {
	if err := ValidateName(kind, file); err != nil {
		return "", err
	}
	backupPath := filepath.Join(c.dataDir, file)
	livePath := filepath.Join(c.dataDir, kind.FileName())

	if _, err := os.Stat(backupPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: backup %s", types.ErrNotFound, file)
		}
		return "", fmt.Errorf("%w: stat %s: %w", types.ErrIO, file, err)
	}

	var safety string
	err := c.guard.Do(ctx, func() error {
		data, err := jsonfile.ReadFile(backupPath)
		if err != nil {
			return err
		}
		if !json.Valid(data) {
			return fmt.Errorf("%w: backup %s is not valid JSON", types.ErrParse, file)
		}
		safety, err = jsonfile.Backup(livePath, restoreLabel)
		if err != nil {
			return err
		}
		return jsonfile.WriteFileAtomic(livePath, data)
	})
	if err != nil {
		return "", fmt.Errorf("restoring %s: %w", file, err)
	}

	restores.WithLabelValues(string(kind)).Inc()
	c.log.Info("restored backup",
		zap.String("kind", string(kind)),
		zap.String("backup", file),
		zap.String("safety_backup", safety))
	return safety, nil
}

// Prune applies the retention policy to kind under the guard and returns the
// removed file names.
func (c *Catalog) Prune(ctx context.Context, kind types.Kind) ([]string, error) {
	var removed []string
	err := c.guard.Do(ctx, func() error {
		var err error
		removed, err = c.PruneHeld(kind)
		return err
	})
	return removed, err
}

// PruneHeld applies the retention policy to kind. The caller must hold the
// guard.
func (c *Catalog) PruneHeld(kind types.Kind) ([]string, error) {
	if c.retention.Unbounded() {
		return nil, nil
	}
	backups, err := c.List(kind)
	if err != nil {
		return nil, err
	}

	now := c.now()
	var removed []string
	var errs []error
	for i, b := range backups {
		tooMany := c.retention.MaxCount > 0 && i >= c.retention.MaxCount
		tooOld := c.retention.MaxAge > 0 && !b.Time.IsZero() && now.Sub(b.Time) > c.retention.MaxAge
		if !tooMany && !tooOld {
			continue
		}
		err := os.Remove(filepath.Join(c.dataDir, b.File))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("%w: removing %s: %w", types.ErrIO, b.File, err))
			continue
		}
		removed = append(removed, b.File)
	}

	if len(removed) > 0 {
		prunedBackups.WithLabelValues(string(kind)).Add(float64(len(removed)))
		c.log.Info("pruned backups", zap.String("kind", string(kind)), zap.Int("removed", len(removed)))
	}
	return removed, errors.Join(errs...)
}
