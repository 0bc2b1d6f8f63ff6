// Package store owns the two menu documents, categories.json and
// dishes.json. Every write goes through one shared file lock, so a change to
// categories and a change to dishes never interleave; this is what lets
// category deletion check dish references consistently. Reads take no lock
// and always come from disk.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/chero-kobuleti/menu/internal/filelock"
	"github.com/chero-kobuleti/menu/internal/history"
	"github.com/chero-kobuleti/menu/internal/jsonfile"
	"github.com/chero-kobuleti/menu/pkg/types"
)

// Store reads and writes the menu documents in one data directory.
type Store struct {
	cfg      types.Config
	guard    *filelock.Guard
	catalog  *history.Catalog
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

// New validates cfg (after defaults) and returns a Store over cfg.DataDir.
// It does not touch the filesystem; call Init to create missing documents.
func New(cfg types.Config, log *zap.Logger) (*Store, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("store config: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("store")

	guard := filelock.New(filepath.Join(cfg.DataDir, types.LockFileName),
		filelock.WithTimeout(cfg.LockTimeout),
		filelock.WithStaleAfter(cfg.LockStaleAfter),
		filelock.WithRetryInterval(cfg.LockRetryInterval),
		filelock.WithLogger(log),
	)
	catalog := history.New(cfg.DataDir, guard, history.Retention{
		MaxCount: cfg.BackupMaxCount,
		MaxAge:   cfg.BackupMaxAge,
	}, log.Named("history"))

	return &Store{
		cfg:      cfg,
		guard:    guard,
		catalog:  catalog,
		log:      log,
		validate: newValidator(),
		now:      time.Now,
	}, nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Config returns the effective configuration.
func (s *Store) Config() types.Config {
	return s.cfg
}

// Catalog returns the backup catalog sharing this store's lock.
func (s *Store) Catalog() *history.Catalog {
	return s.catalog
}

func (s *Store) path(kind types.Kind) string {
	return filepath.Join(s.cfg.DataDir, kind.FileName())
}

// Init creates the data directory and writes an empty document for each
// collection whose file does not exist. It returns the kinds it created.
func (s *Store) Init(ctx context.Context) ([]types.Kind, error) {
	if err := os.MkdirAll(s.cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating data dir: %w", types.ErrIO, err)
	}

	var created []types.Kind
	err := s.guard.Do(ctx, func() error {
		for _, kind := range types.Kinds {
			_, err := os.Stat(s.path(kind))
			if err == nil {
				continue
			}
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: stat %s: %w", types.ErrIO, kind.FileName(), err)
			}
			var werr error
			switch kind {
			case types.KindCategories:
				werr = write(s, kind, types.NewDocument[types.Category]())
			case types.KindDishes:
				werr = write(s, kind, types.NewDocument[types.Dish]())
			}
			if werr != nil {
				return werr
			}
			created = append(created, kind)
		}
		return nil
	})
	return created, err
}

// rawDocument is the envelope as read from disk, before migration.
type rawDocument struct {
	SchemaVersion int               `json:"schemaVersion"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	Items         []json.RawMessage `json:"items"`
}

// load reads kind from disk, migrates its records to the current schema and
// decodes them into T.
func load[T any](ctx context.Context, s *Store, kind types.Kind) (*types.Document[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var raw rawDocument
	if err := jsonfile.ReadJSON(s.path(kind), &raw); err != nil {
		return nil, fmt.Errorf("loading %s: %w", kind, err)
	}
	if err := migrateItems(kind, raw.SchemaVersion, raw.Items); err != nil {
		return nil, fmt.Errorf("loading %s: %w", kind, err)
	}

	doc := &types.Document[T]{
		SchemaVersion: types.CurrentSchemaVersion,
		UpdatedAt:     raw.UpdatedAt,
		Items:         make([]T, 0, len(raw.Items)),
	}
	for i, item := range raw.Items {
		var rec T
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, fmt.Errorf("loading %s: %w: item %d: %w", kind, types.ErrParse, i, err)
		}
		doc.Items = append(doc.Items, rec)
	}
	return doc, nil
}

// LoadCategories reads the category document. A category without a status
// loads as active.
func (s *Store) LoadCategories(ctx context.Context) (*types.Document[types.Category], error) {
	doc, err := load[types.Category](ctx, s, types.KindCategories)
	if err != nil {
		return nil, err
	}
	for i := range doc.Items {
		if doc.Items[i].Status == "" {
			doc.Items[i].Status = types.StatusActive
		}
	}
	return doc, nil
}

// LoadDishes reads the dish document. Dishes written before the newer
// optional fields existed come back with false flags, empty locale maps and
// no price variants; a missing status loads as active.
func (s *Store) LoadDishes(ctx context.Context) (*types.Document[types.Dish], error) {
	doc, err := load[types.Dish](ctx, s, types.KindDishes)
	if err != nil {
		return nil, err
	}
	for i := range doc.Items {
		normalizeDish(&doc.Items[i])
	}
	return doc, nil
}

func normalizeDish(d *types.Dish) {
	if d.Status == "" {
		d.Status = types.StatusActive
	}
	if d.PriceVariants == nil {
		d.PriceVariants = []types.PriceVariant{}
	}
	if d.Currency == "" {
		d.Currency = types.CurrencyGEL
	}
}

// SaveCategories validates doc and writes it under the lock. UpdatedAt and
// SchemaVersion are stamped on doc.
func (s *Store) SaveCategories(ctx context.Context, doc *types.Document[types.Category]) error {
	return s.guard.Do(ctx, func() error {
		return s.writeCategories(doc)
	})
}

// SaveDishes validates doc and writes it under the lock. UpdatedAt and
// SchemaVersion are stamped on doc.
func (s *Store) SaveDishes(ctx context.Context, doc *types.Document[types.Dish]) error {
	return s.guard.Do(ctx, func() error {
		return s.writeDishes(doc)
	})
}

func (s *Store) writeCategories(doc *types.Document[types.Category]) error {
	seen := make(map[string]bool, len(doc.Items))
	for i := range doc.Items {
		c := &doc.Items[i]
		if err := s.check(types.KindCategories, c.ID, c); err != nil {
			return err
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate category id %q", types.ErrValidation, c.ID)
		}
		seen[c.ID] = true
	}
	return write(s, types.KindCategories, doc)
}

func (s *Store) writeDishes(doc *types.Document[types.Dish]) error {
	seen := make(map[string]bool, len(doc.Items))
	for i := range doc.Items {
		d := &doc.Items[i]
		normalizeDish(d)
		if err := s.check(types.KindDishes, d.ID, d); err != nil {
			return err
		}
		if seen[d.ID] {
			return fmt.Errorf("%w: duplicate dish id %q", types.ErrValidation, d.ID)
		}
		seen[d.ID] = true
	}
	return write(s, types.KindDishes, doc)
}

// check runs the struct-tag validation for one record.
func (s *Store) check(kind types.Kind, id string, rec any) error {
	err := s.validate.Struct(rec)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s %q: %s failed %q", types.ErrValidation, kind, id, fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("%w: %s %q: %w", types.ErrValidation, kind, id, err)
}

// write persists doc atomically. The caller must hold the guard.
func write[T any](s *Store, kind types.Kind, doc *types.Document[T]) error {
	doc.SchemaVersion = types.CurrentSchemaVersion
	doc.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	if doc.Items == nil {
		doc.Items = []T{}
	}

	backup, err := jsonfile.WriteJSON(s.path(kind), doc)
	if err != nil {
		saveErrors.WithLabelValues(string(kind)).Inc()
		return fmt.Errorf("saving %s: %w", kind, err)
	}
	saves.WithLabelValues(string(kind)).Inc()
	s.log.Info("saved document",
		zap.String("kind", string(kind)),
		zap.Int("items", len(doc.Items)),
		zap.String("backup", backup))

	if _, err := s.catalog.PruneHeld(kind); err != nil {
		s.log.Warn("pruning backups", zap.String("kind", string(kind)), zap.Error(err))
	}
	return nil
}
