package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/chero-kobuleti/menu/pkg/types"
)

// CategoryInput is a create-or-update request for one category. A nil Order
// appends a new category at the end and keeps an existing one in place.
type CategoryInput struct {
	ID     string           `json:"id"`
	Order  *int             `json:"order,omitempty"`
	Status types.Status     `json:"status"`
	Title  types.LocaleText `json:"title"`
}

// updateCategories loads, changes and writes the category document under
// the lock.
func (s *Store) updateCategories(ctx context.Context, fn func(doc *types.Document[types.Category]) error) error {
	return s.guard.Do(ctx, func() error {
		doc, err := s.LoadCategories(ctx)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		return s.writeCategories(doc)
	})
}

func categoryIndex(items []types.Category, id string) int {
	return slices.IndexFunc(items, func(c types.Category) bool { return c.ID == id })
}

// UpsertCategory creates the category or replaces the existing one with the
// same ID. Any status other than hidden is stored as active.
func (s *Store) UpsertCategory(ctx context.Context, in CategoryInput) (types.Category, error) {
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		return types.Category{}, fmt.Errorf("%w: missing id", types.ErrValidation)
	}

	var saved types.Category
	err := s.updateCategories(ctx, func(doc *types.Document[types.Category]) error {
		idx := categoryIndex(doc.Items, in.ID)
		next := types.Category{
			ID:     in.ID,
			Status: types.NormalizeStatus(in.Status),
			Title:  in.Title,
		}
		switch {
		case in.Order != nil:
			next.Order = *in.Order
		case idx == -1:
			next.Order = (len(doc.Items) + 1) * 10
		default:
			next.Order = doc.Items[idx].Order
		}

		if idx == -1 {
			doc.Items = append(doc.Items, next)
		} else {
			doc.Items[idx] = next
		}
		saved = next
		return nil
	})
	return saved, err
}

// SetCategoryStatus publishes or hides one category.
func (s *Store) SetCategoryStatus(ctx context.Context, id string, status types.Status) error {
	if _, err := types.ParseStatus(string(status)); err != nil {
		return err
	}
	return s.updateCategories(ctx, func(doc *types.Document[types.Category]) error {
		idx := categoryIndex(doc.Items, id)
		if idx == -1 {
			return fmt.Errorf("%w: category %q", types.ErrNotFound, id)
		}
		doc.Items[idx].Status = status
		return nil
	})
}

// ReorderCategories assigns orders 10, 20, 30... following orderedIDs.
// Unknown and repeated IDs are skipped; categories not listed keep their
// order and follow the listed ones in storage.
func (s *Store) ReorderCategories(ctx context.Context, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return fmt.Errorf("%w: missing orderedIds", types.ErrValidation)
	}
	return s.updateCategories(ctx, func(doc *types.Document[types.Category]) error {
		byID := make(map[string]types.Category, len(doc.Items))
		for _, c := range doc.Items {
			byID[c.ID] = c
		}
		placed := make(map[string]bool, len(orderedIDs))
		next := make([]types.Category, 0, len(doc.Items))
		for i, id := range orderedIDs {
			c, ok := byID[id]
			if !ok || placed[id] {
				continue
			}
			c.Order = (i + 1) * 10
			next = append(next, c)
			placed[id] = true
		}
		for _, c := range doc.Items {
			if !placed[c.ID] {
				next = append(next, c)
			}
		}
		doc.Items = next
		return nil
	})
}

// ReplaceCategories stores items as the complete category list. If any
// category being dropped is still referenced by a dish, nothing is written
// and a *types.CategoryInUseError names the first such category with its
// dish count.
func (s *Store) ReplaceCategories(ctx context.Context, items []types.Category) error {
	return s.updateCategories(ctx, func(doc *types.Document[types.Category]) error {
		keep := make(map[string]bool, len(items))
		for _, c := range items {
			keep[c.ID] = true
		}
		var dropped []string
		for _, c := range doc.Items {
			if !keep[c.ID] {
				dropped = append(dropped, c.ID)
			}
		}
		if err := s.ensureUnreferenced(ctx, dropped); err != nil {
			return err
		}
		doc.Items = slices.Clone(items)
		return nil
	})
}

// DeleteCategory removes one category, refusing while any dish references it.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return s.updateCategories(ctx, func(doc *types.Document[types.Category]) error {
		idx := categoryIndex(doc.Items, id)
		if idx == -1 {
			return fmt.Errorf("%w: category %q", types.ErrNotFound, id)
		}
		if err := s.ensureUnreferenced(ctx, []string{id}); err != nil {
			return err
		}
		doc.Items = slices.Delete(doc.Items, idx, idx+1)
		return nil
	})
}

// ensureUnreferenced fails with the first of ids that has dishes. The caller
// holds the lock, so the dish document cannot change underneath the check.
func (s *Store) ensureUnreferenced(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	dishes, err := s.LoadDishes(ctx)
	if err != nil {
		return err
	}
	counts := make(map[string]int)
	for _, d := range dishes.Items {
		counts[d.CategoryID]++
	}
	for _, id := range ids {
		if n := counts[id]; n > 0 {
			blockedDeletes.Inc()
			s.log.Info("category removal blocked", zap.String("category", id), zap.Int("dishes", n))
			return &types.CategoryInUseError{CategoryID: id, DishCount: n}
		}
	}
	return nil
}
