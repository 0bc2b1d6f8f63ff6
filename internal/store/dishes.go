package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/chero-kobuleti/menu/pkg/types"
)

// DishInput is a create-or-update request for one dish. A nil Order appends
// a new dish and keeps an existing one in place; a nil Photo keeps the
// current photo.
type DishInput struct {
	ID            string               `json:"id"`
	CategoryID    string               `json:"categoryId"`
	Order         *int                 `json:"order,omitempty"`
	Status        types.Status         `json:"status"`
	PriceMinor    int64                `json:"priceMinor"`
	Vegetarian    bool                 `json:"vegetarian"`
	TopRated      bool                 `json:"topRated"`
	ChefsPick     bool                 `json:"chefsPick"`
	SoldOut       bool                 `json:"soldOut"`
	Title         types.LocaleText     `json:"title"`
	Description   types.LocaleText     `json:"description"`
	Story         types.LocaleText     `json:"story"`
	PriceLabel    types.LocaleText     `json:"priceLabel"`
	PriceVariants []types.PriceVariant `json:"priceVariants"`
	Photo         *types.Photo         `json:"photo,omitempty"`
}

// DishBulkItem carries the fields the dish list screen edits in place.
type DishBulkItem struct {
	ID         string       `json:"id"`
	Order      int          `json:"order"`
	Status     types.Status `json:"status"`
	Vegetarian bool         `json:"vegetarian"`
	TopRated   bool         `json:"topRated"`
	ChefsPick  bool         `json:"chefsPick"`
	SoldOut    bool         `json:"soldOut"`
}

func (s *Store) updateDishes(ctx context.Context, fn func(doc *types.Document[types.Dish]) error) error {
	return s.guard.Do(ctx, func() error {
		doc, err := s.LoadDishes(ctx)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		return s.writeDishes(doc)
	})
}

func dishIndex(items []types.Dish, id string) int {
	return slices.IndexFunc(items, func(d types.Dish) bool { return d.ID == id })
}

// UpsertDish creates the dish or replaces the existing one with the same
// ID. The category must exist.
func (s *Store) UpsertDish(ctx context.Context, in DishInput) (types.Dish, error) {
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		return types.Dish{}, fmt.Errorf("%w: missing id", types.ErrValidation)
	}
	if in.CategoryID == "" {
		return types.Dish{}, fmt.Errorf("%w: missing categoryId", types.ErrValidation)
	}

	var saved types.Dish
	err := s.updateDishes(ctx, func(doc *types.Document[types.Dish]) error {
		cats, err := s.LoadCategories(ctx)
		if err != nil {
			return err
		}
		if categoryIndex(cats.Items, in.CategoryID) == -1 {
			return fmt.Errorf("%w: unknown category %q", types.ErrValidation, in.CategoryID)
		}

		idx := dishIndex(doc.Items, in.ID)
		next := types.Dish{
			ID:            in.ID,
			CategoryID:    in.CategoryID,
			Status:        types.NormalizeStatus(in.Status),
			Vegetarian:    in.Vegetarian,
			TopRated:      in.TopRated,
			ChefsPick:     in.ChefsPick,
			SoldOut:       in.SoldOut,
			PriceMinor:    in.PriceMinor,
			Currency:      types.CurrencyGEL,
			PriceLabel:    in.PriceLabel,
			PriceVariants: slices.Clone(in.PriceVariants),
			Title:         in.Title,
			Description:   in.Description,
			Story:         in.Story,
			Photo:         in.Photo,
		}
		switch {
		case in.Order != nil:
			next.Order = *in.Order
		case idx == -1:
			next.Order = (len(doc.Items) + 1) * 10
		default:
			next.Order = doc.Items[idx].Order
		}
		if next.Photo == nil && idx != -1 {
			next.Photo = doc.Items[idx].Photo
		}

		if idx == -1 {
			doc.Items = append(doc.Items, next)
		} else {
			doc.Items[idx] = next
		}
		saved = next
		return nil
	})
	if err == nil {
		normalizeDish(&saved)
	}
	return saved, err
}

// SetDishStatus publishes or hides one dish.
func (s *Store) SetDishStatus(ctx context.Context, id string, status types.Status) error {
	if _, err := types.ParseStatus(string(status)); err != nil {
		return err
	}
	return s.updateDishes(ctx, func(doc *types.Document[types.Dish]) error {
		idx := dishIndex(doc.Items, id)
		if idx == -1 {
			return fmt.Errorf("%w: dish %q", types.ErrNotFound, id)
		}
		doc.Items[idx].Status = status
		return nil
	})
}

// ReorderDishes assigns orders 10, 20, 30... to the dishes of categoryID
// following orderedIDs. Dishes of other categories and dishes not listed
// are untouched.
func (s *Store) ReorderDishes(ctx context.Context, categoryID string, orderedIDs []string) error {
	if categoryID == "" || len(orderedIDs) == 0 {
		return fmt.Errorf("%w: missing categoryId/orderedIds", types.ErrValidation)
	}
	position := make(map[string]int, len(orderedIDs))
	for i, id := range orderedIDs {
		if _, dup := position[id]; !dup {
			position[id] = i
		}
	}
	return s.updateDishes(ctx, func(doc *types.Document[types.Dish]) error {
		for i := range doc.Items {
			d := &doc.Items[i]
			if d.CategoryID != categoryID {
				continue
			}
			if p, ok := position[d.ID]; ok {
				d.Order = (p + 1) * 10
			}
		}
		return nil
	})
}

// BulkUpdateDishes makes items the dish list of categoryID: dishes of that
// category missing from items are removed, the others get the order, status
// and flags from items. Items naming dishes outside the category are
// ignored.
func (s *Store) BulkUpdateDishes(ctx context.Context, categoryID string, items []DishBulkItem) error {
	if categoryID == "" || items == nil {
		return fmt.Errorf("%w: missing categoryId/items", types.ErrValidation)
	}
	updates := make(map[string]DishBulkItem, len(items))
	for _, it := range items {
		if _, err := types.ParseStatus(string(it.Status)); err != nil {
			return fmt.Errorf("dish %q: %w", it.ID, err)
		}
		updates[it.ID] = it
	}
	return s.updateDishes(ctx, func(doc *types.Document[types.Dish]) error {
		next := doc.Items[:0]
		for _, d := range doc.Items {
			if d.CategoryID != categoryID {
				next = append(next, d)
				continue
			}
			u, ok := updates[d.ID]
			if !ok {
				continue
			}
			d.Order = u.Order
			d.Status = u.Status
			d.Vegetarian = u.Vegetarian
			d.TopRated = u.TopRated
			d.ChefsPick = u.ChefsPick
			d.SoldOut = u.SoldOut
			next = append(next, d)
		}
		doc.Items = next
		return nil
	})
}

// SetDishPhoto records the conventional photo file names for a dish whose
// images have been rendered into the uploads directory.
func (s *Store) SetDishPhoto(ctx context.Context, id string) (types.Photo, error) {
	photo := types.PhotoFor(id)
	err := s.updateDishes(ctx, func(doc *types.Document[types.Dish]) error {
		idx := dishIndex(doc.Items, id)
		if idx == -1 {
			return fmt.Errorf("%w: dish %q", types.ErrNotFound, id)
		}
		p := photo
		doc.Items[idx].Photo = &p
		return nil
	})
	return photo, err
}

// DeleteDish removes one dish.
func (s *Store) DeleteDish(ctx context.Context, id string) error {
	return s.updateDishes(ctx, func(doc *types.Document[types.Dish]) error {
		idx := dishIndex(doc.Items, id)
		if idx == -1 {
			return fmt.Errorf("%w: dish %q", types.ErrNotFound, id)
		}
		doc.Items = slices.Delete(doc.Items, idx, idx+1)
		return nil
	})
}
