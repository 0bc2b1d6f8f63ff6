package store

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/chero-kobuleti/menu/pkg/types"
)

// PublicMenu returns the published menu for locale: active categories and
// their active dishes, each ordered by Order with ties kept in stored order,
// every text resolved to locale. It reads both documents on every call.
func (s *Store) PublicMenu(ctx context.Context, locale types.Locale) ([]types.CategoryView, error) {
	var (
		cats   *types.Document[types.Category]
		dishes *types.Document[types.Dish]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = s.LoadCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		dishes, err = s.LoadDishes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return project(cats.Items, dishes.Items, locale, s.cfg.UploadsURL), nil
}

// project builds the public view. It does not modify its inputs.
func project(cats []types.Category, dishes []types.Dish, locale types.Locale, uploadsURL string) []types.CategoryView {
	active := make([]types.Category, 0, len(cats))
	for _, c := range cats {
		if c.Status == types.StatusActive {
			active = append(active, c)
		}
	}
	slices.SortStableFunc(active, func(a, b types.Category) int { return cmp.Compare(a.Order, b.Order) })

	byCategory := make(map[string][]types.Dish)
	for _, d := range dishes {
		if d.Status != types.StatusActive {
			continue
		}
		byCategory[d.CategoryID] = append(byCategory[d.CategoryID], d)
	}

	prefix := strings.TrimRight(uploadsURL, "/") + "/"
	views := make([]types.CategoryView, 0, len(active))
	for _, c := range active {
		list := byCategory[c.ID]
		slices.SortStableFunc(list, func(a, b types.Dish) int { return cmp.Compare(a.Order, b.Order) })

		cv := types.CategoryView{
			ID:     c.ID,
			Title:  c.Title.Get(locale),
			Dishes: make([]types.DishView, 0, len(list)),
		}
		for _, d := range list {
			cv.Dishes = append(cv.Dishes, dishView(d, locale, prefix))
		}
		views = append(views, cv)
	}
	return views
}

func dishView(d types.Dish, locale types.Locale, photoPrefix string) types.DishView {
	v := types.DishView{
		ID:            d.ID,
		Title:         d.Title.Get(locale),
		Description:   d.Description.Get(locale),
		Story:         d.Story.Get(locale),
		PriceMinor:    d.PriceMinor,
		PriceLabel:    d.PriceLabel.Get(locale),
		PriceVariants: make([]types.PriceVariantView, 0, len(d.PriceVariants)),
		Currency:      d.Currency,
		Vegetarian:    d.Vegetarian,
		TopRated:      d.TopRated,
		ChefsPick:     d.ChefsPick,
		SoldOut:       d.SoldOut,
	}
	for _, pv := range d.PriceVariants {
		v.PriceVariants = append(v.PriceVariants, types.PriceVariantView{
			PriceMinor: pv.PriceMinor,
			Label:      pv.Label.Get(locale),
		})
	}
	if d.Photo != nil {
		v.Photo = &types.Photo{
			Full:  photoPrefix + d.Photo.Full,
			Small: photoPrefix + d.Photo.Small,
		}
	}
	return v
}
