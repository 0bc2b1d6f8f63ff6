package store

import (
	"encoding/json"
	"fmt"

	"github.com/chero-kobuleti/menu/pkg/types"
)

// migration upgrades a record from schema version from to from+1 by adding
// the fields introduced at from+1. A field that is absent or null receives
// its default; present values are never touched.
type migration struct {
	from     int
	defaults func() map[string]any
}

func emptyLocale() map[string]any {
	return map[string]any{"ka": "", "en": "", "ru": ""}
}

// migrations lists, per collection, which fields became part of a record at
// each schema version.
//
//	v0: bare {"items": [...]} files produced by the CSV converters.
//	v1: envelope with schemaVersion/updatedAt; status, currency, locale maps.
//	v2: dish flags chefsPick et al., story, priceLabel, priceVariants.
var migrations = map[types.Kind][]migration{
	types.KindCategories: {
		{from: 0, defaults: func() map[string]any {
			return map[string]any{
				"status": string(types.StatusActive),
				"title":  emptyLocale(),
			}
		}},
		{from: 1, defaults: func() map[string]any { return nil }},
	},
	types.KindDishes: {
		{from: 0, defaults: func() map[string]any {
			return map[string]any{
				"status":      string(types.StatusActive),
				"currency":    types.CurrencyGEL,
				"title":       emptyLocale(),
				"description": emptyLocale(),
			}
		}},
		{from: 1, defaults: func() map[string]any {
			return map[string]any{
				"vegetarian":    false,
				"topRated":      false,
				"chefsPick":     false,
				"soldOut":       false,
				"story":         emptyLocale(),
				"priceLabel":    emptyLocale(),
				"priceVariants": []any{},
			}
		}},
	},
}

// migrateItems upgrades raw records of kind from version to
// types.CurrentSchemaVersion. Items are rewritten in place.
func migrateItems(kind types.Kind, version int, items []json.RawMessage) error {
	if version > types.CurrentSchemaVersion {
		return fmt.Errorf("%w: %s schema version %d is newer than supported %d",
			types.ErrParse, kind, version, types.CurrentSchemaVersion)
	}
	if version < 0 {
		return fmt.Errorf("%w: %s schema version %d", types.ErrParse, kind, version)
	}
	if version == types.CurrentSchemaVersion {
		return nil
	}

	var steps []migration
	for _, m := range migrations[kind] {
		if m.from >= version {
			steps = append(steps, m)
		}
	}

	for i, raw := range items {
		var rec map[string]any
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("%w: %s item %d: %w", types.ErrParse, kind, i, err)
		}
		if rec == nil {
			return fmt.Errorf("%w: %s item %d is null", types.ErrParse, kind, i)
		}
		for _, step := range steps {
			fillDefaults(rec, step.defaults())
		}
		out, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("re-encoding %s item %d: %w", kind, i, err)
		}
		items[i] = out
	}
	return nil
}

func fillDefaults(rec, defaults map[string]any) {
	for k, v := range defaults {
		if cur, ok := rec[k]; !ok || cur == nil {
			rec[k] = v
		}
	}
}
