package types

import "fmt"

// CurrencyGEL is the only currency prices are stored in.
const CurrencyGEL = "GEL"

// MaxPriceVariants bounds the alternative sizes a dish may list.
const MaxPriceVariants = 5

// Dish is a single menu item. PriceMinor is in tetri (1890 = 18.90 GEL).
type Dish struct {
	ID            string         `json:"id" validate:"required,max=64,excludesall=/\\"`
	CategoryID    string         `json:"categoryId" validate:"required"`
	Order         int            `json:"order"`
	Status        Status         `json:"status" validate:"oneof=active hidden"`
	Vegetarian    bool           `json:"vegetarian"`
	TopRated      bool           `json:"topRated"`
	ChefsPick     bool           `json:"chefsPick"`
	SoldOut       bool           `json:"soldOut"`
	PriceMinor    int64          `json:"priceMinor" validate:"gte=0"`
	Currency      string         `json:"currency" validate:"eq=GEL"`
	PriceLabel    LocaleText     `json:"priceLabel"`
	PriceVariants []PriceVariant `json:"priceVariants" validate:"max=5,dive"`
	Title         LocaleText     `json:"title"`
	Description   LocaleText     `json:"description"`
	Story         LocaleText     `json:"story"`
	Photo         *Photo         `json:"photo,omitempty"`
}

// PriceVariant is an alternative size or portion with its own price.
type PriceVariant struct {
	PriceMinor int64      `json:"priceMinor" validate:"gte=0"`
	Label      LocaleText `json:"label"`
}

// Photo holds the file names of the two rendered photo sizes. The files
// themselves are produced outside this module.
type Photo struct {
	Full  string `json:"full" validate:"required"`
	Small string `json:"small" validate:"required"`
}

// PhotoFor returns the conventional photo file names for a dish ID.
func PhotoFor(dishID string) Photo {
	return Photo{
		Full:  fmt.Sprintf("dish_%s_1600.webp", dishID),
		Small: fmt.Sprintf("dish_%s_800.webp", dishID),
	}
}
