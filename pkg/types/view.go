package types

// CategoryView is a category as published for one locale.
type CategoryView struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Dishes []DishView `json:"dishes"`
}

// DishView is a dish as published for one locale. Photo URLs are fully
// qualified with the uploads prefix.
type DishView struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Story         string             `json:"story"`
	PriceMinor    int64              `json:"priceMinor"`
	PriceLabel    string             `json:"priceLabel"`
	PriceVariants []PriceVariantView `json:"priceVariants"`
	Currency      string             `json:"currency"`
	Vegetarian    bool               `json:"vegetarian"`
	TopRated      bool               `json:"topRated"`
	ChefsPick     bool               `json:"chefsPick"`
	SoldOut       bool               `json:"soldOut"`
	Photo         *Photo             `json:"photo"`
}

// PriceVariantView is a price variant with its label resolved.
type PriceVariantView struct {
	PriceMinor int64  `json:"priceMinor"`
	Label      string `json:"label"`
}
