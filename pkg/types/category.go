package types

// Category groups dishes on the menu. ID is immutable after creation and is
// referenced by Dish.CategoryID.
type Category struct {
	ID     string     `json:"id" validate:"required,max=64,excludesall=/\\"`
	Order  int        `json:"order"`
	Status Status     `json:"status" validate:"oneof=active hidden"`
	Title  LocaleText `json:"title"`
}
