package types

import "fmt"

// Kind names one of the two managed collections.
type Kind string

// Collection kinds.
const (
	KindCategories Kind = "categories"
	KindDishes     Kind = "dishes"
)

// Kinds lists every collection kind.
var Kinds = []Kind{KindCategories, KindDishes}

// ParseKind validates s as a collection kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCategories, KindDishes:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: unknown collection %q", ErrValidation, s)
}

// FileName is the name of the live document file inside the data directory.
func (k Kind) FileName() string {
	return string(k) + ".json"
}

// BackupPrefix is the prefix shared by every backup of this collection.
func (k Kind) BackupPrefix() string {
	return k.FileName() + ".bak."
}
