package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocaleTextGet(t *testing.T) {
	title := LocaleText{KA: "ხა", EN: "Kha", RU: "Ха"}

	assert.Equal(t, "ხა", title.Get(LocaleKA))
	assert.Equal(t, "Kha", title.Get(LocaleEN))
	assert.Equal(t, "Ха", title.Get(LocaleRU))
	assert.Equal(t, "", title.Get(Locale("de")))
	assert.Equal(t, "", LocaleText{}.Get(LocaleEN))
}

func TestParseLocale(t *testing.T) {
	tests := []struct {
		in   string
		want Locale
	}{
		{"ka", LocaleKA},
		{"EN", LocaleEN},
		{"ru-RU", LocaleRU},
		{" en ", LocaleEN},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocale(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLocale("de")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestKindFileNames(t *testing.T) {
	assert.Equal(t, "categories.json", KindCategories.FileName())
	assert.Equal(t, "dishes.json.bak.", KindDishes.BackupPrefix())

	_, err := ParseKind("orders")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStatusParsing(t *testing.T) {
	s, err := ParseStatus("hidden")
	require.NoError(t, err)
	assert.Equal(t, StatusHidden, s)

	_, err = ParseStatus("deleted")
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, StatusActive, NormalizeStatus(""))
	assert.Equal(t, StatusActive, NormalizeStatus("archived"))
	assert.Equal(t, StatusHidden, NormalizeStatus(StatusHidden))
}

func TestCategoryInUseError(t *testing.T) {
	var err error = &CategoryInUseError{CategoryID: "cat_0001", DishCount: 3}

	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "cat_0001")
	assert.Contains(t, err.Error(), "3 dish(es)")

	var inUse *CategoryInUseError
	require.True(t, errors.As(err, &inUse))
	assert.Equal(t, 3, inUse.DishCount)
}

func TestPhotoFor(t *testing.T) {
	p := PhotoFor("d_0042")
	assert.Equal(t, "dish_d_0042_1600.webp", p.Full)
	assert.Equal(t, "dish_d_0042_800.webp", p.Small)
}
