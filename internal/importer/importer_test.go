package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chero-kobuleti/menu/pkg/types"
)

func TestCategories(t *testing.T) {
	in := "\ufeffid,order,ka,en,ru\n" +
		"bakery,10,საცხობი,Bakery,Выпечка\n" +
		",20,,,\n" +
		"salads, 20 ,სალათები,Salads,Салаты\n"

	doc, err := Categories(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, types.Category{
		ID: "bakery", Order: 10, Status: types.StatusActive,
		Title: types.LocaleText{KA: "საცხობი", EN: "Bakery", RU: "Выпечка"},
	}, doc.Items[0])
	assert.Equal(t, 20, doc.Items[1].Order)
}

func TestCategoriesErrors(t *testing.T) {
	_, err := Categories(strings.NewReader("id,order,ka\nx,1,a\n"))
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Contains(t, err.Error(), "en")

	_, err = Categories(strings.NewReader("id,order,ka,en,ru\nx,first,a,b,c\n"))
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = Categories(strings.NewReader(""))
	assert.ErrorIs(t, err, types.ErrParse)
}

func TestDishes(t *testing.T) {
	in := "id;order;category_id;ka;en;ru;price;vegetarian;topRated;soldOut;story_ka;story_en\n" +
		"khachapuri;10;bakery;ხაჭაპური;Khachapuri;Хачапури;23.00/25.00;yes;1;;Baked in a clay oven;თონეში გამომცხვარი\n" +
		";;;;;;;;;;;\n" +
		"lobiani;2.0;bakery;ლობიანი;Lobiani;;12,5;false;0;true;;\n"

	doc, err := Dishes(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, doc.Items, 2)

	k := doc.Items[0]
	assert.Equal(t, "bakery", k.CategoryID)
	assert.Equal(t, int64(2300), k.PriceMinor)
	assert.Equal(t, types.CurrencyGEL, k.Currency)
	assert.True(t, k.Vegetarian)
	assert.True(t, k.TopRated)
	assert.False(t, k.SoldOut)
	assert.Equal(t, "თონეში გამომცხვარი", k.Story.KA, "swapped stories fixed")
	assert.Equal(t, "Baked in a clay oven", k.Story.EN)

	l := doc.Items[1]
	assert.Equal(t, 2, l.Order)
	assert.Equal(t, int64(1250), l.PriceMinor)
	assert.True(t, l.SoldOut)
	assert.Equal(t, types.StatusActive, l.Status)
}

func TestDishesCategoryIDColumn(t *testing.T) {
	doc, err := Dishes(strings.NewReader("id,categoryId,price\nd1,c1,\n"))
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "c1", doc.Items[0].CategoryID)
	assert.Zero(t, doc.Items[0].PriceMinor)
}

func TestPriceMinor(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"18.90", 1890},
		{"23.00/25.00", 2300},
		{"12,5", 1250},
		{"GEL 7", 700},
		{"", 0},
		{"free", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, PriceMinor(tt.in))
		})
	}
}
