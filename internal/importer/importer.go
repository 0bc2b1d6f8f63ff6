// Package importer converts spreadsheet CSV exports into menu documents.
// The result is not saved; callers pass it to the store, which validates it.
package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/chero-kobuleti/menu/pkg/types"
)

var categoryColumns = []string{"id", "order", "ka", "en", "ru"}

var priceRE = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// table is a CSV file read into rows addressed by header name.
type table struct {
	header map[string]int
	rows   [][]string
}

func (t *table) get(row []string, names ...string) string {
	for _, name := range names {
		i, ok := t.header[name]
		if !ok || i >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			return v
		}
	}
	return ""
}

// readTable reads r, dropping a UTF-8 byte order mark and guessing the
// delimiter from the header line.
func readTable(r io.Reader) (*table, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}
	data, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("%w: reading csv: %w", types.ErrIO, err)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %w", types.ErrParse, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: csv has no header", types.ErrParse)
	}

	t := &table{header: make(map[string]int, len(records[0])), rows: records[1:]}
	for i, name := range records[0] {
		t.header[strings.TrimSpace(name)] = i
	}
	return t, nil
}

func sniffDelimiter(data []byte) rune {
	line, _, _ := bytes.Cut(data, []byte("\n"))
	best, count := ',', bytes.Count(line, []byte(","))
	for _, d := range []rune{';', '\t', '|'} {
		if n := bytes.Count(line, []byte(string(d))); n > count {
			best, count = d, n
		}
	}
	return best
}

// Categories converts a CSV with columns id, order, ka, en and ru. Every
// imported category is active.
func Categories(r io.Reader) (*types.Document[types.Category], error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, col := range categoryColumns {
		if _, ok := t.header[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing csv columns %v", types.ErrValidation, missing)
	}

	doc := types.NewDocument[types.Category]()
	for n, row := range t.rows {
		id := t.get(row, "id")
		if id == "" {
			continue
		}
		order, err := strconv.Atoi(t.get(row, "order"))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: order: %w", types.ErrValidation, n+2, err)
		}
		doc.Items = append(doc.Items, types.Category{
			ID:     id,
			Order:  order,
			Status: types.StatusActive,
			Title:  localeColumns(t, row, ""),
		})
	}
	return doc, nil
}

// Dishes converts a dish CSV. Recognized columns are id, order,
// category_id (or categoryId), ka, en, ru, price, vegetarian, topRated,
// soldOut, description_* and story_*; others are ignored. Rows without an
// id are skipped.
func Dishes(r io.Reader) (*types.Document[types.Dish], error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if _, ok := t.header["id"]; !ok {
		return nil, fmt.Errorf("%w: missing csv column id", types.ErrValidation)
	}

	doc := types.NewDocument[types.Dish]()
	for _, row := range t.rows {
		id := t.get(row, "id")
		if id == "" {
			continue
		}
		story := localeColumns(t, row, "story_")
		// Spreadsheets often have the Georgian and English stories swapped.
		if story.KA != "" && story.EN != "" && hasLatin(story.KA) && !hasGeorgian(story.KA) && hasGeorgian(story.EN) {
			story.KA, story.EN = story.EN, story.KA
		}
		doc.Items = append(doc.Items, types.Dish{
			ID:            id,
			CategoryID:    t.get(row, "category_id", "categoryId"),
			Order:         parseOrder(t.get(row, "order")),
			Status:        types.StatusActive,
			PriceMinor:    PriceMinor(t.get(row, "price")),
			Currency:      types.CurrencyGEL,
			Title:         localeColumns(t, row, ""),
			Description:   localeColumns(t, row, "description_"),
			Story:         story,
			Vegetarian:    parseBool(t.get(row, "vegetarian")),
			TopRated:      parseBool(t.get(row, "topRated")),
			SoldOut:       parseBool(t.get(row, "soldOut")),
			PriceVariants: []types.PriceVariant{},
		})
	}
	return doc, nil
}

func localeColumns(t *table, row []string, prefix string) types.LocaleText {
	return types.LocaleText{
		KA: t.get(row, prefix+"ka"),
		EN: t.get(row, prefix+"en"),
		RU: t.get(row, prefix+"ru"),
	}
}

// PriceMinor converts a price cell in lari to tetri. Only the first number
// counts, so "23.00/25.00" is 2300; a comma works as the decimal point.
// Cells without a number are 0.
func PriceMinor(s string) int64 {
	m := priceRE.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(f * 100))
}

func parseOrder(s string) int {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(f)
}

// parseBool treats blank and the usual false spellings as false and any
// other value as true.
func parseBool(s string) bool {
	return !slices.Contains([]string{"", "false", "0", "no", "n", "f"}, strings.ToLower(s))
}

func hasGeorgian(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool { return unicode.In(r, unicode.Georgian) })
}

func hasLatin(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	})
}
