package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"promodraft/internal"
)

var layout3 = internal.Layout{HeaderRows: 3, NameCol: 0, PriceCol: 1}

func TestNormalizeWorkedExample(t *testing.T) {
	rows := [][]any{
		{"Technodel price list"},
		{"Updated weekly"},
		{},
		{"Mouse X", "$25.00"},
		{"Keyboard Y", "abc"},
		{"Monitor Z", "1,000"},
	}
	items := Normalize(rows, layout3, nil)
	assert.Equal(t, []internal.CatalogItem{
		{Name: "Mouse X", Price: 25},
		{Name: "Monitor Z", Price: 1000},
	}, items)
}

func TestNormalizeEquivalentPriceForms(t *testing.T) {
	rows := [][]any{
		{"A", "1,234.50"},
		{"B", "$1234.50"},
		{"C", 1234.5},
	}
	items := Normalize(rows, internal.Layout{PriceCol: 1}, nil)
	assert.Len(t, items, 3)
	for _, it := range items {
		assert.Equal(t, int64(1235), it.Price, it.Name)
	}
}

func TestNormalizeDropsIncompleteRows(t *testing.T) {
	rows := [][]any{
		{"", "10"},
		{"No price"},
		{"Blank price", "  "},
		{nil, 5.0},
		{"Nil price", nil},
		{"Negative", "-3"},
		{"Text", "call us"},
		{"Kept", json.Number("7")},
	}
	items := Normalize(rows, internal.Layout{PriceCol: 1}, nil)
	assert.Equal(t, []internal.CatalogItem{{Name: "Kept", Price: 7}}, items)
}

func TestNormalizeKeepsOrderAndColumns(t *testing.T) {
	rows := [][]any{
		{"sku", "price", "name"},
		{"s1", "3", "Third"},
		{"s2", "1", "First"},
		{"s3", "2", "Second"},
	}
	items := Normalize(rows, internal.Layout{HeaderRows: 1, NameCol: 2, PriceCol: 1}, nil)
	assert.Equal(t, []internal.CatalogItem{
		{Name: "Third", Price: 3},
		{Name: "First", Price: 1},
		{Name: "Second", Price: 2},
	}, items)
}

func TestNormalizeEmptyInput(t *testing.T) {
	items := Normalize(nil, layout3, nil)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	items = Normalize([][]any{{"header"}, {"header"}, {"header"}}, layout3, nil)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestNormalizeLogsSkipsAtDebugOnly(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rows := [][]any{{"Good", "1"}, {"Bad", "x"}}

	items := Normalize(rows, internal.Layout{PriceCol: 1}, zap.New(core))
	assert.Len(t, items, 1)
	assert.Equal(t, 1, logs.FilterMessage("catalog row skipped: bad price").Len())
	for _, entry := range logs.All() {
		assert.Equal(t, zapcore.DebugLevel, entry.Level)
	}
}
