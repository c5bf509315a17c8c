package pipeline

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"promodraft/internal"
	"promodraft/internal/promo"
)

func TestExportCatalogXLSX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out", "catalog.xlsx")
	items := []internal.CatalogItem{{Name: "Mouse X", Price: 25}, {Name: "Monitor Z", Price: 1000}}
	require.NoError(t, ExportCatalogXLSX(items, promo.DefaultPricing(), out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Catalog")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"position", "name", "price", "promo_price", "discount_pct"}, rows[0])
	assert.Equal(t, "Monitor Z", rows[2][1])
	assert.Equal(t, "950", rows[2][3])
}

func TestExportDraftsXLSX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "drafts.xlsx")
	drafts := []internal.Draft{{
		ID: "d1", Item: internal.CatalogItem{Name: "Mouse X", Price: 25}, PromoPrice: 24, DiscountPct: 5,
		Message: "⚡ Mouse X", Model: "m", CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, ExportDraftsXLSX(drafts, out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Drafts")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "d1", rows[1][0])
	assert.Equal(t, "2026-03-01 12:00:00", rows[1][1])
	assert.Equal(t, "⚡ Mouse X", rows[1][7])
}
