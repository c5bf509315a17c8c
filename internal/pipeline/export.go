package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"promodraft/internal"
	"promodraft/internal/promo"
)

func ExportCatalogXLSX(items []internal.CatalogItem, pricing promo.Pricing, outputPath string) error {
	headers := []string{"position", "name", "price", "promo_price", "discount_pct"}
	return writeSheet(outputPath, "Catalog", headers, len(items), func(i int, set func(col int, value any)) {
		item := items[i]
		set(1, i+1)
		set(2, item.Name)
		set(3, item.Price)
		set(4, pricing.PromoPrice(item.Price))
		set(5, pricing.DiscountPct)
	})
}

func ExportDraftsXLSX(drafts []internal.Draft, outputPath string) error {
	headers := []string{"draft_id", "created_at", "item_name", "price", "promo_price", "discount_pct", "model", "message", "specs"}
	return writeSheet(outputPath, "Drafts", headers, len(drafts), func(i int, set func(col int, value any)) {
		d := drafts[i]
		set(1, d.ID)
		set(2, d.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
		set(3, d.Item.Name)
		set(4, d.Item.Price)
		set(5, d.PromoPrice)
		set(6, d.DiscountPct)
		set(7, d.Model)
		set(8, d.Message)
		set(9, d.Specs)
	})
}

func writeSheet(outputPath, sheetName string, headers []string, n int, fill func(i int, set func(col int, value any))) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, sheetName); err != nil {
		return err
	}
	sheet = sheetName

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i := 0; i < n; i++ {
		r := i + 2
		fill(i, func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		})
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
