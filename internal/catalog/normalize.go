package catalog

import (
	"strings"

	"go.uber.org/zap"

	"promodraft/internal"
	"promodraft/internal/config"
	"promodraft/internal/util"
)

func LayoutFromConfig(cfg config.Config) internal.Layout {
	return internal.Layout{
		HeaderRows: cfg.CatalogHeaderRows,
		NameCol:    cfg.CatalogNameCol,
		PriceCol:   cfg.CatalogPriceCol,
	}
}

// Normalize turns raw spreadsheet rows into catalog items. Rows before
// layout.HeaderRows are headers. A row without a name, without a price, or
// with a price that is not a non-negative number is dropped; drops only show
// up on the debug log. The result keeps source order and is never nil.
func Normalize(rows [][]any, layout internal.Layout, log *zap.Logger) []internal.CatalogItem {
	if log == nil {
		log = zap.NewNop()
	}

	out := make([]internal.CatalogItem, 0, len(rows))
	skipped := 0
	for i, row := range rows {
		if i < layout.HeaderRows {
			continue
		}
		rowNo := i + 1

		name := util.CellText(cellAt(row, layout.NameCol))
		priceCell := cellAt(row, layout.PriceCol)
		if name == "" || isBlank(priceCell) {
			if len(row) > 0 {
				log.Debug("catalog row skipped: missing cell", zap.Int("row", rowNo))
				skipped++
			}
			continue
		}

		price, ok := util.ParsePrice(priceCell)
		if !ok {
			log.Debug("catalog row skipped: bad price", zap.Int("row", rowNo), zap.Any("price", priceCell))
			skipped++
			continue
		}

		out = append(out, internal.CatalogItem{Name: name, Price: price})
	}

	if skipped > 0 {
		log.Debug("catalog rows skipped", zap.Int("skipped", skipped), zap.Int("kept", len(out)))
	}
	return out
}

func cellAt(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
