package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

type XLSXSource struct {
	Path  string
	Sheet string
}

func (s *XLSXSource) Describe() string {
	if s.Sheet != "" {
		return fmt.Sprintf("xlsx:%s#%s", s.Path, s.Sheet)
	}
	return "xlsx:" + s.Path
}

func (s *XLSXSource) Rows(_ context.Context) ([][]any, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := strings.TrimSpace(s.Sheet)
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", s.Path)
		}
		sheet = sheets[0]
	}
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, fmt.Errorf("sheet %q not found in %s", sheet, s.Path)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	out := make([][]any, 0, len(rows))
	for _, row := range rows {
		cells := make([]any, 0, len(row))
		for _, c := range row {
			cells = append(cells, c)
		}
		out = append(out, cells)
	}
	return out, nil
}
