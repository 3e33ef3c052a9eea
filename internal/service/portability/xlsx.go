package portability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"grantpilot/internal/model"
)

// XLSX renders b as a workbook with one sheet per collection. Columns are
// the union of top-level keys with id first; nested values are written as
// JSON text.
func XLSX(b Bundle) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, coll := range model.Collections {
		if _, err := f.NewSheet(coll); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", coll, err)
		}
		if i == 0 {
			if idx, err := f.GetSheetIndex(coll); err == nil {
				f.SetActiveSheet(idx)
			}
		}
		if err := writeSheet(f, coll, b[coll], headerStyle); err != nil {
			return nil, err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, docs []json.RawMessage, headerStyle int) error {
	rows := make([]map[string]any, 0, len(docs))
	seen := map[string]bool{}
	var headers []string
	for _, doc := range docs {
		var obj map[string]any
		if err := json.Unmarshal(doc, &obj); err != nil {
			return fmt.Errorf("%s: %w", sheet, err)
		}
		rows = append(rows, obj)
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	sort.Slice(headers, func(i, j int) bool {
		if headers[i] == "id" || headers[j] == "id" {
			return headers[i] == "id"
		}
		return headers[i] < headers[j]
	})

	if len(headers) == 0 {
		return nil
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for r, obj := range rows {
		row := make([]any, len(headers))
		for c, h := range headers {
			row[c] = cellValue(obj[h])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, r+2, err)
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func cellValue(v any) any {
	switch v.(type) {
	case nil:
		return ""
	case string, float64, bool:
		return v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(raw)
	}
}
