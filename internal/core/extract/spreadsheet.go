package extract

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/olusola-dev/askbase/internal/models"
)

// extractSheetRows parses every sheet of a workbook and renders each
// populated data row as one final chunk, bypassing the character chunker.
// Arbitrary character windows make no sense for tabular data.
//
// The first row of each sheet is treated as the header. A data row becomes
// a comma-joined "Header: value" list, skipping blank cells; fully empty
// rows produce no chunk. Row metadata is the 1-based sheet row number, so
// the first data row is row 2.
func extractSheetRows(content []byte, fileName string) ([]models.Chunk, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var chunks []models.Chunk
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(rows) < 2 {
			// Header only, or nothing at all.
			continue
		}
		header := rows[0]
		for i, row := range rows[1:] {
			text := renderRow(header, row)
			if text == "" {
				continue
			}
			chunks = append(chunks, models.Chunk{
				Text:       text,
				StartIndex: len(chunks),
				Metadata: map[string]string{
					models.MetaFileName: fileName,
					models.MetaSheet:    sheet,
					models.MetaRow:      strconv.Itoa(i + 2),
				},
			})
		}
	}
	return chunks, nil
}

func renderRow(header, row []string) string {
	var parts []string
	for col, value := range row {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		name := ""
		if col < len(header) {
			name = strings.TrimSpace(header[col])
		}
		if name == "" {
			name = "column_" + strconv.Itoa(col+1)
		}
		parts = append(parts, name+": "+value)
	}
	return strings.Join(parts, ", ")
}
