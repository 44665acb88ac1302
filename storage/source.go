package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"sales-dashboard/models"
)

// ReadSource reads a tabular export with a header row. Spreadsheets (.xlsx)
// are read from their first sheet; anything else is parsed as CSV.
// A missing file yields an error wrapping fs.ErrNotExist. A file without
// a header yields an empty table and no error.
func ReadSource(path string) (models.RawTable, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readSpreadsheet(path)
	}
	return readCSV(path)
}

func readCSV(path string) (models.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.RawTable{}, fmt.Errorf("source: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return models.RawTable{}, nil
	}
	if err != nil {
		return models.RawTable{}, fmt.Errorf("source: read header of %q: %w", path, err)
	}

	table := models.RawTable{Columns: cleanHeader(header)}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return models.RawTable{}, fmt.Errorf("source: read %q: %w", path, err)
		}
		if isBlank(row) {
			continue
		}
		table.Rows = append(table.Rows, pad(row, len(table.Columns)))
	}
	return table, nil
}

func readSpreadsheet(path string) (models.RawTable, error) {
	if _, err := os.Stat(path); err != nil {
		return models.RawTable{}, fmt.Errorf("source: open %q: %w", path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return models.RawTable{}, fmt.Errorf("source: open spreadsheet %q: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return models.RawTable{}, fmt.Errorf("source: read sheet %q of %q: %w", sheet, path, err)
	}
	if len(rows) == 0 {
		return models.RawTable{}, nil
	}

	table := models.RawTable{Columns: cleanHeader(rows[0])}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		table.Rows = append(table.Rows, pad(row, len(table.Columns)))
	}
	return table, nil
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// pad stretches short rows to width; longer rows are kept whole since only
// schema columns are projected later.
func pad(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
