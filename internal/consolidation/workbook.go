package consolidation

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// IsWorkbook - файл является книгой Excel (.xlsx).
func IsWorkbook(fileName string) bool {
	return strings.EqualFold(filepath.Ext(fileName), ".xlsx")
}

// ReadWorkbookRows читает строки первого непустого листа книги.
func ReadWorkbookRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("não foi possível abrir a planilha: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler a aba %q: %w", sheet, err)
		}
		if len(rows) > 0 {
			return rows, nil
		}
	}
	return nil, nil
}

// ParseFile разбирает CSV или XLSX в зависимости от расширения имени файла.
func ParseFile(fileName string, data []byte, mapping Mapping) (ParseResult, error) {
	if !IsWorkbook(fileName) {
		return ParseSource(string(data), mapping)
	}
	rows, err := ReadWorkbookRows(data)
	if err != nil {
		return ParseResult{}, err
	}
	if len(rows) < 2 {
		return ParseResult{}, ErrNotEnoughLines
	}
	return ParseRows(rows[0], rows[1:], mapping), nil
}

// ReconcileFiles - то же, что Reconcile, но каждый источник может быть CSV или XLSX.
func ReconcileFiles(baseName string, baseData []byte, absoluteName string, absoluteData []byte) (Result, error) {
	base, err := ParseFile(baseName, baseData, BaseMapping)
	if err != nil {
		return Result{}, fmt.Errorf("planilha base: %w", err)
	}
	absolute, err := ParseFile(absoluteName, absoluteData, AbsoluteMapping)
	if err != nil {
		return Result{}, fmt.Errorf("relatório Absolute: %w", err)
	}
	return Result{
		Equipment:       Merge(base.Records, absolute.Records),
		BaseSkipped:     base.Skipped,
		AbsoluteSkipped: absolute.Skipped,
	}, nil
}
