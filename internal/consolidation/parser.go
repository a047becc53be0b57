package consolidation

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNotEnoughLines - в файле нет заголовка и хотя бы одной строки данных.
var ErrNotEnoughLines = errors.New("o arquivo CSV deve conter um cabeçalho e pelo menos uma linha de dados")

// Record - частичная запись оборудования: поле -> значение.
type Record map[string]string

// Serial возвращает серийный номер записи без пробелов по краям.
func (r Record) Serial() string { return strings.TrimSpace(r["serial"]) }

// ParseResult - записи источника и число строк, отброшенных из-за пустого серийного номера.
type ParseResult struct {
	Records []Record
	Skipped int
}

var lineBreak = regexp.MustCompile(`\r\n|\n`)

// SplitLines делит текст на строки после обрезки пробелов по краям.
func SplitLines(text string) []string {
	return lineBreak.Split(strings.TrimSpace(text), -1)
}

// SplitLine делит строку по sep. Кавычка переключает режим "внутри кавычек",
// сама в значение не попадает; разделитель внутри кавычек - обычный символ.
func SplitLine(line string, sep rune) []string {
	var (
		result  []string
		current strings.Builder
		inQuote bool
	)
	for _, ch := range line {
		switch {
		case ch == '"':
			inQuote = !inQuote
		case ch == sep && !inQuote:
			result = append(result, cleanField(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	return append(result, cleanField(current.String()))
}

func cleanField(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}

// ParseSource разбирает CSV с запятыми по таблице колонок.
// Строки без серийного номера не ошибка: они отбрасываются и учитываются в Skipped.
// Полностью пустые строки просто пропускаются.
func ParseSource(text string, mapping Mapping) (ParseResult, error) {
	lines := SplitLines(text)
	if len(lines) < 2 {
		return ParseResult{}, ErrNotEnoughLines
	}

	headerLine := strings.TrimPrefix(lines[0], "\uFEFF")
	header := SplitLine(strings.TrimSuffix(headerLine, ","), ',')
	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, SplitLine(line, ','))
	}
	return ParseRows(header, rows, mapping), nil
}

// ParseRows применяет таблицу колонок к уже разделённым строкам.
func ParseRows(header []string, rows [][]string, mapping Mapping) ParseResult {
	normalized, raw := mapping.index()
	fields := make([]string, len(header))
	for i, col := range header {
		if f, ok := resolve(normalized, raw, col); ok {
			fields[i] = f
		}
	}

	var res ParseResult
	for _, values := range rows {
		// строка из одних разделителей - это строка без серийного номера
		if isBlankRow(values) {
			if len(values) > 1 {
				res.Skipped++
			}
			continue
		}
		rec := make(Record)
		for i, field := range fields {
			if field == "" || i >= len(values) {
				continue
			}
			rec[field] = strings.TrimSpace(values[i])
		}
		if rec.Serial() == "" {
			res.Skipped++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

func isBlankRow(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
