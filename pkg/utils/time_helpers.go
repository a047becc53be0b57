package utils

import (
	"strings"
	"time"
)

const (
	DateISO = "2006-01-02"
	DateBR  = "02/01/2006"
)

// Today возвращает текущую дату в формате YYYY-MM-DD.
func Today(now time.Time) string {
	return now.Format(DateISO)
}

// FormatDateBR переводит YYYY-MM-DD в dd/mm/yyyy. Пустая строка даёт fallback,
// нераспознанный формат возвращается как есть.
func FormatDateBR(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if len(value) > len(DateISO) {
		value = value[:len(DateISO)]
	}
	t, err := time.Parse(DateISO, value)
	if err != nil {
		return value
	}
	return t.Format(DateBR)
}
