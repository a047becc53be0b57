package consolidation

import (
	"sort"
	"strings"

	"inventory-system/internal/entities"
)

// SerialKey - ключ сопоставления: верхний регистр, без пробелов.
func SerialKey(serial string) string {
	return strings.ReplaceAll(strings.ToUpper(serial), " ", "")
}

// Result - итог сведения двух источников.
type Result struct {
	Equipment       []Record `json:"equipment"`
	BaseSkipped     int      `json:"baseSkipped"`
	AbsoluteSkipped int      `json:"absoluteSkipped"`
}

// Merge сводит уже разобранные источники. Внутри источника побеждает последняя строка,
// значения Absolute перекрывают базовые поле за полем.
func Merge(base, absolute []Record) []Record {
	merged := make(map[string]Record, len(base)+len(absolute))

	for _, rec := range base {
		merged[SerialKey(rec["serial"])] = copyRecord(rec)
	}
	for _, rec := range absolute {
		key := SerialKey(rec["serial"])
		existing, ok := merged[key]
		if !ok {
			merged[key] = copyRecord(rec)
			continue
		}
		for field, value := range rec {
			existing[field] = value
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Record, 0, len(merged))
	for _, k := range keys {
		rec := merged[k]
		if strings.TrimSpace(rec["usuarioAtual"]) != "" {
			rec["status"] = string(entities.StatusEmUso)
		}
		out = append(out, rec)
	}
	return out
}

// Reconcile разбирает базовую таблицу и выгрузку Absolute (CSV) и сводит их по серийному номеру.
func Reconcile(baseText, absoluteText string) (Result, error) {
	return ReconcileFiles("base.csv", []byte(baseText), "absolute.csv", []byte(absoluteText))
}

// ParsePeriodic разбирает файл периодического обновления (только колонки Absolute).
func ParsePeriodic(text string) (ParseResult, error) {
	return ParseSource(text, AbsoluteMapping)
}

// ToEquipment переносит известные поля записи в сущность; неизвестные игнорируются.
func (r Record) ToEquipment() *entities.Equipment {
	eq := &entities.Equipment{}
	for field, value := range r {
		eq.Set(field, value)
	}
	return eq
}

func copyRecord(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
