package workflow

import (
	"fmt"
	"sort"
	"strings"

	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
)

// SeatUsage - расчёт мест по продукту. Available всегда вычисляется, не хранится.
type SeatUsage struct {
	Product   string `json:"product"`
	Total     int    `json:"total"`
	Used      int    `json:"used"`
	Available int    `json:"available"`
}

// CountsUsage - лицензия занимает место, если она не отклонена.
func CountsUsage(l entities.License) bool {
	return l.ApprovalStatus != entities.ApprovalRejected
}

// ComputeSeats считает места для каждого продукта из лицензий и настроенных итогов.
func ComputeSeats(licenses []entities.License, totals entities.ProductTotals) []SeatUsage {
	used := make(map[string]int)
	products := make(map[string]struct{}, len(totals))
	for p := range totals {
		products[p] = struct{}{}
	}
	for _, l := range licenses {
		products[l.Produto] = struct{}{}
		if CountsUsage(l) {
			used[l.Produto]++
		}
	}

	out := make([]SeatUsage, 0, len(products))
	for p := range products {
		total := totals[p]
		out = append(out, SeatUsage{Product: p, Total: total, Used: used[p], Available: total - used[p]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Product < out[j].Product })
	return out
}

// ManagedProducts - объединение продуктов из итогов и из лицензий, по алфавиту.
func ManagedProducts(totals entities.ProductTotals, licenseProducts []string) []string {
	set := make(map[string]struct{}, len(totals)+len(licenseProducts))
	for p := range totals {
		set[p] = struct{}{}
	}
	for _, p := range licenseProducts {
		if p != "" {
			set[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// RenameTotals переносит итог старого продукта под новое имя.
func RenameTotals(totals entities.ProductTotals, oldName, newName string) entities.ProductTotals {
	out := totals.Clone()
	if v, ok := out[oldName]; ok {
		delete(out, oldName)
		out[newName] = v
	}
	return out
}

// PlanProducts строит новые итоги по итоговому списку продуктов.
// current - текущий управляемый список, usage - число лицензий (любого статуса) по продукту.
// Продукт можно удалить из списка, только если на него не ссылается ни одна лицензия.
func PlanProducts(current []string, totals entities.ProductTotals, final []string, renames map[string]string, usage map[string]int) (entities.ProductTotals, error) {
	finalSet := make(map[string]struct{}, len(final))
	seenFold := make(map[string]string, len(final))
	for _, name := range final {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" || trimmed != name {
			return nil, apperrors.NewInvalidInputError("Nome de produto inválido: %q", name)
		}
		if prev, dup := seenFold[strings.ToLower(name)]; dup {
			return nil, apperrors.NewInvalidInputError("Produto duplicado: %q e %q", prev, name)
		}
		seenFold[strings.ToLower(name)] = name
		finalSet[name] = struct{}{}
	}

	currentSet := make(map[string]struct{}, len(current))
	for _, name := range current {
		currentSet[name] = struct{}{}
	}
	for oldName, newName := range renames {
		if _, ok := currentSet[oldName]; !ok {
			return nil, apperrors.NewInvalidInputError("Produto %q não existe para ser renomeado", oldName)
		}
		if _, ok := finalSet[newName]; !ok {
			return nil, apperrors.NewInvalidInputError("O novo nome %q não está na lista final de produtos", newName)
		}
	}

	var blocked []string
	for _, name := range current {
		if _, kept := finalSet[name]; kept {
			continue
		}
		if _, renamed := renames[name]; renamed {
			continue
		}
		if usage[name] > 0 {
			blocked = append(blocked, fmt.Sprintf("%q (%d licença(s))", name, usage[name]))
		}
	}
	if len(blocked) > 0 {
		sort.Strings(blocked)
		return nil, apperrors.NewInvalidInputError("Não é possível remover produtos com licenças associadas: %s", strings.Join(blocked, ", "))
	}

	renamed := totals.Clone()
	oldNames := make([]string, 0, len(renames))
	for oldName := range renames {
		oldNames = append(oldNames, oldName)
	}
	sort.Strings(oldNames)
	for _, oldName := range oldNames {
		renamed = RenameTotals(renamed, oldName, renames[oldName])
	}

	next := make(entities.ProductTotals, len(final))
	for _, name := range final {
		next[name] = renamed[name]
	}
	return next, nil
}
