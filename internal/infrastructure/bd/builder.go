package db

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"inventory-system/pkg/types"
)

// ApplyListParams добавляет к запросу фильтры, поиск, сортировку и пагинацию.
// Поля фильтра и сортировки берутся только из allowedMap (API-имя -> колонка).
func ApplyListParams(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string, searchColumns ...string) sq.SelectBuilder {
	builder = ApplyFilters(builder, filter, allowedMap, searchColumns...)

	if len(filter.Sort) > 0 {
		for jsonField, dir := range filter.Sort {
			dbCol, ok := allowedMap[jsonField]
			if !ok {
				continue
			}
			sqlDir := "ASC"
			if strings.ToLower(dir) == "desc" {
				sqlDir = "DESC"
			}
			builder = builder.OrderBy(fmt.Sprintf("%s %s", dbCol, sqlDir))
		}
	}

	if filter.WithPagination {
		if filter.Limit > 0 {
			builder = builder.Limit(uint64(filter.Limit))
		}
		if filter.Offset > 0 {
			builder = builder.Offset(uint64(filter.Offset))
		}
	}

	return builder
}

// ApplyFilters - только условия WHERE; используется и для подсчёта total.
func ApplyFilters(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string, searchColumns ...string) sq.SelectBuilder {
	for jsonField, val := range filter.Filter {
		dbCol, ok := allowedMap[jsonField]
		if !ok {
			continue
		}

		if s, ok := val.(string); ok && strings.Contains(s, ",") {
			builder = builder.Where(sq.Eq{dbCol: strings.Split(s, ",")})
		} else {
			builder = builder.Where(sq.Eq{dbCol: val})
		}
	}

	if search := strings.TrimSpace(filter.Search); search != "" && len(searchColumns) > 0 {
		pattern := "%" + escapeLike(search) + "%"
		or := sq.Or{}
		for _, col := range searchColumns {
			or = append(or, sq.ILike{col: pattern})
		}
		builder = builder.Where(or)
	}

	return builder
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
