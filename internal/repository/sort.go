package repository

import "strings"

// orderBy превращает "-created_at" в "created_at DESC". Неизвестные поля игнорируются.
func orderBy(sort string, allowed map[string]string, fallback string) string {
	var parts []string
	for _, field := range strings.Split(sort, ",") {
		field = strings.TrimSpace(field)
		dir := "ASC"
		if strings.HasPrefix(field, "-") {
			dir = "DESC"
			field = field[1:]
		}
		col, ok := allowed[field]
		if !ok {
			continue
		}
		parts = append(parts, col+" "+dir)
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, ", ")
}
