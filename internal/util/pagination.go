package util

// Normalize clamps query pagination values (page >= 1, 1 <= size <=
// 100) and returns the resulting offset.
func Normalize(page, size int) (p, s, offset int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	return page, size, (page - 1) * size
}

func Pages(total int64, size int) int {
	if total <= 0 {
		return 1
	}
	pages := int(total) / size
	if int(total)%size != 0 {
		pages++
	}
	return pages
}
