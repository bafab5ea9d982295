package repository

import "gorm.io/gorm"

// applyPagination 应用分页参数，pageSize 非正数时不分页
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}

func countAndPage(query *gorm.DB, page, pageSize int, dest interface{}, preloads ...string) (int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	query = applyPagination(query, page, pageSize)
	for _, name := range preloads {
		query = query.Preload(name)
	}
	if err := query.Order("id desc").Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}
