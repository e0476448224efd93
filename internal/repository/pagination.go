package repository

import "gorm.io/gorm"

// countAndPage 先统计过滤后的总数，再附加 LIMIT/OFFSET。
// pageSize <= 0 表示不分页。
func countAndPage(query *gorm.DB, page, pageSize int) (*gorm.DB, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if pageSize <= 0 {
		return query, total, nil
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize), total, nil
}
