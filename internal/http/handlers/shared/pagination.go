package shared

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageFromQuery 读取 page 与 page_size 查询参数，非法值回落到默认值，单页上限 100。
func PageFromQuery(c *gin.Context) (int, int) {
	page := queryInt(c, "page")
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(c, "page_size")
	switch {
	case pageSize <= 0:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}
	return page, pageSize
}

func queryInt(c *gin.Context, key string) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return value
}
