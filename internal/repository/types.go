package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page         int
	PageSize     int
	Search       string
	OnlyActive   bool
	WithVariants bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	Status        string
	CustomerEmail string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// InboxListFilter 查询收件箱列表的过滤条件
type InboxListFilter struct {
	Page     int
	PageSize int
	Sender   string
	Since    *time.Time
}
