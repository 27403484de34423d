package repository

import "time"

// CustomerListFilter 查询客户列表的过滤条件
type CustomerListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Status   string
}

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page       int
	PageSize   int
	Search     string
	OnlyActive bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	CustomerID  uint
	Status      string
	Name        string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// DeliveryListFilter 查询发货单列表的过滤条件
type DeliveryListFilter struct {
	Page        int
	PageSize    int
	CustomerID  uint
	OrderID     uint
	Status      string
	GdexState   string
	GdexCn      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// LoyaltyHistoryListFilter 查询积分流水列表的过滤条件
type LoyaltyHistoryListFilter struct {
	Page      int
	PageSize  int
	CardID    uint
	OrderID   uint
	EntryType string
}
