package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryName string
	Search       string
	MinPrice     string
	MaxPrice     string
	WithCategory bool
}

// OrderListFilter 查询订单列表的过滤条件（CustomerID 为 0 表示全部）
type OrderListFilter struct {
	Page       int
	PageSize   int
	CustomerID uint
	Status     string
}

// CartListFilter 查询购物车行的过滤条件（CustomerID 为 0 表示全部）
type CartListFilter struct {
	Page       int
	PageSize   int
	CustomerID uint
}

// TransactionListFilter 查询支付流水的过滤条件
type TransactionListFilter struct {
	Page       int
	PageSize   int
	CustomerID uint
	OrderID    uint
}

// InvoiceListFilter 查询发票的过滤条件
type InvoiceListFilter struct {
	Page       int
	PageSize   int
	CustomerID uint
}

// CouponListFilter 查询优惠券的过滤条件
type CouponListFilter struct {
	Page      int
	PageSize  int
	Code      string
	OnlyValid bool
	Now       time.Time
}

// CustomerListFilter 查询顾客的过滤条件
type CustomerListFilter struct {
	Page     int
	PageSize int
	Search   string
}

// RecommendationListFilter 查询推荐关系的过滤条件
type RecommendationListFilter struct {
	Page        int
	PageSize    int
	ProductID   uint
	ProductName string
}

// AuthzAuditLogListFilter 查询权限审计日志的过滤条件
type AuthzAuditLogListFilter struct {
	Page             int
	PageSize         int
	OperatorID       uint
	TargetCustomerID uint
	Action           string
	Role             string
	CreatedFrom      *time.Time
	CreatedTo        *time.Time
}
