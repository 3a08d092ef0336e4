package service

// Actor 当前请求的调用者
type Actor struct {
	CustomerID uint
	IsStaff    bool
}

// scopeCustomerID 员工查看全部（返回 0），顾客只能查看自己的数据
func (a Actor) scopeCustomerID() uint {
	if a.IsStaff {
		return 0
	}
	return a.CustomerID
}

// owns 判断调用者是否可访问该顾客的数据
func (a Actor) owns(customerID uint) bool {
	return a.IsStaff || (a.CustomerID != 0 && a.CustomerID == customerID)
}
