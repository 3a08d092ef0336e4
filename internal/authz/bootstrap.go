package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "catalog_manager",
			Policies: []Policy{
				{Object: "/products", Action: "POST"},
				{Object: "/products/:id", Action: "*"},
				{Object: "/products/:id/update_stock", Action: "POST"},
				{Object: "/categories", Action: "POST"},
				{Object: "/categories/:id", Action: "*"},
				{Object: "/product-recommendations", Action: "POST"},
				{Object: "/product-recommendations/:id", Action: "DELETE"},
				{Object: "/coupons", Action: "POST"},
				{Object: "/coupons/:id", Action: "*"},
				{Object: "/staff/coupons", Action: "GET"},
			},
		},
		{
			Role: "support",
			Policies: []Policy{
				{Object: "/customers", Action: "GET"},
				{Object: "/customers/:id", Action: "GET"},
				{Object: "/invoices", Action: "POST"},
			},
		},
		{
			Role:     "staff",
			Inherits: []string{"catalog_manager", "support"},
			Policies: []Policy{
				{Object: "/customers/:id", Action: "DELETE"},
				{Object: "/staff/authz/*", Action: "*"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略，可重复执行
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}
		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}
		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
