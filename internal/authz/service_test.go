package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	return svc
}

func TestDefaultStaffRoleCoversStaffRoutes(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	cases := []struct {
		path   string
		method string
	}{
		{path: "/products/", method: "POST"},
		{path: "/api/v1/products/7/", method: "PUT"},
		{path: "/products/7/update_stock/", method: "POST"},
		{path: "/categories/3/", method: "DELETE"},
		{path: "/coupons/", method: "POST"},
		{path: "/product-recommendations/2/", method: "DELETE"},
		{path: "/invoices/", method: "POST"},
		{path: "/customers/", method: "GET"},
		{path: "/api/v1/customers/9/", method: "DELETE"},
		{path: "/staff/coupons/", method: "GET"},
		{path: "/staff/authz/roles/:role/policies", method: "GET"},
	}
	for _, item := range cases {
		allow, err := svc.EnforceStaff(11, item.path, item.method)
		if err != nil {
			t.Fatalf("enforce %s %s failed: %v", item.method, item.path, err)
		}
		if !allow {
			t.Fatalf("expected default staff allowed on %s %s", item.method, item.path)
		}
	}

	allow, err := svc.EnforceStaff(11, "/orders/1/cancel/", "POST")
	if err != nil {
		t.Fatalf("enforce unrelated route failed: %v", err)
	}
	if allow {
		t.Fatalf("staff policy should not cover customer routes")
	}
}

func TestExplicitRoleNarrowsStaff(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.SetCustomerRoles(5, []string{"support"}); err != nil {
		t.Fatalf("set customer roles failed: %v", err)
	}
	roles, err := svc.GetCustomerRoles(5)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:support" {
		t.Fatalf("roles want [role:support], got=%v", roles)
	}

	allow, err := svc.EnforceStaff(5, "/customers/", "GET")
	if err != nil || !allow {
		t.Fatalf("support should list customers, allow=%v err=%v", allow, err)
	}
	allow, err = svc.EnforceStaff(5, "/products/3/update_stock/", "POST")
	if err != nil {
		t.Fatalf("enforce update stock failed: %v", err)
	}
	if allow {
		t.Fatalf("support should not update stock")
	}
	allow, err = svc.EnforceStaff(5, "/customers/3/", "DELETE")
	if err != nil {
		t.Fatalf("enforce delete customer failed: %v", err)
	}
	if allow {
		t.Fatalf("support should not delete customers")
	}

	if err := svc.SetCustomerRoles(5, nil); err != nil {
		t.Fatalf("reset roles failed: %v", err)
	}
	allow, err = svc.EnforceStaff(5, "/customers/3/", "DELETE")
	if err != nil || !allow {
		t.Fatalf("reset staff should fall back to default role, allow=%v err=%v", allow, err)
	}
}

func TestBootstrapBuiltinRolesIdempotent(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:catalog_manager": true,
		"role:support":         true,
		"role:staff":           true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}
	policies, err := svc.GetRolePolicies("support")
	if err != nil {
		t.Fatalf("get role policies failed: %v", err)
	}
	if len(policies) != 3 {
		t.Fatalf("support policies should not duplicate, got=%v", policies)
	}
}

func TestGrantAndRevokeRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("auditor", "/customers", "GET"); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if err := svc.SetCustomerRoles(8, []string{"auditor"}); err != nil {
		t.Fatalf("set roles failed: %v", err)
	}
	allow, err := svc.EnforceStaff(8, "/api/v1/customers/", "get")
	if err != nil || !allow {
		t.Fatalf("auditor should read customers, allow=%v err=%v", allow, err)
	}
	if err := svc.RevokeRolePolicy("auditor", "/customers", "GET"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	allow, err = svc.EnforceStaff(8, "/customers/", "GET")
	if err != nil {
		t.Fatalf("enforce after revoke failed: %v", err)
	}
	if allow {
		t.Fatalf("expected permission revoked")
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/orders/:id/", want: "/orders/:id"},
		{in: "/orders/:id", want: "/orders/:id"},
		{in: "products/", want: "/products"},
		{in: "/api/v1", want: "/"},
		{in: "/", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}
