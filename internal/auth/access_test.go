package auth

import (
	"errors"
	"testing"
)

func TestCanAccessDecisionTable(t *testing.T) {
	cases := []struct {
		name      string
		requester string
		role      Role
		target    string
		targetMgr string
		want      bool
	}{
		{"employee self access", "u1", RoleEmployee, "u1", "", true},
		{"employee cannot read peer", "u1", RoleEmployee, "u2", "", false},
		{"manager reads direct report", "m1", RoleManager, "u2", "m1", true},
		{"manager cannot read foreign report", "m1", RoleManager, "u2", "m2", false},
		{"manager self access", "m1", RoleManager, "m1", "m2", true},
		{"admin reads anyone", "a1", RoleAdmin, "u2", "m1", true},
		{"admin reads unmanaged target", "a1", RoleAdmin, "u9", "", true},
		{"employee cannot read own manager", "u2", RoleEmployee, "m1", "", false},
		{"blank requester denied", "", RoleAdmin, "u1", "", false},
		{"blank target denied", "u1", RoleEmployee, "", "", false},
		{"invalid role denied", "u1", Role("owner"), "u2", "u1", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := CanAccess(tc.requester, tc.role, tc.target, tc.targetMgr)
			if got != tc.want {
				t.Fatalf("CanAccess(%s,%s,%s,%s)=%v, want %v",
					tc.requester, tc.role, tc.target, tc.targetMgr, got, tc.want)
			}
		})
	}
}

func TestAuthorizeSentinel(t *testing.T) {
	if err := Authorize("m1", RoleManager, "u2", "m1"); err != nil {
		t.Fatalf("expected allow, got %v", err)
	}
	err := Authorize("u1", RoleEmployee, "u2", "")
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestParseRoleVocabularies(t *testing.T) {
	cases := map[string]Role{
		"admin":    RoleAdmin,
		"ADMIN":    RoleAdmin,
		"manager":  RoleManager,
		"Manager":  RoleManager,
		"employee": RoleEmployee,
		"EMPLOYEE": RoleEmployee,
		"user":     RoleEmployee,
		" user ":   RoleEmployee,
	}
	for raw, want := range cases {
		got, err := ParseRole(raw)
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseRole(%q)=%s, want %s", raw, got, want)
		}
	}

	if _, err := ParseRole("superuser"); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}
