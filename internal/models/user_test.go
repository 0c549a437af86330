package models

import "testing"

func TestUser_IsAdmin(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		expected bool
	}{
		{"admin user", RoleAdmin, true},
		{"mentor", RoleMentor, false},
		{"student", RoleStudent, false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{Role: tt.role}
			if got := user.IsAdmin(); got != tt.expected {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUser_IsReviewer(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		access   bool
		expected bool
	}{
		{"admin user", RoleAdmin, false, true},
		{"mentor", RoleMentor, false, true},
		{"student with access", RoleStudent, true, false},
		{"student", RoleStudent, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{Role: tt.role, MaintenanceAccess: tt.access}
			if got := user.IsReviewer(); got != tt.expected {
				t.Errorf("IsReviewer() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleStudent, RoleMentor, RoleAdmin} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false, want true", role)
		}
	}
	for _, role := range []string{"", "user", "global_mod", "Admin"} {
		if ValidRole(role) {
			t.Errorf("ValidRole(%q) = true, want false", role)
		}
	}
}
