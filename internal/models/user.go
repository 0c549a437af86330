package models

// Role constants
const (
	RoleStudent = "student"
	RoleMentor  = "mentor"
	RoleAdmin   = "admin"
)

// User represents a team member. Identity is owned by the external provider;
// role and maintenance access are managed here.
type User struct {
	Record
	Email             string `json:"email"`
	Name              string `json:"name"`
	Role              string `json:"role"`               // student, mentor, admin
	MaintenanceAccess bool   `json:"maintenance_access"` // lets a student propose changes
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleMentor, RoleAdmin:
		return true
	}
	return false
}

// IsAdmin returns true if the user is an admin.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsReviewer returns true if the user may approve or reject proposals.
func (u *User) IsReviewer() bool {
	return u.Role == RoleMentor || u.Role == RoleAdmin
}
