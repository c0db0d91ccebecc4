package users

import "strings"

type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

type Status string

const (
	StatusVerified  Status = "verified"
	StatusBanned    Status = "banned"
	StatusRequested Status = "requested"
)

// ParseRole normalizes a role name; "event-manager" is accepted for manager.
func ParseRole(role string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case string(RoleUser):
		return RoleUser, true
	case string(RoleManager), "event-manager":
		return RoleManager, true
	case string(RoleAdmin):
		return RoleAdmin, true
	default:
		return "", false
	}
}

func IsValidRole(role string) bool {
	_, ok := ParseRole(role)
	return ok
}

func IsValidStatus(status string) bool {
	switch Status(status) {
	case StatusVerified, StatusBanned, StatusRequested:
		return true
	default:
		return false
	}
}
