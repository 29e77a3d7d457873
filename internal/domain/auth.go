package domain

import "time"

// Role differentiates citizens, municipal officials and administrators.
type Role string

const (
	RoleCitizen  Role = "CITIZEN"
	RoleOfficial Role = "OFFICIAL"
	RoleAdmin    Role = "ADMIN"
	RoleSystem   Role = "SYSTEM"
)

// IsStaff reports whether the role may work complaints through the lifecycle.
func (r Role) IsStaff() bool {
	return r == RoleOfficial || r == RoleAdmin
}

// Token represents issued authentication token metadata.
type Token struct {
	SubjectID string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}
