package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role enumerates the access levels recognised by the ledger.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleCommander Role = "Commander"
	RoleLogistics Role = "Logistics"
)

// ParseRole normalises a raw role claim into a known Role.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleAdmin, RoleCommander, RoleLogistics:
		return Role(raw), true
	default:
		return "", false
	}
}

// Actor identifies the authenticated caller of a request. It is carried
// explicitly through every service call; the engine holds no session state.
type Actor struct {
	Name string
	Role Role
	Base primitive.ObjectID // zero when the actor has no assigned base
}

// IsAdmin reports whether the actor holds the Admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
