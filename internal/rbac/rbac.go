// Package rbac defines the closed role set and the capability checks the
// HTTP layer consults. Authorization decisions live here, not in handlers.
package rbac

import "fmt"

// Role is one of the two recognized account roles. Anything else is
// rejected at the boundary.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

func (r Role) String() string { return string(r) }

// ParseRole validates an untrusted role string against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleViewer:
		return RoleViewer, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// CanManageSettings reports whether the role may read or change the
// global system settings.
func CanManageSettings(r Role) bool { return r == RoleAdmin }

// CanModerateFeedback reports whether the role may list all users'
// feedback.
func CanModerateFeedback(r Role) bool { return r == RoleAdmin }

// CanManageModels reports whether the role may register or reprice models.
func CanManageModels(r Role) bool { return r == RoleAdmin }
