package auth

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the single org-role vocabulary used inside the core. The two
// legacy systems feeding this service disagree on role names
// (admin/user/manager vs ADMIN/EMPLOYEE); ParseRole folds both into this
// type at the boundary so only one vocabulary exists past it.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is one of the three known variants.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// ErrUnknownRole indicates a role string outside both legacy vocabularies.
var ErrUnknownRole = errors.New("unknown role")

// ErrAccessDenied is returned when the access predicate rejects a request.
// Distinct from not-found so callers can map it to 403 rather than 404.
var ErrAccessDenied = errors.New("access denied")

// ParseRole normalizes a raw role string from either legacy vocabulary.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin":
		return RoleAdmin, nil
	case "manager":
		return RoleManager, nil
	case "employee", "user":
		return RoleEmployee, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
}

// CanAccess is the org-hierarchy access predicate. It decides whether the
// requester may read or simulate the target's derived data:
//
//   - admins may access anyone;
//   - everyone may access themselves, regardless of role;
//   - managers may access their direct reports (target's manager reference
//     equals the requester);
//   - everything else is denied.
//
// targetManagerID is empty when the target reports to no one. The caller
// resolves the manager relationship; the predicate itself is pure and is
// evaluated fresh on every request.
func CanAccess(requesterID string, requesterRole Role, targetID, targetManagerID string) bool {
	requesterID = strings.TrimSpace(requesterID)
	targetID = strings.TrimSpace(targetID)
	if requesterID == "" || targetID == "" {
		return false
	}
	if requesterRole == RoleAdmin {
		return true
	}
	if requesterID == targetID {
		return true
	}
	if requesterRole == RoleManager {
		return strings.TrimSpace(targetManagerID) == requesterID
	}
	return false
}

// Authorize wraps CanAccess with the sentinel error expected by service
// and HTTP layers.
func Authorize(requesterID string, requesterRole Role, targetID, targetManagerID string) error {
	if !CanAccess(requesterID, requesterRole, targetID, targetManagerID) {
		return fmt.Errorf("%w: %s cannot access %s", ErrAccessDenied, requesterID, targetID)
	}
	return nil
}
