// Package identity resolves inbound credentials to a (subject, role) pair.
// Workflow services treat the resulting Actor as opaque trusted input; they
// check role membership and nothing else.
package identity

import (
	"errors"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCitizen    Role = "CITIZEN"
	RoleContractor Role = "CONTRACTOR"
	RoleModerator  Role = "MODERATOR"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

var roles = map[Role]bool{
	RoleCitizen: true, RoleContractor: true, RoleModerator: true,
	RoleAdmin: true, RoleSuperAdmin: true,
}

func (r Role) Valid() bool {
	return roles[r]
}

// ParseRole normalizes a stored role string; unknown values degrade to
// CITIZEN rather than granting anything.
func ParseRole(s string) Role {
	r := Role(s)
	if !r.Valid() {
		return RoleCitizen
	}
	return r
}

// CanModerate reports whether the role may run justification-gated report
// operations (status changes, assignment, moderation, proof review).
func (r Role) CanModerate() bool {
	return r == RoleModerator || r == RoleAdmin || r == RoleSuperAdmin
}

// CanBlockContractors covers the contractor block/unblock surface.
func (r Role) CanBlockContractors() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Actor is the resolved subject behind a request.
type Actor struct {
	ID    uuid.UUID
	Role  Role
	Email string
}

var ErrUnknownCredential = errors.New("unknown credential")

// Provider resolves an opaque credential to an actor. The core never knows
// whether the backing store is a token list, a directory, or a database.
type Provider interface {
	Resolve(credential string) (*Actor, error)
}
