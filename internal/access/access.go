// Package access decides whether an admin may act on a resource.
//
// Decisions are pure: nothing here touches storage or the transport. Callers
// turn a denied Decision into a Forbidden error with Decision.Err.
package access

import (
	"fmt"
	"slices"

	"cargodesk/internal/errs"
)

type Role string

const (
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
	RoleCook    Role = "COOK"
)

func (r Role) Valid() bool {
	switch r {
	case RoleManager, RoleAdmin, RoleCook:
		return true
	}
	return false
}

type Action string

const (
	Read  Action = "read"
	Write Action = "write"
)

// Principal is anything the gateway can judge.
type Principal interface {
	IsCreator() bool
	RoleName() Role
	Grants() Matrix
}

// Decision is the outcome of a check. Reason is empty when allowed.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(format string, args ...interface{}) Decision {
	return Decision{Reason: fmt.Sprintf(format, args...)}
}

// Err returns nil when allowed and a Forbidden error otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return errs.Forbidden("%s", d.Reason)
}

// Authorize checks a single resource/action pair against the principal's matrix.
func Authorize(p Principal, resource Resource, action Action) Decision {
	if p == nil {
		return deny("no authenticated principal")
	}
	if p.IsCreator() {
		return allow()
	}
	if !p.Grants().Allows(resource, action) {
		return deny("permission denied: %s.%s", resource, action)
	}
	return allow()
}

// AuthorizeRole allows the principal only if its role is one of roles.
func AuthorizeRole(p Principal, roles ...Role) Decision {
	if p == nil {
		return deny("no authenticated principal")
	}
	if slices.Contains(roles, p.RoleName()) {
		return allow()
	}
	return deny("role %s is not allowed to perform this action", p.RoleName())
}

// AuthorizeCreator allows only the super-admin.
func AuthorizeCreator(p Principal) Decision {
	if p != nil && p.IsCreator() {
		return allow()
	}
	return deny("only the super admin can perform this action")
}
