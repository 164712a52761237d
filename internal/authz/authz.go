// Package authz implements the permission engine: a declarative capability
// matrix of resource × action × role, evaluated together with ownership, plus
// the blocklist gate consulted for every non-safe request.
package authz

import "hushwall/internal/identity"

// Action classifies an operation. Read covers both list and retrieve.
type Action uint8

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

// Safe reports whether the action is read-only. Safe actions bypass the
// blocklist gate entirely.
func (a Action) Safe() bool { return a == ActionRead }

// String implements fmt.Stringer for logging and metric labels.
func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "read"
	}
}

// Resource enumerates the protected resources.
type Resource uint8

const (
	ResourceCategory Resource = iota
	ResourceConfession
	ResourceComment
	ResourceReaction
	ResourceReport
	ResourceMessage
	ResourceAccount
	ResourceBlocklist
)

// String implements fmt.Stringer for logging and metric labels.
func (r Resource) String() string {
	switch r {
	case ResourceCategory:
		return "category"
	case ResourceConfession:
		return "confession"
	case ResourceComment:
		return "comment"
	case ResourceReaction:
		return "reaction"
	case ResourceReport:
		return "report"
	case ResourceMessage:
		return "message"
	case ResourceAccount:
		return "account"
	default:
		return "blocklist"
	}
}

// Object carries the per-object facts a rule may need. Owned means the caller
// owns the object under the resource's ownership notion (account for
// confessions, session for comments and reactions).
type Object struct {
	Owned    bool
	Approved bool
}

// rule is a single cell of the capability matrix.
type rule uint8

const (
	deny rule = iota
	allow
	ownerOnly       // caller must own the object
	ownerUnapproved // caller must own the object and it must not be approved
	ownerOrAdmin    // owner at any role, or admin
)

func (r rule) eval(role identity.Role, obj Object) bool {
	switch r {
	case allow:
		return true
	case ownerOnly:
		return obj.Owned
	case ownerUnapproved:
		return obj.Owned && !obj.Approved
	case ownerOrAdmin:
		return obj.Owned || role == identity.RoleAdmin
	default:
		return false
	}
}

// cells is one matrix row indexed by role: guest, member, moderator, admin.
type cells [4]rule

// capabilities is the whole permission surface. Asymmetries are intentional:
// a moderator may update any confession but may only delete their own
// unapproved ones, and report reads require a role while report creation is
// open to anyone who passes the blocklist gate.
var capabilities = map[Resource]map[Action]cells{
	ResourceCategory: {
		ActionRead:   {allow, allow, allow, allow},
		ActionCreate: {deny, deny, deny, allow},
		ActionUpdate: {deny, deny, deny, allow},
		ActionDelete: {deny, deny, deny, allow},
	},
	ResourceConfession: {
		ActionRead:   {allow, allow, allow, allow},
		ActionCreate: {allow, allow, allow, allow},
		ActionUpdate: {deny, ownerUnapproved, allow, allow},
		ActionDelete: {deny, ownerUnapproved, ownerUnapproved, allow},
	},
	ResourceComment: {
		ActionRead:   {allow, allow, allow, allow},
		ActionCreate: {allow, allow, allow, allow},
		ActionDelete: {ownerOnly, ownerOnly, ownerOnly, ownerOrAdmin},
	},
	ResourceReaction: {
		ActionRead:   {allow, allow, allow, allow},
		ActionCreate: {allow, allow, allow, allow},
		ActionDelete: {ownerOnly, ownerOnly, ownerOnly, ownerOrAdmin},
	},
	ResourceReport: {
		ActionRead:   {deny, deny, allow, allow},
		ActionCreate: {allow, allow, allow, allow},
		// Vote accumulation is modeled as an update; any authenticated
		// account may vote, that is what makes the moderation crowd-sourced.
		ActionUpdate: {deny, allow, allow, allow},
		ActionDelete: {deny, deny, allow, allow},
	},
	ResourceMessage: {
		ActionRead:   {deny, ownerOnly, ownerOnly, ownerOnly},
		ActionCreate: {deny, allow, allow, allow},
	},
	ResourceAccount: {
		ActionRead:   {deny, ownerOnly, ownerOnly, allow},
		ActionUpdate: {deny, ownerOnly, ownerOnly, ownerOnly},
	},
	ResourceBlocklist: {
		ActionRead:   {deny, deny, deny, allow},
		ActionCreate: {deny, deny, deny, allow},
		ActionUpdate: {deny, deny, deny, allow},
		ActionDelete: {deny, deny, deny, allow},
	},
}

// Allowed evaluates the capability matrix for the caller's role. It does not
// consult the blocklist; callers gate non-safe actions through
// Engine.IsBlocked first.
func Allowed(role identity.Role, res Resource, act Action, obj Object) bool {
	actions, ok := capabilities[res]
	if !ok {
		return false
	}
	row, ok := actions[act]
	if !ok {
		return false
	}
	return row[role].eval(role, obj)
}
