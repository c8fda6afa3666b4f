package service

import (
	"strings"

	"github.com/noah-isme/gema-qbank-api/internal/models"
)

// Operation names an entry point guarded by the AccessGate.
type Operation string

const (
	OperationCreate               Operation = "question.create"
	OperationRevise               Operation = "question.revise"
	OperationExplain              Operation = "question.explain"
	OperationApprove              Operation = "question.approve"
	OperationReject               Operation = "question.reject"
	OperationView                 Operation = "question.view"
	OperationList                 Operation = "question.list"
	OperationManageClassification Operation = "classification.manage"
)

// Mutates reports whether op changes a question.
func (op Operation) Mutates() bool {
	switch op {
	case OperationCreate, OperationRevise, OperationExplain, OperationApprove, OperationReject:
		return true
	}
	return false
}

// Actor is the authenticated caller supplied by the identity layer.
type Actor struct {
	ID   uint
	Role models.Role
}

// NewActor normalises a raw role claim into an Actor.
func NewActor(id uint, role string) Actor {
	return Actor{ID: id, Role: models.Role(strings.ToLower(strings.TrimSpace(role)))}
}

// IsSuperAdmin reports whether the actor bypasses stage role checks.
func (a Actor) IsSuperAdmin() bool {
	return a.Role == models.RoleSuperAdmin
}

var workflowRoles = []models.Role{models.RoleGatherer, models.RoleCreator, models.RoleExplainer, models.RoleProcessor}

// AccessGate decides whether an actor may invoke an operation. The super-role
// passes every check; every other role must be in the operation's allowed set.
type AccessGate struct {
	allowed map[Operation]map[models.Role]struct{}
}

// NewAccessGate builds the gate with the pipeline's stage ownership rules.
func NewAccessGate() *AccessGate {
	gate := &AccessGate{allowed: make(map[Operation]map[models.Role]struct{})}
	gate.allow(OperationCreate, models.RoleGatherer)
	gate.allow(OperationRevise, models.RoleCreator)
	gate.allow(OperationExplain, models.RoleExplainer)
	gate.allow(OperationApprove, models.RoleProcessor)
	gate.allow(OperationReject, models.RoleProcessor)
	gate.allow(OperationView, workflowRoles...)
	gate.allow(OperationList, workflowRoles...)
	gate.allow(OperationManageClassification)
	return gate
}

func (g *AccessGate) allow(op Operation, roles ...models.Role) {
	set, ok := g.allowed[op]
	if !ok {
		set = make(map[models.Role]struct{}, len(roles))
		g.allowed[op] = set
	}
	for _, role := range roles {
		set[role] = struct{}{}
	}
}

// Authorize returns a Forbidden error when actor may not perform op.
func (g *AccessGate) Authorize(actor Actor, op Operation) error {
	if actor.IsSuperAdmin() {
		return nil
	}
	if _, ok := g.allowed[op][actor.Role]; !ok {
		return forbidden(actor.Role, op)
	}
	return nil
}

// AllowedRoles lists the ordinary roles permitted for op.
func (g *AccessGate) AllowedRoles(op Operation) []models.Role {
	roles := make([]models.Role, 0, len(g.allowed[op]))
	for _, role := range workflowRoles {
		if _, ok := g.allowed[op][role]; ok {
			roles = append(roles, role)
		}
	}
	return roles
}
