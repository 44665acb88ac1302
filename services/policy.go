package services

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"sales-dashboard/models"
)

// Objects and actions known to the policy.
const (
	ObjectRecords  = "records"
	ObjectAccounts = "accounts"

	ActionViewDetailed = "view_detailed"
	ActionProvision    = "provision"
	ActionUpdate       = "update"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Policy decides what a user may do. Role grants come from a casbin RBAC
// model; an employee's detail-view grant comes from the account flag.
type Policy struct {
	enforcer *casbin.Enforcer
}

// NewPolicy builds the enforcer with the manager grants loaded.
func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("policy: parse model: %w", err)
	}

	enf, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("policy: init enforcer: %w", err)
	}

	rules := [][]string{
		{string(models.RoleManager), ObjectRecords, ActionViewDetailed},
		{string(models.RoleManager), ObjectAccounts, ActionProvision},
		{string(models.RoleManager), ObjectAccounts, ActionUpdate},
	}
	if _, err := enf.AddPolicies(rules); err != nil {
		return nil, fmt.Errorf("policy: load rules: %w", err)
	}

	return &Policy{enforcer: enf}, nil
}

// Allowed reports whether user may perform act on obj.
func (p *Policy) Allowed(user models.User, obj, act string) bool {
	ok, err := p.enforcer.Enforce(string(user.Role), obj, act)
	if err == nil && ok {
		return true
	}
	if user.Role == models.RoleEmployee && obj == ObjectRecords && act == ActionViewDetailed {
		return user.CanViewDetails
	}
	return false
}
