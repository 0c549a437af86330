// Package authz maps a user's role and maintenance flag to a capability and
// decides which actions that capability may perform.
package authz

import (
	"fmt"
	"strings"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"teamhub/internal/models"
)

// Capability is the coarse permission class derived from a user.
type Capability string

const (
	CapabilityNone          Capability = "none"
	CapabilityProposer      Capability = "proposer"
	CapabilityOperator      Capability = "operator"
	CapabilityAdministrator Capability = "administrator"
)

// Action is a "resource:verb" pair checked against the policy.
type Action string

const (
	ActionPropose        Action = "maintenance:propose"
	ActionApply          Action = "maintenance:apply"
	ActionReview         Action = "maintenance:review"
	ActionManageOutreach Action = "outreach:manage"
	ActionManageSettings Action = "settings:manage"
	ActionManageUsers    Action = "users:manage"
	ActionDeleteUsers    Action = "users:delete"
)

// Actions lists every action the policy knows about.
var Actions = []Action{
	ActionPropose,
	ActionApply,
	ActionReview,
	ActionManageOutreach,
	ActionManageSettings,
	ActionManageUsers,
	ActionDeleteUsers,
}

const policyModel = `
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

// Each capability inherits everything granted to the one below it.
var (
	inherits = [][2]Capability{
		{CapabilityOperator, CapabilityProposer},
		{CapabilityAdministrator, CapabilityOperator},
	}
	grants = map[Capability][]Action{
		CapabilityProposer:      {ActionPropose},
		CapabilityOperator:      {ActionApply, ActionReview, ActionManageOutreach},
		CapabilityAdministrator: {ActionManageSettings, ActionManageUsers, ActionDeleteUsers},
	}
)

// Classify derives the capability of u. Mentors and admins operate directly
// whatever their maintenance flag; the flag only lifts a student to proposer.
func Classify(u *models.User) Capability {
	if u == nil {
		return CapabilityNone
	}
	switch u.Role {
	case models.RoleAdmin:
		return CapabilityAdministrator
	case models.RoleMentor:
		return CapabilityOperator
	case models.RoleStudent:
		if u.MaintenanceAccess {
			return CapabilityProposer
		}
	}
	return CapabilityNone
}

// Error is returned when the caller may not perform an action.
type Error struct {
	Action     Action
	Capability Capability
	// Unauthenticated is set when there was no user at all.
	Unauthenticated bool
}

func (e *Error) Error() string {
	if e.Unauthenticated {
		return "authentication required"
	}
	return fmt.Sprintf("permission denied: %s may not %s", e.Capability, e.Action)
}

// Gate evaluates actions against the capability policy.
type Gate struct {
	mu       sync.RWMutex
	enforcer *casbin.Enforcer
}

// NewGate builds the enforcer and loads the built-in policy.
func NewGate() (*Gate, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to parse model: %w", err)
	}
	enf, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to initialize enforcer: %w", err)
	}
	for _, pair := range inherits {
		if _, err := enf.AddGroupingPolicy(string(pair[0]), string(pair[1])); err != nil {
			return nil, fmt.Errorf("authz: failed to add role %s: %w", pair[0], err)
		}
	}
	for capability, actions := range grants {
		for _, a := range actions {
			obj, act := split(a)
			if _, err := enf.AddPolicy(string(capability), obj, act); err != nil {
				return nil, fmt.Errorf("authz: failed to add policy %s %s: %w", capability, a, err)
			}
		}
	}
	return &Gate{enforcer: enf}, nil
}

// MustNewGate is NewGate for callers that cannot recover from a broken policy.
func MustNewGate() *Gate {
	g, err := NewGate()
	if err != nil {
		panic(err)
	}
	return g
}

// Allowed reports whether capability c may perform a.
func (g *Gate) Allowed(c Capability, a Action) bool {
	if c == CapabilityNone {
		return false
	}
	obj, act := split(a)

	g.mu.RLock()
	defer g.mu.RUnlock()
	ok, err := g.enforcer.Enforce(string(c), obj, act)
	return err == nil && ok
}

// Can reports whether u may perform a.
func (g *Gate) Can(u *models.User, a Action) bool {
	return g.Allowed(Classify(u), a)
}

// Authorize returns an *Error when u may not perform a.
func (g *Gate) Authorize(u *models.User, a Action) error {
	if u == nil {
		return &Error{Action: a, Capability: CapabilityNone, Unauthenticated: true}
	}
	c := Classify(u)
	if !g.Allowed(c, a) {
		return &Error{Action: a, Capability: c}
	}
	return nil
}

// Permissions lists the actions u may perform, for display.
func (g *Gate) Permissions(u *models.User) []Action {
	c := Classify(u)
	var out []Action
	for _, a := range Actions {
		if g.Allowed(c, a) {
			out = append(out, a)
		}
	}
	return out
}

func split(a Action) (string, string) {
	obj, act, _ := strings.Cut(string(a), ":")
	return obj, act
}
