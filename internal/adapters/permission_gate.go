package adapters

import (
	"context"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/rs/zerolog/log"

	"bulkops/internal/types"
)

// AdminGate allows every capability to administrators and nothing to anyone
// else.
type AdminGate struct{}

func NewAdminGate() AdminGate {
	return AdminGate{}
}

func (AdminGate) Allowed(ctx context.Context, actor types.User, capability types.Capability, scope *types.Project) bool {
	return actor.Admin
}

const globalObject = "global"

// capabilityModel grants a capability when a policy line matches the actor's
// login, directly or through a grouping line, and the requested object.
// Objects are "global" or "project:<identifier>"; policy objects may end in
// "*".
const capabilityModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (r.sub == p.sub || g(r.sub, p.sub)) && keyMatch(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// CasbinGate answers capability checks from a casbin policy file.
// Administrators bypass the policy.
type CasbinGate struct {
	mu       sync.RWMutex
	enforcer *casbin.Enforcer
}

func NewCasbinGate(policyPath string) (*CasbinGate, error) {
	m, err := model.NewModelFromString(capabilityModel)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to load permission model").
			WithCause(err)
	}
	var enforcer *casbin.Enforcer
	if policyPath == "" {
		enforcer, err = casbin.NewEnforcer(m)
	} else {
		enforcer, err = casbin.NewEnforcer(m, fileadapter.NewAdapter(policyPath))
	}
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to load permission policy").
			WithCause(err)
	}
	return &CasbinGate{enforcer: enforcer}, nil
}

func capabilityObject(scope *types.Project) string {
	if scope == nil {
		return globalObject
	}
	return "project:" + scope.Identifier
}

func (g *CasbinGate) Allowed(ctx context.Context, actor types.User, capability types.Capability, scope *types.Project) bool {
	if actor.Admin {
		return true
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	object := capabilityObject(scope)
	ok, err := g.enforcer.Enforce(actor.Login, object, string(capability))
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("object", object).Msg("permission check failed")
		return false
	}
	return ok
}

// Grant adds a policy line at runtime.
func (g *CasbinGate) Grant(login string, object string, capability types.Capability) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.enforcer.AddPolicy(login, object, string(capability))
	return err
}
