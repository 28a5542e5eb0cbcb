package access

// Authorizer is the single capability check used by middleware and services.
type Authorizer interface {
	CanView(perms Permissions, module Module, resource Resource) bool
	CanEdit(perms Permissions, module Module, resource Resource) bool
	CanDelete(perms Permissions, module Module, resource Resource) bool
	Can(perms Permissions, action Action, module Module, resource Resource) bool
	ForRole(role Role) Permissions
}

type levelAuthorizer struct {
	roles map[Role]Permissions
}

// NewAuthorizer returns an Authorizer backed by the default role matrix.
func NewAuthorizer() Authorizer {
	return &levelAuthorizer{roles: DefaultRolePermissions()}
}

func (a *levelAuthorizer) CanView(perms Permissions, module Module, resource Resource) bool {
	return perms.LevelFor(module, resource) >= LevelView
}

func (a *levelAuthorizer) CanEdit(perms Permissions, module Module, resource Resource) bool {
	return perms.LevelFor(module, resource) >= LevelEdit
}

func (a *levelAuthorizer) CanDelete(perms Permissions, module Module, resource Resource) bool {
	return perms.LevelFor(module, resource) >= LevelDelete
}

func (a *levelAuthorizer) Can(perms Permissions, action Action, module Module, resource Resource) bool {
	return perms.LevelFor(module, resource) >= action.Level()
}

func (a *levelAuthorizer) ForRole(role Role) Permissions {
	if p, ok := a.roles[role]; ok {
		return p
	}
	return Permissions{}
}
