package access

type Role string

const (
	RoleOwner      Role = "owner"       // Tenant owner - full access
	RoleAdmin      Role = "admin"       // Back-office administrator
	RoleOpsManager Role = "ops_manager" // Runs operations, reviews expenses
	RoleSupervisor Role = "supervisor"  // Field supervisor
	RoleFinance    Role = "finance"     // Approves and pays expenses
	RoleGuard      Role = "guard"       // Submits own expenses
	RoleViewer     Role = "viewer"      // Read only
)

var RoleValues = []string{
	string(RoleOwner),
	string(RoleAdmin),
	string(RoleOpsManager),
	string(RoleSupervisor),
	string(RoleFinance),
	string(RoleGuard),
	string(RoleViewer),
}

func (r Role) Valid() bool {
	for _, v := range RoleValues {
		if string(r) == v {
			return true
		}
	}
	return false
}

func all(level Level) map[Module]Level {
	m := make(map[Module]Level, len(AllModules))
	for _, mod := range AllModules {
		m[mod] = level
	}
	return m
}

// DefaultRolePermissions maps roles to their permissions
func DefaultRolePermissions() map[Role]Permissions {
	return map[Role]Permissions{
		RoleOwner: {Modules: all(LevelDelete)},
		RoleAdmin: {Modules: all(LevelDelete)},
		RoleOpsManager: {
			Modules: map[Module]Level{
				ModuleCRM:     LevelView,
				ModuleCPQ:     LevelView,
				ModuleOps:     LevelDelete,
				ModuleDocs:    LevelEdit,
				ModuleFinance: LevelEdit,
			},
			Resources: map[string]Level{
				"finance.expense_approval": LevelView,
			},
		},
		RoleSupervisor: {
			Modules: map[Module]Level{
				ModuleOps:     LevelEdit,
				ModuleDocs:    LevelView,
				ModuleFinance: LevelEdit,
			},
			Resources: map[string]Level{
				"ops.sites":                LevelView,
				"finance.expense_review":   LevelNone,
				"finance.expense_approval": LevelNone,
			},
		},
		RoleFinance: {
			Modules: map[Module]Level{
				ModuleCRM:     LevelView,
				ModuleOps:     LevelView,
				ModuleFinance: LevelDelete,
			},
		},
		RoleGuard: {
			Modules: map[Module]Level{
				ModuleFinance: LevelEdit,
			},
			Resources: map[string]Level{
				"finance.expense_review":   LevelNone,
				"finance.expense_approval": LevelNone,
			},
		},
		RoleViewer: {Modules: all(LevelView)},
	}
}
