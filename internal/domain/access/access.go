package access

import "strings"

// Module is a top-level area of the back office.
type Module string

const (
	ModuleCRM     Module = "crm"
	ModuleCPQ     Module = "cpq"
	ModuleOps     Module = "ops"
	ModuleDocs    Module = "docs"
	ModuleFinance Module = "finance"
	ModuleAdmin   Module = "admin"
)

var AllModules = []Module{ModuleCRM, ModuleCPQ, ModuleOps, ModuleDocs, ModuleFinance, ModuleAdmin}

// Resource names a screen or API surface inside a module.
type Resource string

const (
	ResourceSites           Resource = "sites"
	ResourcePositions       Resource = "positions"
	ResourceSchedule        Resource = "schedule"
	ResourceExpenses        Resource = "expenses"
	ResourceExpenseReview   Resource = "expense_review"
	ResourceExpenseApproval Resource = "expense_approval"
	ResourceUsers           Resource = "users"
	ResourceAudit           Resource = "audit"
	ResourceAny             Resource = ""
)

// Level is ordered: a higher level implies every lower one.
type Level int

const (
	LevelNone Level = iota
	LevelView
	LevelEdit
	LevelDelete
)

func (l Level) String() string {
	switch l {
	case LevelView:
		return "view"
	case LevelEdit:
		return "edit"
	case LevelDelete:
		return "delete"
	default:
		return "none"
	}
}

// Action is what a caller is trying to do.
type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

func (a Action) Level() Level {
	switch a {
	case ActionView:
		return LevelView
	case ActionEdit:
		return LevelEdit
	case ActionDelete:
		return LevelDelete
	default:
		return LevelDelete + 1
	}
}

// Permissions holds a level per module and optional per-resource overrides keyed "module.resource".
type Permissions struct {
	Modules   map[Module]Level
	Resources map[string]Level
}

func resourceKey(m Module, r Resource) string {
	return string(m) + "." + string(r)
}

// LevelFor resolves the effective level; a resource override wins over the module level.
func (p Permissions) LevelFor(m Module, r Resource) Level {
	if r != ResourceAny && p.Resources != nil {
		if lvl, ok := p.Resources[resourceKey(m, r)]; ok {
			return lvl
		}
	}
	return p.Modules[m]
}

// With returns a copy of p with a resource override applied.
func (p Permissions) With(m Module, r Resource, lvl Level) Permissions {
	out := Permissions{
		Modules:   make(map[Module]Level, len(p.Modules)),
		Resources: make(map[string]Level, len(p.Resources)+1),
	}
	for k, v := range p.Modules {
		out.Modules[k] = v
	}
	for k, v := range p.Resources {
		out.Resources[k] = v
	}
	out.Resources[resourceKey(m, r)] = lvl
	return out
}

// ParseResourceKey splits "module.resource".
func ParseResourceKey(key string) (Module, Resource, bool) {
	mod, res, ok := strings.Cut(key, ".")
	if !ok || mod == "" || res == "" {
		return "", "", false
	}
	return Module(mod), Resource(res), true
}
