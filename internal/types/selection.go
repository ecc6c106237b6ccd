package types

// SelectionFile is the YAML document that drives a non-interactive export.
type SelectionFile struct {
	Drives    Drives          `yaml:"drives"`
	Software  []SelectionStep `yaml:"software"`
	StoreApps []SelectionStep `yaml:"store_apps"`
	Configs   map[string]bool `yaml:"configs"`
	Licenses  map[string]bool `yaml:"licenses"`
}

type SelectionAction string

const (
	ActionSelectAll      SelectionAction = "select_all"
	ActionDeselectAll    SelectionAction = "deselect_all"
	ActionSelectMethod   SelectionAction = "select_method"
	ActionToggle         SelectionAction = "toggle"
	ActionSelect         SelectionAction = "select"
	ActionDeselect       SelectionAction = "deselect"
	ActionSelectMatching SelectionAction = "select_matching"
	ActionDropMatching   SelectionAction = "deselect_matching"
)

func (a SelectionAction) Valid() bool {
	switch a {
	case ActionSelectAll, ActionDeselectAll, ActionSelectMethod, ActionToggle,
		ActionSelect, ActionDeselect, ActionSelectMatching, ActionDropMatching:
		return true
	default:
		return false
	}
}

// SelectionStep is one operation applied, in file order, to a category.
type SelectionStep struct {
	Action   SelectionAction `yaml:"action"`
	Method   string          `yaml:"method,omitempty"`
	IDs      []string        `yaml:"ids,omitempty"`
	Patterns []string        `yaml:"patterns,omitempty"`
}
