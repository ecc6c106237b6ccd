package core

import (
	"fmt"
	"strings"

	"rewin/internal/policies"
	"rewin/internal/types"
)

// SelectionItem is the view of one selectable id that predicates see.
type SelectionItem struct {
	ID        string
	Name      string
	Publisher string
	Method    types.InstallMethod
	Keys      []string
}

// Predicate decides whether an item is visible in a filtered view.
type Predicate func(SelectionItem) bool

func MatchSearch(query string) Predicate {
	needle := strings.ToLower(strings.TrimSpace(query))
	return func(item SelectionItem) bool {
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(item.Name), needle) ||
			strings.Contains(strings.ToLower(item.Publisher), needle)
	}
}

func MatchMethod(method types.InstallMethod) Predicate {
	return func(item SelectionItem) bool {
		return item.Method == method
	}
}

func MatchRules(rules policies.SelectionRules) Predicate {
	return func(item SelectionItem) bool {
		return rules.Matches(item.Method, item.Keys...)
	}
}

func And(predicates ...Predicate) Predicate {
	return func(item SelectionItem) bool {
		for _, predicate := range predicates {
			if predicate != nil && !predicate(item) {
				return false
			}
		}
		return true
	}
}

type categoryState struct {
	order    []string
	items    map[string]SelectionItem
	selected map[string]bool
}

func (c *categoryState) add(item SelectionItem, selected bool) {
	if _, exists := c.items[item.ID]; !exists {
		c.order = append(c.order, item.ID)
	}
	c.items[item.ID] = item
	c.selected[item.ID] = selected
}

// SelectionState holds the per-category include flags for one loaded scan.
// Ids are never removed; operations on unknown ids do nothing.
type SelectionState struct {
	categories map[types.Category]*categoryState
}

func NewSelectionState() *SelectionState {
	state := &SelectionState{categories: map[types.Category]*categoryState{}}
	for _, category := range types.Categories {
		state.categories[category] = &categoryState{
			items:    map[string]SelectionItem{},
			selected: map[string]bool{},
		}
	}
	return state
}

// NewSelectionFromInventory builds the selection for a freshly loaded scan
// with the default choices applied.
func NewSelectionFromInventory(inventory types.Inventory, policy policies.BackendPolicy) *SelectionState {
	state := NewSelectionState()
	for idx, entry := range inventory.Software {
		method := policy.Classify(entry)
		state.Add(types.CategorySoftware, SelectionItem{
			ID:        SoftwareID(idx),
			Name:      entry.Name,
			Publisher: entry.Publisher,
			Method:    method,
			Keys:      []string{entry.Name, entry.WingetID, entry.ChocolateyID},
		}, method == types.InstallMethodWinget)
	}
	for idx, app := range inventory.StoreApps {
		state.Add(types.CategoryStoreApps, SelectionItem{
			ID:        StoreAppID(idx),
			Name:      app.Name,
			Publisher: app.Publisher,
			Method:    types.InstallMethodStore,
			Keys:      []string{app.Name, app.PackageFamilyName},
		}, false)
	}
	for _, key := range types.ConfigKeys {
		state.Add(types.CategoryConfigs, SelectionItem{ID: key, Name: key}, true)
	}
	state.Add(types.CategoryLicenses, SelectionItem{ID: types.LicenseWindows, Name: "Windows product key"}, true)
	state.Add(types.CategoryLicenses, SelectionItem{ID: types.LicenseOffice, Name: "Office product keys"}, !HasMaskedOfficeKey(inventory.Licenses.Office))
	state.Add(types.CategoryLicenses, SelectionItem{ID: types.LicenseWiFi, Name: "WiFi profiles"}, true)
	return state
}

func SoftwareID(index int) string {
	return fmt.Sprintf("sw_%d", index)
}

func StoreAppID(index int) string {
	return fmt.Sprintf("store_%d", index)
}

// HasMaskedOfficeKey reports whether any Office key was only partially read
// by the scanner.
func HasMaskedOfficeKey(keys []types.OfficeKey) bool {
	for _, key := range keys {
		if IsMaskedKey(key.ProductKey) {
			return true
		}
	}
	return false
}

func IsMaskedKey(key string) bool {
	return strings.Contains(key, "PARTIAL") || strings.Contains(key, "*") || len(key) < 20
}

func (s *SelectionState) category(category types.Category) *categoryState {
	if s == nil {
		return nil
	}
	return s.categories[category]
}

// Add registers an id with an initial value. Re-adding an id keeps its
// position and overwrites its value.
func (s *SelectionState) Add(category types.Category, item SelectionItem, selected bool) {
	state := s.category(category)
	if state == nil {
		return
	}
	state.add(item, selected)
}

func (s *SelectionState) Toggle(category types.Category, id string) {
	state := s.category(category)
	if state == nil {
		return
	}
	if current, ok := state.selected[id]; ok {
		state.selected[id] = !current
	}
}

func (s *SelectionState) Set(category types.Category, id string, selected bool) {
	state := s.category(category)
	if state == nil {
		return
	}
	if _, ok := state.selected[id]; ok {
		state.selected[id] = selected
	}
}

func (s *SelectionState) SelectAll(category types.Category) {
	s.setWhere(category, nil, true)
}

func (s *SelectionState) DeselectAll(category types.Category) {
	s.setWhere(category, nil, false)
}

// SelectByMethod selects every item of the given effective method and leaves
// the rest untouched.
func (s *SelectionState) SelectByMethod(category types.Category, method types.InstallMethod) {
	s.setWhere(category, MatchMethod(method), true)
}

func (s *SelectionState) SetWhere(category types.Category, predicate Predicate, selected bool) {
	s.setWhere(category, predicate, selected)
}

func (s *SelectionState) setWhere(category types.Category, predicate Predicate, selected bool) {
	state := s.category(category)
	if state == nil {
		return
	}
	for _, id := range state.order {
		if predicate == nil || predicate(state.items[id]) {
			state.selected[id] = selected
		}
	}
}

// Filter returns the visible ids in insertion order. It has no effect on
// selection state.
func (s *SelectionState) Filter(category types.Category, predicate Predicate) []string {
	state := s.category(category)
	if state == nil {
		return nil
	}
	visible := make([]string, 0, len(state.order))
	for _, id := range state.order {
		if predicate == nil || predicate(state.items[id]) {
			visible = append(visible, id)
		}
	}
	return visible
}

func (s *SelectionState) IsSelected(category types.Category, id string) bool {
	state := s.category(category)
	if state == nil {
		return false
	}
	return state.selected[id]
}

func (s *SelectionState) Item(category types.Category, id string) (SelectionItem, bool) {
	state := s.category(category)
	if state == nil {
		return SelectionItem{}, false
	}
	item, ok := state.items[id]
	return item, ok
}

// Selected returns the selected ids in insertion order.
func (s *SelectionState) Selected(category types.Category) []string {
	state := s.category(category)
	if state == nil {
		return nil
	}
	var ids []string
	for _, id := range state.order {
		if state.selected[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *SelectionState) Len(category types.Category) int {
	state := s.category(category)
	if state == nil {
		return 0
	}
	return len(state.order)
}
