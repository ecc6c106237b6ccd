package app

import (
	"context"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"rewin/internal/core"
	"rewin/internal/policies"
	"rewin/internal/types"
)

// LoadScan reads a scan directory and starts a fresh session with the
// default selection applied.
func (s Service) LoadScan(ctx context.Context, dir string) (*Session, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("scan directory is required")
	}
	inventory, err := s.ScanLoader.LoadScan(dir)
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().
		Str("scan_dir", dir).
		Int("software", len(inventory.Software)).
		Int("store_apps", len(inventory.StoreApps)).
		Bool("mappings", inventory.HasMappings).
		Msg("scan loaded")
	return &Session{
		Inventory: &inventory,
		Selection: core.NewSelectionFromInventory(inventory, policies.NewBackendPolicy()),
		Drives:    types.DefaultDrives(),
	}, nil
}

// ApplySelectionFile loads a selection file and replays it on session.
func (s Service) ApplySelectionFile(ctx context.Context, session *Session, path string) error {
	selection, err := s.SelectionFile.LoadSelection(path)
	if err != nil {
		return err
	}
	return s.ApplySelection(ctx, session, selection)
}

// ApplySelection replays the steps of a selection document in order.
func (s Service) ApplySelection(ctx context.Context, session *Session, selection types.SelectionFile) error {
	if session == nil || session.Selection == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no scan loaded")
	}
	session.Drives = mergeDrives(session.Drives, selection.Drives)
	for _, step := range selection.Software {
		if err := applyStep(session.Selection, types.CategorySoftware, step); err != nil {
			return err
		}
	}
	for _, step := range selection.StoreApps {
		if err := applyStep(session.Selection, types.CategoryStoreApps, step); err != nil {
			return err
		}
	}
	for _, key := range types.ConfigKeys {
		if value, ok := selection.Configs[key]; ok {
			session.Selection.Set(types.CategoryConfigs, key, value)
		}
	}
	for _, key := range types.LicenseKeys {
		if value, ok := selection.Licenses[key]; ok {
			session.Selection.Set(types.CategoryLicenses, key, value)
		}
	}
	log.Ctx(ctx).Debug().
		Int("software_selected", len(session.Selection.Selected(types.CategorySoftware))).
		Int("store_selected", len(session.Selection.Selected(types.CategoryStoreApps))).
		Msg("selection applied")
	return nil
}

func applyStep(state *core.SelectionState, category types.Category, step types.SelectionStep) error {
	switch step.Action {
	case types.ActionSelectAll:
		state.SelectAll(category)
	case types.ActionDeselectAll:
		state.DeselectAll(category)
	case types.ActionSelectMethod:
		method, ok := types.LookupInstallMethod(step.Method)
		if !ok {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unknown install method: " + step.Method)
		}
		state.SelectByMethod(category, method)
	case types.ActionToggle:
		for _, id := range step.IDs {
			state.Toggle(category, id)
		}
	case types.ActionSelect, types.ActionDeselect:
		for _, id := range step.IDs {
			state.Set(category, id, step.Action == types.ActionSelect)
		}
	case types.ActionSelectMatching, types.ActionDropMatching:
		rules, err := policies.NewSelectionRules(step.Patterns)
		if err != nil {
			return err
		}
		state.SetWhere(category, core.MatchRules(rules), step.Action == types.ActionSelectMatching)
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unknown selection action: " + string(step.Action))
	}
	return nil
}

func mergeDrives(base types.Drives, override types.Drives) types.Drives {
	if override.Primary != "" {
		base.Primary = override.Primary
	}
	if override.Secondary != "" {
		base.Secondary = override.Secondary
	}
	if override.Data != "" {
		base.Data = override.Data
	}
	return base.WithDefaults()
}

// List returns the items of one category that pass the request's filters,
// in scan order.
func (s Service) List(ctx context.Context, session *Session, req ListRequest) ([]ListItem, error) {
	if session == nil || session.Selection == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no scan loaded")
	}
	category := req.Category
	if category == "" {
		category = types.CategorySoftware
	}
	predicates := []core.Predicate{core.MatchSearch(req.Search)}
	if strings.TrimSpace(req.Method) != "" {
		method, ok := types.LookupInstallMethod(req.Method)
		if !ok {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unknown install method: " + req.Method)
		}
		predicates = append(predicates, core.MatchMethod(method))
	}
	if len(req.Patterns) > 0 {
		rules, err := policies.NewSelectionRules(req.Patterns)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, core.MatchRules(rules))
	}

	ids := session.Selection.Filter(category, core.And(predicates...))
	items := make([]ListItem, 0, len(ids))
	for _, id := range ids {
		item, ok := session.Selection.Item(category, id)
		assert.NotEmpty(ctx, item.ID, "filtered id must resolve to an item")
		if !ok {
			continue
		}
		items = append(items, ListItem{
			ID:        id,
			Name:      item.Name,
			Publisher: item.Publisher,
			Method:    item.Method,
			Selected:  session.Selection.IsSelected(category, id),
		})
	}
	return items, nil
}
