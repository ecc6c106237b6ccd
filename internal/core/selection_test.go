package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewin/internal/policies"
	"rewin/internal/types"
)

func sampleInventory() types.Inventory {
	return types.Inventory{
		ScanDir: "scan",
		Software: []types.SoftwareEntry{
			{Name: "Git", Version: "2.44.0", Publisher: "The Git Development Community", InstallMethod: types.InstallMethodWinget, WingetID: "Git.Git", ChocolateyID: "git"},
			{Name: "7-Zip", Version: "23.01", Publisher: "Igor Pavlov", InstallMethod: types.InstallMethodChocolatey, ChocolateyID: "7zip"},
			{Name: "Legacy Tool", Version: "1.0", Publisher: "Acme", InstallMethod: types.InstallMethodManual},
			{Name: "Firefox", Version: "125.0", Publisher: "Mozilla", InstallMethod: types.InstallMethodWinget, WingetID: "Mozilla.Firefox"},
		},
		StoreApps: []types.StoreAppEntry{
			{Name: "Calculator", Version: "11.2", Publisher: "Microsoft", PackageFamilyName: "Microsoft.WindowsCalculator_8wekyb3d8bbwe"},
			{Name: "Spotify", Version: "1.2", Publisher: "Spotify AB", PackageFamilyName: "SpotifyAB.SpotifyMusic_zpdnekdrzrea0"},
		},
		HasLicenses: true,
		Licenses: types.LicenseData{
			Windows:      types.WindowsLicense{RecommendedKey: "AAAAA-BBBBB-CCCCC-DDDDD-EEEEE"},
			Office:       []types.OfficeKey{{Product: "Office 2019", ProductKey: "FFFFF-GGGGG-HHHHH-IIIII-JJJJJ"}},
			WiFiProfiles: []types.WiFiProfile{{ProfileName: "home", Password: "secret"}},
		},
	}
}

func TestSelectionDefaults(t *testing.T) {
	state := NewSelectionFromInventory(sampleInventory(), policies.NewBackendPolicy())

	if diff := cmp.Diff([]string{"sw_0", "sw_3"}, state.Selected(types.CategorySoftware)); diff != "" {
		t.Fatalf("unexpected default software selection (-want +got):\n%s", diff)
	}
	assert.Empty(t, state.Selected(types.CategoryStoreApps))
	assert.Equal(t, types.ConfigKeys, state.Selected(types.CategoryConfigs))
	assert.Equal(t, []string{types.LicenseWindows, types.LicenseOffice, types.LicenseWiFi}, state.Selected(types.CategoryLicenses))
}

func TestSelectionMaskedOfficeKeyDefaultsOff(t *testing.T) {
	inventory := sampleInventory()
	inventory.Licenses.Office = []types.OfficeKey{{Product: "Office 365", ProductKey: "PARTIAL-XXXXX"}}
	state := NewSelectionFromInventory(inventory, policies.NewBackendPolicy())
	assert.False(t, state.IsSelected(types.CategoryLicenses, types.LicenseOffice))
	assert.True(t, state.IsSelected(types.CategoryLicenses, types.LicenseWindows))
}

func TestIsMaskedKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{key: "FFFFF-GGGGG-HHHHH-IIIII-JJJJJ", want: false},
		{key: "*****-*****-*****-*****-JJJJJ", want: true},
		{key: "PARTIAL: JJJJJ-KKKKK-LLLLL-MMMMM", want: true},
		{key: "SHORT-KEY", want: true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsMaskedKey(tt.key), tt.key)
	}
}

func TestSelectionToggleUnknownIDIsNoop(t *testing.T) {
	state := NewSelectionFromInventory(sampleInventory(), policies.NewBackendPolicy())
	before := state.Selected(types.CategorySoftware)

	require.NotPanics(t, func() {
		state.Toggle(types.CategorySoftware, "sw_99")
		state.Toggle(types.Category("bogus"), "sw_0")
		state.Set(types.CategoryStoreApps, "store_42", true)
	})
	if diff := cmp.Diff(before, state.Selected(types.CategorySoftware)); diff != "" {
		t.Fatalf("selection changed (-want +got):\n%s", diff)
	}
	assert.Empty(t, state.Selected(types.CategoryStoreApps))
}

func TestSelectionToggle(t *testing.T) {
	state := NewSelectionFromInventory(sampleInventory(), policies.NewBackendPolicy())
	state.Toggle(types.CategorySoftware, "sw_0")
	assert.False(t, state.IsSelected(types.CategorySoftware, "sw_0"))
	state.Toggle(types.CategorySoftware, "sw_0")
	assert.True(t, state.IsSelected(types.CategorySoftware, "sw_0"))
}

func TestSelectAllThenDeselectAll(t *testing.T) {
	state := NewSelectionFromInventory(sampleInventory(), policies.NewBackendPolicy())
	for _, category := range types.Categories {
		state.SelectAll(category)
		assert.Len(t, state.Selected(category), state.Len(category), "category %s", category)
		state.DeselectAll(category)
		assert.Empty(t, state.Selected(category), "category %s", category)
	}
}

func TestSelectByMethodLeavesOthersUntouched(t *testing.T) {
	state := NewSelectionFromInventory(sampleInventory(), policies.NewBackendPolicy())
	state.SelectByMethod(types.CategorySoftware, types.InstallMethodChocolatey)

	if diff := cmp.Diff([]string{"sw_0", "sw_1", "sw_3"}, state.Selected(types.CategorySoftware)); diff != "" {
		t.Fatalf("unexpected selection (-want +got):\n%s", diff)
	}
}

func TestSelectByMethodUsesEffectiveMethod(t *testing.T) {
	state := NewSelectionFromInventory(sampleInventory(), policies.NewBackendPolicy())
	state.DeselectAll(types.CategorySoftware)
	state.SelectByMethod(types.CategorySoftware, types.InstallMethodChocolatey)

	// Git has a chocolatey id but winget wins the tie-break.
	if diff := cmp.Diff([]string{"sw_1"}, state.Selected(types.CategorySoftware)); diff != "" {
		t.Fatalf("unexpected selection (-want +got):\n%s", diff)
	}
}

func TestFilterPreservesHiddenSelection(t *testing.T) {
	state := NewSelectionFromInventory(sampleInventory(), policies.NewBackendPolicy())

	visible := state.Filter(types.CategorySoftware, MatchSearch("mozilla"))
	if diff := cmp.Diff([]string{"sw_3"}, visible); diff != "" {
		t.Fatalf("unexpected visible ids (-want +got):\n%s", diff)
	}
	// Hidden sw_0 keeps its selection.
	assert.True(t, state.IsSelected(types.CategorySoftware, "sw_0"))

	again := state.Filter(types.CategorySoftware, MatchSearch("mozilla"))
	assert.Equal(t, visible, again)

	all := state.Filter(types.CategorySoftware, MatchSearch(""))
	assert.Equal(t, []string{"sw_0", "sw_1", "sw_2", "sw_3"}, all)
}

func TestFilterCombinedPredicates(t *testing.T) {
	state := NewSelectionFromInventory(sampleInventory(), policies.NewBackendPolicy())
	visible := state.Filter(types.CategorySoftware, And(MatchSearch("i"), MatchMethod(types.InstallMethodWinget)))
	assert.Equal(t, []string{"sw_0", "sw_3"}, visible)
}

func TestSetWhereWithRules(t *testing.T) {
	state := NewSelectionFromInventory(sampleInventory(), policies.NewBackendPolicy())
	rules, err := policies.NewSelectionRules([]string{"manual:*", "winget:mozilla.*"})
	require.NoError(t, err)

	state.DeselectAll(types.CategorySoftware)
	state.SetWhere(types.CategorySoftware, MatchRules(rules), true)
	assert.Equal(t, []string{"sw_2", "sw_3"}, state.Selected(types.CategorySoftware))
}
