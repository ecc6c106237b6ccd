package app

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewin/internal/types"
)

func TestLoadScanAppliesDefaultSelection(t *testing.T) {
	service := newTestService(t)
	session, err := service.LoadScan(t.Context(), writeTestScan(t))
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"sw_0"}, session.Selection.Selected(types.CategorySoftware)); diff != "" {
		t.Fatalf("unexpected default software selection (-want +got):\n%s", diff)
	}
	assert.Empty(t, session.Selection.Selected(types.CategoryStoreApps))
	assert.True(t, session.Selection.IsSelected(types.CategoryLicenses, types.LicenseWindows))
	assert.False(t, session.Selection.IsSelected(types.CategoryLicenses, types.LicenseOffice), "masked office keys start deselected")
	assert.Equal(t, types.DefaultDrives(), session.Drives)
}

func TestLoadScanRequiresDirectory(t *testing.T) {
	service := newTestService(t)
	_, err := service.LoadScan(t.Context(), "  ")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestApplySelectionRunsStepsInOrder(t *testing.T) {
	service := newTestService(t)
	session, err := service.LoadScan(t.Context(), writeTestScan(t))
	require.NoError(t, err)

	err = service.ApplySelection(t.Context(), session, types.SelectionFile{
		Drives: types.Drives{Data: "E:"},
		Software: []types.SelectionStep{
			{Action: types.ActionDeselectAll},
			{Action: types.ActionSelectMethod, Method: "choco"},
			{Action: types.ActionToggle, IDs: []string{"sw_2"}},
		},
		StoreApps: []types.SelectionStep{{Action: types.ActionSelectAll}},
		Configs:   map[string]bool{types.ConfigSSH: false},
		Licenses:  map[string]bool{types.LicenseOffice: true},
	})
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"sw_1", "sw_2"}, session.Selection.Selected(types.CategorySoftware)); diff != "" {
		t.Fatalf("unexpected software selection (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"store_0"}, session.Selection.Selected(types.CategoryStoreApps))
	assert.False(t, session.Selection.IsSelected(types.CategoryConfigs, types.ConfigSSH))
	assert.True(t, session.Selection.IsSelected(types.CategoryConfigs, types.ConfigGit))
	assert.True(t, session.Selection.IsSelected(types.CategoryLicenses, types.LicenseOffice))
	assert.Equal(t, types.Drives{Primary: "C:", Secondary: "D:", Data: "E:"}, session.Drives)
}

func TestApplySelectionRejectsUnknownMethod(t *testing.T) {
	service := newTestService(t)
	session, err := service.LoadScan(t.Context(), writeTestScan(t))
	require.NoError(t, err)

	err = service.ApplySelection(t.Context(), session, types.SelectionFile{
		Software: []types.SelectionStep{{Action: types.ActionSelectMethod, Method: "apt"}},
	})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestApplySelectionWithoutScan(t *testing.T) {
	service := newTestService(t)
	err := service.ApplySelection(t.Context(), nil, types.SelectionFile{})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestListFiltersBySearchAndMethod(t *testing.T) {
	service := newTestService(t)
	session, err := service.LoadScan(t.Context(), writeTestScan(t))
	require.NoError(t, err)

	tests := []struct {
		name string
		req  ListRequest
		want []string
	}{
		{name: "all", req: ListRequest{}, want: []string{"sw_0", "sw_1", "sw_2"}},
		{name: "search publisher", req: ListRequest{Search: "pavlov"}, want: []string{"sw_1"}},
		{name: "method", req: ListRequest{Method: "manual"}, want: []string{"sw_2"}},
		{name: "store", req: ListRequest{Category: types.CategoryStoreApps, Search: "calc"}, want: []string{"store_0"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			items, err := service.List(t.Context(), session, tc.req)
			require.NoError(t, err)
			var got []string
			for _, item := range items {
				got = append(got, item.ID)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("unexpected items (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListRejectsUnknownMethod(t *testing.T) {
	service := newTestService(t)
	session, err := service.LoadScan(t.Context(), writeTestScan(t))
	require.NoError(t, err)

	_, err = service.List(t.Context(), session, ListRequest{Method: "flatpak"})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
