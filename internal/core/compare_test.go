package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"rewin/internal/types"
)

func TestInventoryComparer(t *testing.T) {
	pkg := types.MigrationPackage{Software: []types.SoftwareEntry{
		{Name: "Git", Version: "2.45.0", InstallMethod: types.InstallMethodWinget, WingetID: "Git.Git"},
		{Name: "7-Zip", Version: "23.01", InstallMethod: types.InstallMethodChocolatey, ChocolateyID: "7zip"},
		{Name: "Legacy Tool", Version: "1.0", InstallMethod: types.InstallMethodManual},
		{Name: "Firefox", Version: "126.0", InstallMethod: types.InstallMethodWinget, WingetID: "Mozilla.Firefox"},
	}}
	target := types.Inventory{Software: []types.SoftwareEntry{
		{Name: "Git for Windows", Version: "2.46.1", WingetID: "git.git"},
		{Name: "7-Zip 23.01 (x64)", Version: "23.01", ChocolateyID: "7zip"},
		{Name: "legacy tool", Version: "0.9"},
	}}

	want := []types.CompareRecord{
		{Name: "Git", Method: types.InstallMethodWinget, PackageVersion: "2.45.0", InstalledVersion: "2.46.1", Status: types.CompareNewer},
		{Name: "7-Zip", Method: types.InstallMethodChocolatey, PackageVersion: "23.01", InstalledVersion: "23.01", Status: types.CompareCurrent},
		{Name: "Legacy Tool", Method: types.InstallMethodManual, PackageVersion: "1.0", InstalledVersion: "0.9", Status: types.CompareOlder},
		{Name: "Firefox", Method: types.InstallMethodWinget, PackageVersion: "126.0", Status: types.CompareMissing},
	}
	got := NewInventoryComparer().Compare(pkg, target)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected comparison (-want +got):\n%s", diff)
	}
}
