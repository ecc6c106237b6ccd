package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"rewin/internal/types"
)

const sampleReport = `# Manual Downloads

### Tool B
- Vendor page: [Download](https://vendor.example/tools/toolb-setup.exe)
- Mirror: https://vendor.example/tools/toolb-setup.exe
- Search: https://www.google.com/search?q=Tool+B+download

### Legacy Tool
- Installer: winget://install/
- Direct: https://legacy.example/get?file=legacy.msi, see notes

### Packaged Tool
- Installer: winget://install/Vendor.Packaged
`

func TestReportParserExtractsCandidates(t *testing.T) {
	report := NewReportParser().Parse(sampleReport)

	assert.Equal(t, 3, report.ItemCount)
	wantURLs := []string{
		"https://vendor.example/tools/toolb-setup.exe",
		"https://www.google.com/search?q=Tool+B+download",
		"https://legacy.example/get?file=legacy.msi",
		"winget://install/Vendor.Packaged",
	}
	if diff := cmp.Diff(wantURLs, report.URLs); diff != "" {
		t.Fatalf("unexpected urls (-want +got):\n%s", diff)
	}

	wantCandidates := []types.ManualDownloadCandidate{
		{SourceName: "Tool B", URL: "https://vendor.example/tools/toolb-setup.exe", Classification: types.CandidateDirect},
		{SourceName: "Tool B", URL: "https://www.google.com/search?q=Tool+B+download", Classification: types.CandidateSearchFallback},
		{SourceName: "Legacy Tool", URL: "https://legacy.example/get?file=legacy.msi", Classification: types.CandidateDirect},
		{SourceName: "Packaged Tool", URL: "winget://install/Vendor.Packaged", Classification: types.CandidateDirect},
	}
	if diff := cmp.Diff(wantCandidates, report.Candidates); diff != "" {
		t.Fatalf("unexpected candidates (-want +got):\n%s", diff)
	}
	assert.Len(t, report.Downloadable(), 3)
}

func TestReportParserEmptyReport(t *testing.T) {
	report := NewReportParser().Parse("# Manual Downloads\n\nEverything was found via a package manager.\n")
	assert.Zero(t, report.ItemCount)
	assert.Empty(t, report.URLs)
	assert.Empty(t, report.Downloadable())
}

func TestReportParserURLsBeforeFirstSection(t *testing.T) {
	report := NewReportParser().Parse("See https://docs.example/manual for details.\n")
	if assert.Len(t, report.Candidates, 1) {
		assert.Empty(t, report.Candidates[0].SourceName)
		assert.Equal(t, "https://docs.example/manual", report.Candidates[0].URL)
	}
}
