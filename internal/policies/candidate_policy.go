package policies

import (
	"strings"

	"rewin/internal/types"
)

const packageManagerScheme = "winget://"

// CandidatePolicy classifies URLs pulled out of a resolver report.
type CandidatePolicy struct {
	SearchPatterns []string
	Placeholders   []string
}

func NewCandidatePolicy() CandidatePolicy {
	return CandidatePolicy{
		SearchPatterns: []string{"google.com/search"},
		Placeholders:   []string{"winget://install/", "winget://install"},
	}
}

func (p CandidatePolicy) Classify(url string) types.CandidateClass {
	lower := strings.ToLower(url)
	for _, pattern := range p.SearchPatterns {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return types.CandidateSearchFallback
		}
	}
	return types.CandidateDirect
}

// IsPlaceholder reports the resolver's "nothing found" installer tokens.
func (p CandidatePolicy) IsPlaceholder(url string) bool {
	trimmed := strings.TrimSpace(url)
	for _, placeholder := range p.Placeholders {
		if trimmed == placeholder {
			return true
		}
	}
	return false
}

// PackageManagerID returns the package id of a winget:// URL. Such URLs
// are installed by the winget phase, never downloaded.
func PackageManagerID(url string) (string, bool) {
	if !strings.HasPrefix(strings.ToLower(url), packageManagerScheme) {
		return "", false
	}
	trimmed := strings.TrimRight(url, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:], true
	}
	return trimmed, true
}
