package policies

import (
	"strings"

	"rewin/internal/types"
)

// BackendPolicy assigns every software entry to at most one script backend.
// Backends are tried in priority order and the first one with a non-empty
// identifier wins, so an entry never lands in two install scripts.
type BackendPolicy struct {
	Priority []types.Backend
}

func NewBackendPolicy() BackendPolicy {
	return BackendPolicy{Priority: append([]types.Backend(nil), types.Backends...)}
}

func (p BackendPolicy) Backend(entry types.SoftwareEntry) (types.Backend, bool) {
	for _, backend := range p.Priority {
		if Identifier(entry, backend) != "" {
			return backend, true
		}
	}
	return "", false
}

// Classify returns the effective install method. Declared methods without a
// usable identifier collapse to Manual.
func (p BackendPolicy) Classify(entry types.SoftwareEntry) types.InstallMethod {
	if backend, ok := p.Backend(entry); ok {
		return backend.Method()
	}
	return types.InstallMethodManual
}

func Identifier(entry types.SoftwareEntry, backend types.Backend) string {
	switch backend {
	case types.BackendWinget:
		return strings.TrimSpace(entry.WingetID)
	case types.BackendChocolatey:
		return strings.TrimSpace(entry.ChocolateyID)
	default:
		return ""
	}
}
