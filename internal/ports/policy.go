package ports

import "rewin/internal/types"

// BackendPolicyPort decides which install method and script backend an
// entry belongs to.
type BackendPolicyPort interface {
	Classify(entry types.SoftwareEntry) types.InstallMethod
	Backend(entry types.SoftwareEntry) (types.Backend, bool)
}
