package ports

import "rewin/internal/types"

type ResolverInvocation struct {
	Spec       types.ProcessSpec
	ReportPath string
}

type ResolverPort interface {
	PrepareResolve(packageDir string, software []types.SoftwareEntry) (ResolverInvocation, func(), error)
	ReadReport(path string) (string, bool, error)
}
