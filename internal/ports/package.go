package ports

import "rewin/internal/types"

type PackageWriterPort interface {
	WritePackage(dir string, pkg types.MigrationPackage) (string, error)
}

type PackageReaderPort interface {
	ReadPackage(path string) (types.MigrationPackage, error)
}

type AuxCopyPort interface {
	CopyAuxiliary(scanDir string, outputDir string) ([]string, error)
}
