package ports

import "rewin/internal/types"

type ScanLoaderPort interface {
	LoadScan(dir string) (types.Inventory, error)
}

type SelectionFilePort interface {
	LoadSelection(path string) (types.SelectionFile, error)
}
