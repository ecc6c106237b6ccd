package ports

type DrivePort interface {
	MountedDrives() ([]string, error)
}
