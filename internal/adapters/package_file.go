package adapters

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rewin/internal/ports"
	"rewin/internal/shared"
	"rewin/internal/types"
)

type PackageFileAdapter struct{}

func NewPackageFileAdapter() PackageFileAdapter {
	return PackageFileAdapter{}
}

// EncodePackage renders pkg the way it is stored on disk: two-space
// indent, sorted map keys, no HTML escaping, trailing newline.
func EncodePackage(pkg types.MigrationPackage) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(pkg); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode migration package").
			WithCause(err)
	}
	return buf.Bytes(), nil
}

func (a PackageFileAdapter) WritePackage(dir string, pkg types.MigrationPackage) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	if err := EnsureWritableDir(dir); err != nil {
		return "", err
	}
	data, err := EncodePackage(pkg)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, types.PackageFileName)
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// ReadPackage accepts either the package file or the directory holding it.
func (a PackageFileAdapter) ReadPackage(path string) (types.MigrationPackage, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, types.PackageFileName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.MigrationPackage{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("migration package not found: " + path).
			WithCause(err)
	}
	var pkg types.MigrationPackage
	if err := json.Unmarshal(shared.StripBOM(data), &pkg); err != nil {
		return types.MigrationPackage{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse migration package").
			WithCause(err)
	}
	for key := range pkg.Configs {
		if !types.IsConfigKey(key) {
			return types.MigrationPackage{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unknown config key in package: " + key)
		}
	}
	for idx := range pkg.Software {
		pkg.Software[idx].InstallMethod = types.ParseInstallMethod(string(pkg.Software[idx].InstallMethod))
	}
	pkg.Drives = pkg.Drives.WithDefaults()
	return pkg, nil
}

// EnsureWritableDir creates dir when missing and proves it accepts new
// files, before anything is written into it.
func EnsureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("cannot create output directory: " + dir).
			WithCause(err)
	}
	check, err := os.CreateTemp(dir, ".rewin-writable-*")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("output directory is not writable: " + dir).
			WithCause(err)
	}
	name := check.Name()
	_ = check.Close()
	_ = os.Remove(name)
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("failed to create " + filepath.Base(path)).
			WithCause(err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("failed to write " + filepath.Base(path)).
			WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("failed to write " + filepath.Base(path)).
			WithCause(err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("failed to write " + filepath.Base(path)).
			WithCause(err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("failed to replace " + filepath.Base(path)).
			WithCause(err)
	}
	return nil
}

var _ ports.PackageWriterPort = PackageFileAdapter{}
var _ ports.PackageReaderPort = PackageFileAdapter{}
