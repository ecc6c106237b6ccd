package adapters

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rewin/internal/ports"
)

// auxiliaryFiles travel with the package so the restore side can read the
// raw scan. AppConfigs holds application settings captured by the scanner.
var auxiliaryFiles = []string{
	"config_backup.json",
	"license_keys.json",
	"software_inventory.json",
	"package_mappings.json",
	"scan_summary.json",
	"scan_log.txt",
}

const appConfigsDir = "AppConfigs"

type AuxCopyAdapter struct{}

func NewAuxCopyAdapter() AuxCopyAdapter {
	return AuxCopyAdapter{}
}

// CopyAuxiliary copies the scan's side files into outputDir and returns
// the names it copied. Nothing is copied when both paths resolve to the
// same directory. The destination AppConfigs tree is replaced, never
// merged.
func (a AuxCopyAdapter) CopyAuxiliary(scanDir string, outputDir string) ([]string, error) {
	if sameDir(scanDir, outputDir) {
		return nil, nil
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	var copied []string
	for _, name := range auxiliaryFiles {
		src := filepath.Join(scanDir, name)
		info, err := os.Stat(src)
		if err != nil || info.IsDir() {
			continue
		}
		if err := copyFile(src, filepath.Join(outputDir, name), info.Mode().Perm()); err != nil {
			return copied, errbuilder.New().
				WithCode(errbuilder.CodePermissionDenied).
				WithMsg("failed to copy " + name).
				WithCause(err)
		}
		copied = append(copied, name)
	}

	srcTree := filepath.Join(scanDir, appConfigsDir)
	if info, err := os.Stat(srcTree); err == nil && info.IsDir() {
		destTree := filepath.Join(outputDir, appConfigsDir)
		if err := os.RemoveAll(destTree); err != nil {
			return copied, errbuilder.New().
				WithCode(errbuilder.CodePermissionDenied).
				WithMsg("failed to replace " + appConfigsDir).
				WithCause(err)
		}
		if err := copyTree(srcTree, destTree); err != nil {
			return copied, errbuilder.New().
				WithCode(errbuilder.CodePermissionDenied).
				WithMsg("failed to copy " + appConfigsDir).
				WithCause(err)
		}
		copied = append(copied, appConfigsDir)
	}
	return copied, nil
}

func sameDir(a string, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	if resolved, err := filepath.EvalSymlinks(absA); err == nil {
		absA = resolved
	}
	if resolved, err := filepath.EvalSymlinks(absB); err == nil {
		absB = resolved
	}
	return absA == absB
}

func copyTree(src string, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return copyFile(path, target, info.Mode().Perm())
	})
}

func copyFile(src string, dest string, perm fs.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return nil
}

var _ ports.AuxCopyPort = AuxCopyAdapter{}
