package adapters

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"rewin/internal/ports"
	"rewin/internal/shared"
	"rewin/internal/types"
)

type SelectionFileAdapter struct{}

func NewSelectionFileAdapter() SelectionFileAdapter {
	return SelectionFileAdapter{}
}

// LoadSelection parses a selection YAML file. Unknown fields, actions,
// config keys and license keys are rejected.
func (a SelectionFileAdapter) LoadSelection(path string) (types.SelectionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.SelectionFile{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("selection file not found").
			WithCause(err)
	}
	var selection types.SelectionFile
	decoder := yaml.NewDecoder(bytes.NewReader(shared.StripBOM(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&selection); err != nil && !errors.Is(err, io.EOF) {
		return types.SelectionFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse selection yaml").
			WithCause(err)
	}
	if err := validateSelection(selection); err != nil {
		return types.SelectionFile{}, err
	}
	return selection, nil
}

func validateSelection(selection types.SelectionFile) error {
	for _, steps := range [][]types.SelectionStep{selection.Software, selection.StoreApps} {
		for _, step := range steps {
			if !step.Action.Valid() {
				return errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg("unknown selection action: " + string(step.Action))
			}
		}
	}
	for key := range selection.Configs {
		if !types.IsConfigKey(key) {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unknown config key: " + key)
		}
	}
	for key := range selection.Licenses {
		if !types.IsLicenseKey(key) {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unknown license key: " + key)
		}
	}
	return nil
}

var _ ports.SelectionFilePort = SelectionFileAdapter{}
