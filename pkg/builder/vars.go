package builder

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// WriteVars stores configure variables in a bazel-init-<name>.conf file.
func WriteVars(filename string, variables map[string]any) error {
	content, err := json.MarshalIndent(variables, "", "  ")
	if err != nil {
		return eris.Wrap(err, "failed to encode variables")
	}

	err = os.WriteFile(filename, append(content, '\n'), 0o644)
	if err != nil {
		return eris.Wrapf(err, "failed to write %s", filename)
	}
	return nil
}

// ReadVars loads the variables a previous configure step wrote.
func ReadVars(filename string) (map[string]any, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read %s", filename)
	}

	variables := map[string]any{}
	err = json.Unmarshal(content, &variables)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to decode %s", filename)
	}
	return variables, nil
}
