package packgen

import (
	"archive/zip"
	"io"

	"github.com/rotisserie/eris"
)

// Merge combines several package archives into a single one. All entries are
// copied as-is except for the WORKSPACE files which are concatenated into one
// entry, written last.
func Merge(outputFile string, inputs []string) error {
	if len(inputs) == 0 {
		return eris.New("merge needs at least one input archive")
	}

	output, err := NewZipOutput(outputFile)
	if err != nil {
		return err
	}

	for _, input := range inputs {
		err = copyArchive(output, input)
		if err != nil {
			output.Close()
			return eris.Wrapf(err, "failed to merge %s", input)
		}
	}

	return output.Close()
}

func copyArchive(output *ZipOutput, input string) error {
	reader, err := zip.OpenReader(input)
	if err != nil {
		return eris.Wrapf(err, "failed to open archive %s", input)
	}
	defer reader.Close()

	for _, entry := range reader.File {
		hdl, err := entry.Open()
		if err != nil {
			return eris.Wrapf(err, "failed to open entry %s", entry.Name)
		}

		content, err := io.ReadAll(hdl)
		hdl.Close()
		if err != nil {
			return eris.Wrapf(err, "failed to read entry %s", entry.Name)
		}

		if entry.Name == "WORKSPACE" {
			err = output.Append("WORKSPACE", string(content))
		} else {
			err = output.writeEntry(entry.Name, string(content), entry.Mode())
		}
		if err != nil {
			return err
		}
	}

	return nil
}
