package render

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Artifact is one generated file.
type Artifact struct {
	// Name is the file name relative to the output directory.
	Name string

	// Data is the file content.
	Data []byte

	// Mode is the permission mode; scripts are executable.
	Mode fs.FileMode
}

const (
	fileMode   fs.FileMode = 0o644
	scriptMode fs.FileMode = 0o755
)

// WriteDir writes every artifact into dir, creating it if needed.
//
// Existing files with the same names are replaced.
//
// Parameters:
//   - dir: Output directory
//   - artifacts: Files to write
//
// Returns:
//   - error: First I/O failure
func WriteDir(dir string, artifacts []Artifact) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}

	for _, a := range artifacts {
		mode := a.Mode
		if mode == 0 {
			mode = fileMode
		}
		path := filepath.Join(dir, a.Name)
		if err := os.WriteFile(path, a.Data, mode); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		// WriteFile keeps the mode of an existing file.
		if err := os.Chmod(path, mode); err != nil {
			return fmt.Errorf("chmod %s: %w", path, err)
		}
	}

	return nil
}
