package plugin

import "fmt"

// FrameReceiver is the source name of the frame receiver feeding the chain.
const FrameReceiver = "frame_receiver"

// ConfigFunc returns extra per-process configuration entries for a plugin.
// The rank is the global rank of the process the entries are generated for.
type ConfigFunc func(rank int) []map[string]any

// Plugin is one frame-processor plugin.
type Plugin struct {
	// Name is the plugin index inside the frame processor (e.g., "hdf").
	Name string

	// ClassName is the C++ class to instantiate (e.g., "FileWriterPlugin").
	ClassName string

	// LibraryName overrides the shared library base name (default: ClassName).
	LibraryName string

	// LibraryPath is the install root holding prefix/lib/lib<LibraryName>.so.
	// Empty means the odin-data root passed to Library.
	LibraryPath string

	// Config produces per-rank configuration entries, nil for none.
	Config ConfigFunc
}

// Library returns the shared library path for the plugin, resolving an empty
// LibraryPath against odinData.
func (p Plugin) Library(odinData string) string {
	name := p.LibraryName
	if name == "" {
		name = p.ClassName
	}
	root := p.LibraryPath
	if root == "" {
		root = odinData
	}

	return fmt.Sprintf("%s/prefix/lib/lib%s.so", root, name)
}

// Entries returns the plugin's per-rank configuration entries.
func (p Plugin) Entries(rank int) []map[string]any {
	if p.Config == nil {
		return nil
	}

	return p.Config(rank)
}
