package netdiff

import (
	"os"

	"github.com/carbocation/pfx"
)

// NodeType pairs a sample id with its declared type label.
type NodeType struct {
	Sample string `csv:"sample"`
	Type   string `csv:"type"`
}

// LoadNodeTypes reads a headerless, comma-delimited, two column file of
// sample ids and type labels.
func LoadNodeTypes(path string) ([]NodeType, error) {
	fileBytes, err := os.ReadFile(ExpandHome(path))
	if err != nil {
		return nil, pfx.Err(err)
	}

	return decodeHeaderless[NodeType](fileBytes, path, ',', 2)
}
