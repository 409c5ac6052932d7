package netdiff

import (
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandHome expands ~ to its proper path, where appropriate. If the current
// user cannot be resolved the path is returned unchanged.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	usr, err := user.Current()
	if err != nil {
		return path
	}

	return filepath.Join(usr.HomeDir, path[2:])
}

// SiblingPath derives an output path next to input: the final extension of
// input is dropped and suffix is appended, e.g. ("dir/exp.txt", "_filtered.txt")
// gives "dir/exp_filtered.txt".
func SiblingPath(input, suffix string) string {
	input = ExpandHome(input)
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}
