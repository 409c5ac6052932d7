// Package compileinfo reports the module version and VCS state a binary was
// built from.
package compileinfo

import (
	"fmt"
	"runtime/debug"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

type CompileInfo struct {
	Package       string
	ModuleVersion string
	GoVersion     string
	Commit        string
	CommitTime    string
	Modified      bool
}

// Version is a one-line description suitable for --version output. The commit
// is abbreviated to 12 characters.
func (c CompileInfo) Version() string {
	commit := c.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if commit == "" {
		commit = "unknown"
	}
	if c.Modified {
		commit += "+dirty"
	}

	pkg := c.Package
	if c.ModuleVersion != "" && c.ModuleVersion != "(devel)" {
		pkg += "@" + c.ModuleVersion
	}

	return fmt.Sprintf("%s (%s, commit %s)", pkg, c.GoVersion, commit)
}

// Fields are the build details as structured log fields.
func (c CompileInfo) Fields() []zap.Field {
	return []zap.Field{
		zap.String("package", c.Package),
		zap.String("module_version", c.ModuleVersion),
		zap.String("go_version", c.GoVersion),
		zap.String("commit", c.Commit),
		zap.String("commit_time", c.CommitTime),
		zap.Bool("modified", c.Modified),
	}
}

var (
	once   sync.Once
	cached CompileInfo
)

// Get returns the build details of the running binary. They are read once;
// fields are empty when the toolchain embedded nothing, as under go test.
func Get() CompileInfo {
	once.Do(func() {
		if bi, ok := debug.ReadBuildInfo(); ok {
			cached = FromBuildInfo(bi)
		}
	})
	return cached
}

// FromBuildInfo extracts the main module and its vcs.* settings.
func FromBuildInfo(bi *debug.BuildInfo) CompileInfo {
	settings := make(map[string]string, len(bi.Settings))
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}

	modified, _ := strconv.ParseBool(settings["vcs.modified"])

	return CompileInfo{
		Package:       bi.Path,
		ModuleVersion: bi.Main.Version,
		GoVersion:     bi.GoVersion,
		Commit:        settings["vcs.revision"],
		CommitTime:    settings["vcs.time"],
		Modified:      modified,
	}
}
