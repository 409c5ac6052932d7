package compileinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	c := CompileInfo{Package: "github.com/carbocation/netdiff", GoVersion: "go1.21.0", Commit: "abc123", Modified: true}
	if got, expected := c.Version(), "github.com/carbocation/netdiff (go1.21.0, commit abc123+dirty)"; got != expected {
		t.Errorf("Version() = %q, expected %q", got, expected)
	}

	if got := (CompileInfo{}).Version(); !strings.Contains(got, "commit unknown") {
		t.Errorf("Version() of empty info = %q", got)
	}

	if n := len(c.Fields()); n != 6 {
		t.Errorf("Fields() returned %d fields, expected 6", n)
	}
}

func TestFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.21.4",
		Path:      "github.com/carbocation/netdiff/cmd/filterexp",
		Main:      debug.Module{Path: "github.com/carbocation/netdiff", Version: "v0.2.0"},
		Settings: []debug.BuildSetting{
			{Key: "-trimpath", Value: "true"},
			{Key: "vcs", Value: "git"},
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2023-05-01T10:00:00Z"},
			{Key: "vcs.modified", Value: "false"},
		},
	}

	c := FromBuildInfo(bi)
	if c.Commit != "0123456789abcdef0123" || c.CommitTime != "2023-05-01T10:00:00Z" || c.Modified {
		t.Errorf("unexpected vcs fields: %+v", c)
	}

	expected := "github.com/carbocation/netdiff/cmd/filterexp@v0.2.0 (go1.21.4, commit 0123456789ab)"
	if got := c.Version(); got != expected {
		t.Errorf("Version() = %q, expected %q", got, expected)
	}
}

func TestFromBuildInfoWithoutVCS(t *testing.T) {
	c := FromBuildInfo(&debug.BuildInfo{GoVersion: "go1.21.4", Main: debug.Module{Version: "(devel)"}})
	if c.Commit != "" || c.Modified {
		t.Errorf("unexpected vcs fields: %+v", c)
	}
	if got := c.Version(); !strings.Contains(got, "commit unknown") || strings.Contains(got, "@") {
		t.Errorf("Version() = %q", got)
	}
}
