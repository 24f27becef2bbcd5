// Package compileinfo reports how a binary was built, from the build
// information the Go toolchain embeds.
package compileinfo

import (
	"fmt"
	"path"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

type Info struct {
	// Tool is the last element of the main package path, e.g. apoestratify.
	Tool       string
	Module     string
	Version    string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool
}

func (i Info) String() string {
	mod := ""
	if i.Modified {
		mod = " (modified)"
	}

	return fmt.Sprintf("%s %s built with %s at commit %v %v%s", i.Tool, i.Version, i.GoVersion, i.Commit, i.CommitTime, mod)
}

// Fields is the build information as structured log fields.
func (i Info) Fields() logrus.Fields {
	return logrus.Fields{
		"tool":     i.Tool,
		"version":  i.Version,
		"go":       i.GoVersion,
		"commit":   i.Commit,
		"modified": i.Modified,
	}
}

// Get returns an empty Info when the binary carries no build information.
func Get() Info {
	out := Info{}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	out.GoVersion = bi.GoVersion
	out.Tool = path.Base(bi.Path)
	out.Module = bi.Main.Path
	out.Version = bi.Main.Version
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

// Log writes the build information to the standard logrus logger, which
// goes to stderr.
func Log() {
	logrus.WithFields(Get().Fields()).Info("Build information")
}
