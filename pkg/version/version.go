// Package version reports build information for the organize binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set via ldflags, e.g.
//
//	-X github.com/macropower/organize/pkg/version.Version=v1.2.0
var (
	Version   string
	BuildDate string
)

// Info describes the running binary.
type Info struct {
	Version   string
	Revision  string
	BuildDate string
	GoVersion string
	Platform  string
	Modified  bool
}

// Get collects build information from ldflags and the embedded VCS settings.
func Get() Info {
	info := Info{
		Version:   Version,
		Revision:  "unknown",
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}

	applySettings(&info, bi.Settings)

	return info
}

func applySettings(info *Info, settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value[:min(len(s.Value), 7)]

		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = s.Value
			}

		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
}

// Short returns the version, or the revision for development builds.
func (i Info) Short() string {
	v := i.Version
	if v == "" {
		v = i.Revision
	}
	if i.Modified {
		v += "-dirty"
	}

	return v
}

// String returns a one-line summary, e.g.
// "v1.2.0 (rev 1a2b3c4, built 2026-01-02, go1.25.5 linux/amd64)".
func (i Info) String() string {
	details := []string{"rev " + i.Revision}
	if i.BuildDate != "" {
		details = append(details, "built "+i.BuildDate)
	}
	details = append(details, i.GoVersion+" "+i.Platform)

	return fmt.Sprintf("%s (%s)", i.Short(), strings.Join(details, ", "))
}

// GetVersion returns the summary shown by `organize --version`.
func GetVersion() string {
	return Get().String()
}
