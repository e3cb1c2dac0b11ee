package version

import (
	"fmt"
	"strings"
)

// Version values are set at build time using -ldflags.
var Version = "dev"
var Built = ""
var GitCommit = ""

type Info struct {
	Version   string `json:"version"`
	Built     string `json:"built,omitempty"`
	GitCommit string `json:"git_commit,omitempty"`
}

func Get() Info {
	return Info{
		Version:   strings.TrimSpace(Version),
		Built:     strings.TrimSpace(Built),
		GitCommit: strings.TrimSpace(GitCommit),
	}
}

// Dev reports whether the binary was built without a release version.
func (i Info) Dev() bool {
	return i.Version == "" || i.Version == "dev"
}

// Banner formats the version line printed by -version.
func (i Info) Banner(program string) string {
	if i.Dev() {
		return program + " dev"
	}
	banner := fmt.Sprintf("%s version %s", program, i.Version)
	if i.GitCommit != "" {
		banner += " (" + i.GitCommit + ")"
	}
	return banner
}
