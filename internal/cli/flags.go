package cli

import "flag"

const (
	defaultHelpDesc    = "Show help"
	defaultVersionDesc = "Print version and exit"
)

type HelpVersionFlags struct {
	Help    bool
	Version bool
}

// AddHelpVersionFlags registers -help/-h and -version/-v on fs.
func AddHelpVersionFlags(fs *flag.FlagSet, helpDesc, versionDesc string) *HelpVersionFlags {
	if fs == nil {
		return &HelpVersionFlags{}
	}
	if helpDesc == "" {
		helpDesc = defaultHelpDesc
	}
	if versionDesc == "" {
		versionDesc = defaultVersionDesc
	}
	flags := &HelpVersionFlags{}
	fs.BoolVar(&flags.Help, "help", false, helpDesc)
	fs.BoolVar(&flags.Help, "h", false, helpDesc)
	fs.BoolVar(&flags.Version, "version", false, versionDesc)
	fs.BoolVar(&flags.Version, "v", false, versionDesc)
	return flags
}

// Visited returns the names of the flags set on the command line, so
// callers can tell an explicit value from a default.
func Visited(fs *flag.FlagSet) map[string]bool {
	visited := map[string]bool{}
	if fs == nil {
		return visited
	}
	fs.Visit(func(f *flag.Flag) {
		visited[f.Name] = true
	})
	return visited
}
