package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Release stamps for docpipe images, injected with
// -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
// Empty values fall back to the module build info.
var (
	version = ""
	commit  = ""
	date    = ""
)

// getVersion is the docpipe release shown by --version and the version
// command. Local builds report "(devel)".
func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// vcsSetting looks up key among the VCS stamps of the running binary.
func vcsSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// getCommit is the short revision docpipe was built from.
func getCommit() string {
	rev := commit
	if rev == "" {
		rev = vcsSetting("vcs.revision")
	}
	switch {
	case rev == "":
		return "unknown"
	case len(rev) > 7:
		return rev[:7]
	default:
		return rev
	}
}

func getDate() string {
	for _, d := range []string{date, vcsSetting("vcs.time")} {
		if d != "" {
			return d
		}
	}
	return "unknown"
}

// NewVersionCmd prints which docpipe build a stage container runs.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the docpipe build",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "docpipe version %s\n", getVersion())
			fmt.Fprintf(out, "  commit: %s\n", getCommit())
			fmt.Fprintf(out, "  built:  %s\n", getDate())
			fmt.Fprintf(out, "  go:     %s\n", runtime.Version())
		},
	}
}
