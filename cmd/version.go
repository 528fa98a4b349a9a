package cmd

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// resolveVersion prefers the linker-injected release and falls back to the
// module version that `go install pkg@version` records in the binary.
func resolveVersion(info *debug.BuildInfo, ok bool) string {
	if version != "dev" || !ok || info == nil {
		return version
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	return version
}

// printVersion writes the build details of this binary.
func printVersion(w io.Writer, release string) {
	_, _ = fmt.Fprintf(w, "transit %s\n", release)
	_, _ = fmt.Fprintf(w, "  commit:  %s\n", commit)
	_, _ = fmt.Fprintf(w, "  built:   %s\n", date)
	_, _ = fmt.Fprintf(w, "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// versionCmd shows the build details for bug reports.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the transit release and build details.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		printVersion(cmd.OutOrStdout(), resolveVersion(debug.ReadBuildInfo()))
	},
}
