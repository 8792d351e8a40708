package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fourohfour/monetizer/internal/version"
)

var (
	versionFormat   string
	versionShort    bool
	versionDetailed bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display the monetizer version, git commit, build time, Go version and
target platform.

Examples:
  monetizer version              # Version line
  monetizer version --detailed   # Every build field
  monetizer version -o json      # As JSON`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().VarP(newEnumValue(&versionFormat, "text", "text", formatJSON, formatYAML),
		"output", "o", "Output format (text|json|yaml)")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print the version only")
	versionCmd.Flags().BoolVar(&versionDetailed, "detailed", false, "Show detailed version information")
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.Get()
	out := cmd.OutOrStdout()

	switch {
	case versionFormat != "text":
		return writeOutput(out, versionFormat, info, nil)
	case versionShort:
		fmt.Fprintln(out, info.Short())
	case versionDetailed:
		fmt.Fprintln(out, info.Detailed())
		if info.IsRelease() {
			fmt.Fprintln(out, "Build type: release")
		} else {
			fmt.Fprintln(out, "Build type: development")
		}
	default:
		fmt.Fprintf(out, "%s %s\n", version.Name, info.Short())
		fmt.Fprintf(out, "Go: %s\nPlatform: %s\n", info.GoVersion, info.Platform)
	}
	return nil
}
