package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// getVersionInfo is wired up by the main package at startup
var getVersionInfo func() (version, commit, date string, dirty bool)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long: `Print the version information including:
- Version number (from git tags)
- Git commit hash
- Build date and time
- Repository status (clean/dirty)`,
	Run: func(cmd *cobra.Command, args []string) {
		if getVersionInfo != nil {
			version, commit, date, isDirty := getVersionInfo()
			status := "clean"
			if isDirty {
				status = "dirty"
			}
			fmt.Printf("fixture-refresh version %s (commit: %s, built: %s, %s)\n", version, commit, date, status)
		} else {
			fmt.Println("fixture-refresh version dev (commit: unknown, built: unknown, unknown)")
		}
	},
}

// SetVersionInfo sets the version information function
func SetVersionInfo(fn func() (string, string, string, bool)) {
	getVersionInfo = fn
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
