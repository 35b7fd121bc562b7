package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/clicky"
	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	jsonOut     bool
	noColor     bool
	workingDir  string
	showVersion bool
)

var rootCmd = &cobra.Command{
	Use:   "fixture-refresh",
	Short: "Refresh cached API responses embedded in test fixture files",
	Long: `fixture-refresh scans test source files for embedded fixture blocks --
a quoted URL followed by a triple-quoted cached response body -- fetches
each URL live, and rewrites the cached body with the fresh response.

Blocks whose endpoint returns 404 keep their old data; any other HTTP
failure aborts the run before the file is touched.`,
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			vInfo := VersionInfo{
				Program: "fixture-refresh",
			}

			if getVersionInfo != nil {
				version, commit, date, isDirty := getVersionInfo()
				status := "clean"
				if isDirty {
					status = "dirty"
				}
				vInfo.Version = version
				vInfo.Commit = commit
				vInfo.Built = date
				vInfo.Status = status
			} else {
				vInfo.Version = "dev"
				vInfo.Commit = "unknown"
				vInfo.Built = "unknown"
				vInfo.Status = "unknown"
			}

			output, err := clicky.Format(vInfo)
			if err != nil {
				fmt.Printf("fixture-refresh version %s (commit: %s, built: %s, %s)\n", vInfo.Version, vInfo.Commit, vInfo.Built, vInfo.Status)
			} else {
				fmt.Print(output)
			}
			return
		}
		cmd.Help()
	},
}

// VersionInfo holds build metadata for display
type VersionInfo struct {
	Program string `json:"program" pretty:"label=Program,style=text-blue-600"`
	Version string `json:"version" pretty:"label=Version"`
	Commit  string `json:"commit" pretty:"label=Commit,style=text-gray-500"`
	Built   string `json:"built" pretty:"label=Built,style=text-gray-500"`
	Status  string `json:"status" pretty:"label=Status"`
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Wait for any background clicky tasks to complete
	exitCode := clicky.WaitForGlobalCompletion()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fixture-refresh.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "Format output in json")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&workingDir, "cwd", "", "Working directory (default is current directory)")
	rootCmd.PersistentFlags().BoolVar(&showVersion, "version", false, "Print version information")

	logger.BindFlags(rootCmd.PersistentFlags())
}

// GetWorkingDir returns the directory commands operate in, honoring --cwd
func GetWorkingDir() (string, error) {
	if workingDir != "" {
		abs, err := filepath.Abs(workingDir)
		if err != nil {
			return "", fmt.Errorf("invalid working directory %s: %w", workingDir, err)
		}
		return abs, nil
	}
	return os.Getwd()
}

// formatOutput renders v with the global output flags applied
func formatOutput(v interface{}) (string, error) {
	opts := clicky.FormatOptions{NoColor: noColor}
	if jsonOut {
		opts.Format = "json"
	}
	return clicky.Format(v, opts)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".fixture-refresh")
	}

	viper.SetEnvPrefix("FIXTURE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Infof("Using config file: %s", viper.ConfigFileUsed())
	}
}
